package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"quizcraft/engine"
	"quizcraft/models"
)

const (
	DefaultPageSize = 9
	MaxPageSize     = 100
)

type QuizService struct {
	db       *gorm.DB
	notifier EventNotifier
}

func NewQuizService(db *gorm.DB, notifier EventNotifier) *QuizService {
	return &QuizService{db: db, notifier: notifierOrNoop(notifier)}
}

type CreateQuizRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	CoverImage  *string                 `json:"cover_image"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

// UpdateQuizRequest is a partial update; nil fields are left unchanged and an
// empty cover image clears it.
type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image"`
}

type QuizPage struct {
	Data     []models.Quiz `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ListPublished returns a page of published quizzes, newest first.
func (s *QuizService) ListPublished(ctx context.Context, page, pageSize int, search string) (*QuizPage, error) {
	query := s.db.WithContext(ctx).Model(&models.Quiz{}).Where("published = ?", true)
	return s.paginate(query, page, pageSize, search)
}

// ListAuthored returns a page of the actor's own quizzes, published or not.
func (s *QuizService) ListAuthored(ctx context.Context, actor *Actor, page, pageSize int, search string) (*QuizPage, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	query := s.db.WithContext(ctx).Model(&models.Quiz{}).Where("author_id = ?", actor.UserID)
	return s.paginate(query, page, pageSize, search)
}

func (s *QuizService) paginate(query *gorm.DB, page, pageSize int, search string) (*QuizPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+term+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, persistenceError("count quizzes", err, nil)
	}

	quizzes := []models.Quiz{}
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&quizzes).Error
	if err != nil {
		return nil, persistenceError("list quizzes", err, nil)
	}

	return &QuizPage{Data: quizzes, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetQuiz loads a quiz visible to actor. Unpublished quizzes are reported as
// missing to anyone who cannot manage them.
func (s *QuizService) GetQuiz(ctx context.Context, actor *Actor, quizID uint) (*models.Quiz, error) {
	quiz, err := s.find(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.Published && !actor.CanManage(quiz) {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

// Manageable loads a quiz the actor is allowed to change.
func (s *QuizService) Manageable(ctx context.Context, actor *Actor, quizID uint) (*models.Quiz, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	quiz, err := s.find(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(quiz) {
		return nil, ErrForbidden
	}
	return quiz, nil
}

func (s *QuizService) find(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).First(&quiz, quizID).Error; err != nil {
		return nil, persistenceError("find quiz", err, ErrQuizNotFound)
	}
	return &quiz, nil
}

// CreateQuiz creates an unpublished quiz, optionally with an initial set of
// questions numbered in the order given. Only admins author quizzes.
func (s *QuizService) CreateQuiz(ctx context.Context, actor *Actor, req *CreateQuizRequest) (*models.Quiz, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, &engine.ValidationError{Field: "title", Message: "must not be empty"}
	}

	// Validate every question before touching the database.
	for idx, qReq := range req.Questions {
		if err := engine.ValidateQuestion(qReq.draft()); err != nil {
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				return nil, &engine.ValidationError{Field: fmt.Sprintf("questions[%d].%s", idx, verr.Field), Message: verr.Message}
			}
			return nil, err
		}
	}

	quiz := models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  emptyToNil(req.CoverImage),
		AuthorID:    actor.UserID,
		Published:   false,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for idx, qReq := range req.Questions {
			question := qReq.toModel(quiz.ID, idx+1)
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError("create quiz", err, nil)
	}

	logrus.WithFields(logrus.Fields{"quiz_id": quiz.ID, "author_id": actor.UserID, "questions": len(req.Questions)}).Info("quiz created")
	return &quiz, nil
}

func (s *QuizService) UpdateQuiz(ctx context.Context, actor *Actor, quizID uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.Manageable(ctx, actor, quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, &engine.ValidationError{Field: "title", Message: "must not be empty"}
		}
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.CoverImage != nil {
		quiz.CoverImage = emptyToNil(req.CoverImage)
	}

	if err := s.db.WithContext(ctx).Save(quiz).Error; err != nil {
		return nil, persistenceError("update quiz", err, nil)
	}

	s.notifier.NotifyQuiz(quiz.ID, EventQuizUpdated, quiz)
	return quiz, nil
}

// SetPublished toggles whether takers can see the quiz.
func (s *QuizService) SetPublished(ctx context.Context, actor *Actor, quizID uint, published bool) (*models.Quiz, error) {
	quiz, err := s.Manageable(ctx, actor, quizID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(quiz).Update("published", published).Error; err != nil {
		return nil, persistenceError("set published", err, nil)
	}
	quiz.Published = published

	logrus.WithFields(logrus.Fields{"quiz_id": quiz.ID, "published": published}).Info("quiz publish state changed")
	s.notifier.NotifyQuiz(quiz.ID, EventQuizUpdated, quiz)
	return quiz, nil
}

// DeleteQuiz removes the quiz and all of its questions.
func (s *QuizService) DeleteQuiz(ctx context.Context, actor *Actor, quizID uint) error {
	if _, err := s.Manageable(ctx, actor, quizID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, quizID).Error
	})
	if err != nil {
		return persistenceError("delete quiz", err, nil)
	}

	logrus.WithField("quiz_id", quizID).Info("quiz deleted")
	s.notifier.NotifyQuiz(quizID, EventQuizDeleted, map[string]uint{"quiz_id": quizID})
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func emptyToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := *value
	return &v
}
