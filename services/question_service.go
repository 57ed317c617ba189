package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"quizcraft/engine"
	"quizcraft/models"
)

type QuestionService struct {
	db       *gorm.DB
	quizzes  *QuizService
	notifier EventNotifier
	orders   engine.OrderWriter
}

func NewQuestionService(db *gorm.DB, quizzes *QuizService, notifier EventNotifier) *QuestionService {
	s := &QuestionService{
		db:       db,
		quizzes:  quizzes,
		notifier: notifierOrNoop(notifier),
	}
	s.orders = s
	return s
}

type CreateQuestionRequest struct {
	QuestionText  string              `json:"question_text"`
	QuestionType  models.QuestionType `json:"question_type"`
	Options       models.Options      `json:"options"`
	CorrectAnswer string              `json:"correct_answer"`
}

func (r CreateQuestionRequest) draft() engine.QuestionDraft {
	return engine.QuestionDraft{
		Text:          r.QuestionText,
		Type:          r.QuestionType,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
	}
}

func (r CreateQuestionRequest) toModel(quizID uint, order int) models.Question {
	question := models.Question{
		QuizID:        quizID,
		Text:          r.QuestionText,
		Type:          r.QuestionType,
		CorrectAnswer: r.CorrectAnswer,
		Order:         order,
	}
	question.SetOptions(r.Options)
	return question
}

// UpdateQuestionRequest is a partial update. When only the type changes, the
// existing options are trimmed to the letters the new type allows.
type UpdateQuestionRequest struct {
	QuestionText  *string              `json:"question_text"`
	QuestionType  *models.QuestionType `json:"question_type"`
	Options       *models.Options      `json:"options"`
	CorrectAnswer *string              `json:"correct_answer"`
}

type ReorderRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required"`
}

// ListQuestions returns the quiz's questions ascending by order.
func (s *QuestionService) ListQuestions(ctx context.Context, quizID uint) ([]models.Question, error) {
	questions := []models.Question{}
	err := s.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, persistenceError("list questions", err, nil)
	}
	return questions, nil
}

// ListQuestionsFor returns the questions of a quiz visible to actor. Correct
// answers are stripped unless the actor manages the quiz.
func (s *QuestionService) ListQuestionsFor(ctx context.Context, actor *Actor, quizID uint) ([]models.Question, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, actor, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(quiz) {
		for idx := range questions {
			questions[idx].CorrectAnswer = ""
		}
	}
	return questions, nil
}

// CreateQuestion validates the question and appends it after the last one.
func (s *QuestionService) CreateQuestion(ctx context.Context, actor *Actor, quizID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.quizzes.Manageable(ctx, actor, quizID); err != nil {
		return nil, err
	}
	if err := engine.ValidateQuestion(req.draft()); err != nil {
		return nil, err
	}

	var question models.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
			return err
		}
		question = req.toModel(quizID, int(count)+1)
		return tx.Create(&question).Error
	})
	if err != nil {
		return nil, persistenceError("create question", err, nil)
	}

	logrus.WithFields(logrus.Fields{"quiz_id": quizID, "question_id": question.ID, "order": question.Order}).Info("question created")
	s.notifier.NotifyQuiz(quizID, EventQuestionCreated, question)
	return &question, nil
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, actor *Actor, questionID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.find(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.quizzes.Manageable(ctx, actor, question.QuizID); err != nil {
		return nil, err
	}

	draft := engine.DraftOf(*question)
	if req.QuestionText != nil {
		draft.Text = *req.QuestionText
	}
	if req.QuestionType != nil && *req.QuestionType != draft.Type {
		draft.Type = *req.QuestionType
		draft.Options = engine.NormalizeOptions(draft.Type, draft.Options)
		if draft.Type == models.QuestionTypeInput {
			draft.CorrectAnswer = ""
		}
	}
	if req.Options != nil {
		draft.Options = *req.Options
	}
	if req.CorrectAnswer != nil {
		draft.CorrectAnswer = *req.CorrectAnswer
	}

	if err := engine.ValidateQuestion(draft); err != nil {
		return nil, err
	}

	question.Text = draft.Text
	question.Type = draft.Type
	question.SetOptions(draft.Options)
	question.CorrectAnswer = draft.CorrectAnswer

	if err := s.db.WithContext(ctx).Save(question).Error; err != nil {
		return nil, persistenceError("update question", err, nil)
	}

	s.notifier.NotifyQuiz(question.QuizID, EventQuestionUpdated, question)
	return question, nil
}

// DeleteQuestion removes a question and closes the gap it leaves so the
// remaining orders stay 1..N.
func (s *QuestionService) DeleteQuestion(ctx context.Context, actor *Actor, questionID uint) error {
	question, err := s.find(ctx, questionID)
	if err != nil {
		return err
	}
	if _, err := s.quizzes.Manageable(ctx, actor, question.QuizID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Question{}, question.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Question{}).
			Where("quiz_id = ? AND position > ?", question.QuizID, question.Order).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		return persistenceError("delete question", err, nil)
	}

	logrus.WithFields(logrus.Fields{"quiz_id": question.QuizID, "question_id": question.ID}).Info("question deleted")
	s.notifier.NotifyQuiz(question.QuizID, EventQuestionDeleted, map[string]uint{"question_id": question.ID})
	return nil
}

// ReorderQuestions applies a full reordering of a quiz's questions. The batch
// is validated as a whole, then written one row at a time. When a write fails
// the remaining writes are skipped, editors are told to resync, and the
// returned *engine.PartialReorderError says which prefix landed.
func (s *QuestionService) ReorderQuestions(ctx context.Context, actor *Actor, quizID uint, questionIDs []uint) ([]models.Question, error) {
	if _, err := s.quizzes.Manageable(ctx, actor, quizID); err != nil {
		return nil, err
	}

	current, err := s.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	plan, err := engine.ApplyReorder(ctx, s.orders, quizID, engine.IDsOf(current), questionIDs)
	if err != nil {
		var partial *engine.PartialReorderError
		if errors.As(err, &partial) {
			logrus.WithFields(logrus.Fields{
				"quiz_id":      quizID,
				"failed_index": partial.Index,
				"question_id":  partial.QuestionID,
			}).WithError(partial.Err).Error("question reorder aborted")
			s.notifier.NotifyQuiz(quizID, EventResyncRequired, map[string]interface{}{
				"failed_index": partial.Index,
				"applied":      partial.Applied(),
			})
		}
		return nil, err
	}

	reordered := engine.Reordered(current, plan)
	s.notifier.NotifyQuiz(quizID, EventQuestionsReordered, plan)
	return reordered, nil
}

// WriteQuestionOrder sets one question's position. It is the single-row write
// used by ReorderQuestions.
func (s *QuestionService) WriteQuestionOrder(ctx context.Context, questionID, quizID uint, order int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ? AND quiz_id = ?", questionID, quizID).
		Update("position", order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(ErrQuestionNotFound, "question %d", questionID)
	}
	return nil
}

func (s *QuestionService) find(ctx context.Context, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, questionID).Error; err != nil {
		return nil, persistenceError("find question", err, ErrQuestionNotFound)
	}
	return &question, nil
}
