package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizcraft/engine"
	"quizcraft/models"
)

const DefaultSessionTTL = 2 * time.Hour

// SessionService runs quiz-taking attempts. The attempt itself is an
// engine.AnswerSession; this service loads it, applies one transition and
// stores the result back.
type SessionService struct {
	quizzes   *QuizService
	questions *QuestionService
	store     SessionStore
	ttl       time.Duration
}

func NewSessionService(quizzes *QuizService, questions *QuestionService, store SessionStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		quizzes:   quizzes,
		questions: questions,
		store:     store,
		ttl:       ttl,
	}
}

type StartSessionRequest struct {
	QuizID   uint `json:"quiz_id" binding:"required"`
	ReadOnly bool `json:"read_only"`
}

// AnswerRequest carries the taker's answer. An explicit "" is a real answer
// to an input question, so the field must be present in the body.
type AnswerRequest struct {
	Answer *string `json:"answer" binding:"required"`
}

// QuestionView is a question as shown to a taker. The correct answer is only
// filled in for read-only previews.
type QuestionView struct {
	ID            uint                `json:"id"`
	Text          string              `json:"question_text"`
	Type          models.QuestionType `json:"question_type"`
	Options       models.Options      `json:"options"`
	Order         int                 `json:"order"`
	CorrectAnswer *string             `json:"correct_answer,omitempty"`
}

type SessionView struct {
	ID            string         `json:"id"`
	QuizID        uint           `json:"quiz_id"`
	State         engine.State   `json:"state"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	Progress      int            `json:"progress"`
	ReadOnly      bool           `json:"read_only"`
	IsLast        bool           `json:"is_last"`
	AnsweredCount int            `json:"answered_count"`
	Question      *QuestionView  `json:"question,omitempty"`
	Answer        *string        `json:"answer,omitempty"`
	Result        *engine.Result `json:"result,omitempty"`
}

// Start opens an attempt on a quiz the actor can see. Read-only previews are
// limited to the quiz's author and admins. A quiz without questions yields
// engine.ErrNoQuestions and nothing is stored.
func (s *SessionService) Start(ctx context.Context, actor *Actor, req *StartSessionRequest) (*SessionView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, actor, req.QuizID)
	if err != nil {
		return nil, err
	}
	if req.ReadOnly && !actor.CanManage(quiz) {
		if actor == nil {
			return nil, ErrUnauthenticated
		}
		return nil, ErrForbidden
	}

	questions, err := s.questions.ListQuestions(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	session, err := engine.NewAnswerSession(quiz.ID, questions, req.ReadOnly)
	if err != nil {
		return nil, err
	}

	stored := &StoredSession{ID: uuid.NewString(), Session: session}
	if actor != nil {
		stored.OwnerID = actor.UserID
	}
	if err := s.store.Save(ctx, stored, s.ttl); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"session_id": stored.ID,
		"quiz_id":    quiz.ID,
		"questions":  len(questions),
		"read_only":  req.ReadOnly,
	}).Info("session started")
	return viewOf(stored), nil
}

func (s *SessionService) Get(ctx context.Context, actor *Actor, id string) (*SessionView, error) {
	stored, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return viewOf(stored), nil
}

func (s *SessionService) Answer(ctx context.Context, actor *Actor, id string, value string) (*SessionView, error) {
	return s.apply(ctx, actor, id, func(session engine.AnswerSession) (engine.AnswerSession, error) {
		return session.Answer(value)
	})
}

func (s *SessionService) Next(ctx context.Context, actor *Actor, id string) (*SessionView, error) {
	return s.apply(ctx, actor, id, engine.AnswerSession.Next)
}

func (s *SessionService) Previous(ctx context.Context, actor *Actor, id string) (*SessionView, error) {
	return s.apply(ctx, actor, id, engine.AnswerSession.Previous)
}

func (s *SessionService) Finish(ctx context.Context, actor *Actor, id string) (*SessionView, error) {
	view, err := s.apply(ctx, actor, id, engine.AnswerSession.Finish)
	if err != nil {
		return nil, err
	}
	if view.Result != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": id,
			"quiz_id":    view.QuizID,
			"score":      view.Result.Score,
			"total":      view.Result.Total,
			"tier":       view.Result.Tier,
		}).Info("session finished")
	}
	return view, nil
}

func (s *SessionService) Reset(ctx context.Context, actor *Actor, id string) (*SessionView, error) {
	return s.apply(ctx, actor, id, engine.AnswerSession.Reset)
}

// Discard drops an attempt before it expires.
func (s *SessionService) Discard(ctx context.Context, actor *Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// apply runs one transition as a read-modify-write on the stored session.
// Concurrent transitions on the same session are serialized by the store, so
// an acknowledged move is never overwritten by a stale one.
func (s *SessionService) apply(ctx context.Context, actor *Actor, id string, transition func(engine.AnswerSession) (engine.AnswerSession, error)) (*SessionView, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	var updated *StoredSession
	err := s.store.Update(ctx, id, s.ttl, func(stored *StoredSession) error {
		if !ownedBy(stored, actor) {
			return ErrSessionNotFound
		}
		next, err := transition(stored.Session)
		if err != nil {
			return err
		}
		stored.Session = next
		updated = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(updated), nil
}

// load fetches a session and hides sessions started by another user.
func (s *SessionService) load(ctx context.Context, actor *Actor, id string) (*StoredSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	stored, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(stored, actor) {
		return nil, ErrSessionNotFound
	}
	return stored, nil
}

// ownedBy reports whether actor may see stored. Anonymous sessions have no owner.
func ownedBy(stored *StoredSession, actor *Actor) bool {
	return stored.OwnerID == 0 || (actor != nil && actor.UserID == stored.OwnerID)
}

func viewOf(stored *StoredSession) *SessionView {
	session := stored.Session
	view := &SessionView{
		ID:            stored.ID,
		QuizID:        session.QuizID,
		State:         session.State(),
		Index:         session.Index,
		Total:         len(session.Questions),
		Progress:      session.Progress(),
		ReadOnly:      session.ReadOnly,
		IsLast:        session.IsLast(),
		AnsweredCount: len(session.Answers),
		Result:        session.Result,
	}

	if question, ok := session.Current(); ok {
		qv := &QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Options: question.OptionMap(),
			Order:   question.Order,
		}
		if session.ReadOnly {
			correct := question.CorrectAnswer
			qv.CorrectAnswer = &correct
		}
		view.Question = qv

		if answer, ok := session.AnswerFor(question.ID); ok {
			view.Answer = &answer
		}
	}
	return view
}
