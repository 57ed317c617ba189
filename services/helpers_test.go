package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quizcraft/models"
)

var (
	admin      = &Actor{UserID: 1, Role: models.RoleAdmin}
	otherAdmin = &Actor{UserID: 2, Role: models.RoleAdmin}
	taker      = &Actor{UserID: 3, Role: models.RoleUser}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Quiz{}, &models.Question{}))
	return db
}

type event struct {
	QuizID  uint
	Type    string
	Payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) NotifyQuiz(quizID uint, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{QuizID: quizID, Type: eventType, Payload: payload})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for idx, e := range n.events {
		out[idx] = e.Type
	}
	return out
}

func (n *recordingNotifier) last() event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type fixture struct {
	db        *gorm.DB
	notifier  *recordingNotifier
	quizzes   *QuizService
	questions *QuestionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	quizzes := NewQuizService(db, notifier)
	return &fixture{
		db:        db,
		notifier:  notifier,
		quizzes:   quizzes,
		questions: NewQuestionService(db, quizzes, notifier),
	}
}

func choiceRequest(text, correct string) CreateQuestionRequest {
	return CreateQuestionRequest{
		QuestionText:  text,
		QuestionType:  models.QuestionTypeTwoChoices,
		Options:       models.Options{"a": "True", "b": "False"},
		CorrectAnswer: correct,
	}
}

func inputRequest(text, correct string) CreateQuestionRequest {
	return CreateQuestionRequest{
		QuestionText:  text,
		QuestionType:  models.QuestionTypeInput,
		CorrectAnswer: correct,
	}
}

// createQuiz makes a quiz authored by admin with the given questions.
func (f *fixture) createQuiz(t *testing.T, published bool, questions ...CreateQuestionRequest) *models.Quiz {
	t.Helper()
	ctx := context.Background()

	quiz, err := f.quizzes.CreateQuiz(ctx, admin, &CreateQuizRequest{Title: "General knowledge", Questions: questions})
	require.NoError(t, err)
	if published {
		quiz, err = f.quizzes.SetPublished(ctx, admin, quiz.ID, true)
		require.NoError(t, err)
	}
	return quiz
}

func orderOf(t *testing.T, f *fixture, quizID uint) []uint {
	t.Helper()
	questions, err := f.questions.ListQuestions(context.Background(), quizID)
	require.NoError(t, err)
	for idx, q := range questions {
		require.Equal(t, idx+1, q.Order, "orders must stay contiguous")
	}
	ids := make([]uint, len(questions))
	for idx, q := range questions {
		ids[idx] = q.ID
	}
	return ids
}
