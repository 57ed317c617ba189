package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcraft/engine"
	"quizcraft/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	question := models.Question{ID: 7, QuizID: 3, Text: "Pick", Type: models.QuestionTypeTwoChoices, CorrectAnswer: "a", Order: 1}
	question.SetOptions(models.Options{"a": "Yes", "b": "No"})
	session, err := engine.NewAnswerSession(3, []models.Question{question}, false)
	require.NoError(t, err)
	session, err = session.Answer("")
	require.Error(t, err, "empty is not an option letter")
	session, err = session.Answer("b")
	require.NoError(t, err)

	stored := &StoredSession{ID: "abc", OwnerID: 9, Session: session}
	require.NoError(t, store.Save(ctx, stored, time.Hour))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(9), loaded.OwnerID)
	answer, ok := loaded.Session.AnswerFor(7)
	assert.True(t, ok)
	assert.Equal(t, "b", answer)
	assert.Equal(t, models.Options{"a": "Yes", "b": "No"}, loaded.Session.Questions[0].OptionMap())

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "abc"), ErrSessionNotFound)
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &StoredSession{ID: "short"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStoreReportsOutage(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisSessionStore(client)
	mr.Close()

	_, err := store.Load(context.Background(), "any")
	var persistence *engine.PersistenceError
	assert.True(t, errors.As(err, &persistence), "got %v", err)
}

func TestRedisSessionStoreUpdateRetriesAfterConcurrentWrite(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &StoredSession{ID: "race", OwnerID: 1}, time.Hour))

	calls := 0
	err := store.Update(ctx, "race", time.Hour, func(stored *StoredSession) error {
		calls++
		if calls == 1 {
			require.NoError(t, store.Save(ctx, &StoredSession{ID: "race", OwnerID: 2}, time.Hour))
		}
		stored.Session.QuizID = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	loaded, err := store.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, uint(2), loaded.OwnerID, "the concurrent write is kept")
	assert.Equal(t, uint(42), loaded.Session.QuizID, "the update is applied on top of it")
}

func TestRedisSessionStoreUpdateGivesUpOnContention(t *testing.T) {
	_, client := newRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &StoredSession{ID: "busy"}, time.Hour))

	calls := 0
	err := store.Update(ctx, "busy", time.Hour, func(stored *StoredSession) error {
		calls++
		require.NoError(t, store.Save(ctx, &StoredSession{ID: "busy", OwnerID: 7}, time.Hour))
		stored.Session.QuizID = 42
		return nil
	})
	assert.ErrorIs(t, err, ErrSessionConflict)
	assert.Equal(t, maxSessionUpdateAttempts, calls)

	loaded, err := store.Load(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, uint(7), loaded.OwnerID)
	assert.Zero(t, loaded.Session.QuizID)
}

func TestRedisSessionStoreUpdateKeepsValueOnError(t *testing.T) {
	mr, client := newRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &StoredSession{ID: "keep"}, time.Hour))

	rejected := errors.New("rejected")
	err := store.Update(ctx, "keep", time.Hour, func(stored *StoredSession) error {
		stored.OwnerID = 5
		return rejected
	})
	assert.ErrorIs(t, err, rejected)

	loaded, err := store.Load(ctx, "keep")
	require.NoError(t, err)
	assert.Zero(t, loaded.OwnerID)

	err = store.Update(ctx, "missing", time.Hour, func(*StoredSession) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mr.Close()
	err = store.Update(ctx, "keep", time.Hour, func(*StoredSession) error { return nil })
	var persistence *engine.PersistenceError
	assert.True(t, errors.As(err, &persistence), "got %v", err)
}
