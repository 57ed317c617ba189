package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"quizcraft/engine"
)

const (
	sessionKeyPrefix = "session:"

	maxSessionUpdateAttempts = 3
)

// StoredSession is what a SessionStore keeps for one taking attempt.
type StoredSession struct {
	ID      string               `json:"id"`
	OwnerID uint                 `json:"owner_id,omitempty"`
	Session engine.AnswerSession `json:"session"`
}

// SessionStore persists in-flight taking sessions. Load and Update return
// ErrSessionNotFound for unknown or expired ids.
//
// Update runs fn on the current value and saves the result only if nobody
// else wrote the session in between. fn may be called more than once and
// its error aborts the update unchanged.
type SessionStore interface {
	Save(ctx context.Context, stored *StoredSession, ttl time.Duration) error
	Load(ctx context.Context, id string) (*StoredSession, error)
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*StoredSession) error) error
	Delete(ctx context.Context, id string) error
}

type RedisSessionStore struct {
	redis *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, stored *StoredSession, ttl time.Duration) error {
	data, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+stored.ID, data, ttl).Err(); err != nil {
		return &engine.PersistenceError{Op: "store session", Err: err}
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (*StoredSession, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, &engine.PersistenceError{Op: "load session", Err: err}
	}
	return decodeSession(id, data)
}

func (s *RedisSessionStore) Update(ctx context.Context, id string, ttl time.Duration, fn func(*StoredSession) error) error {
	key := sessionKeyPrefix + id

	for attempt := 0; attempt < maxSessionUpdateAttempts; attempt++ {
		watched := false
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			watched = true
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrSessionNotFound
				}
				return &engine.PersistenceError{Op: "load session", Err: err}
			}

			stored, err := decodeSession(id, data)
			if err != nil {
				return err
			}
			if err := fn(stored); err != nil {
				return err
			}
			updated, err := json.Marshal(stored)
			if err != nil {
				return errors.Wrap(err, "marshal session")
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			if err != nil && !errors.Is(err, redis.TxFailedErr) {
				return &engine.PersistenceError{Op: "store session", Err: err}
			}
			return err
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil && !watched:
			return &engine.PersistenceError{Op: "watch session", Err: err}
		}
		return err
	}
	return ErrSessionConflict
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return &engine.PersistenceError{Op: "delete session", Err: err}
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func decodeSession(id string, data []byte) (*StoredSession, error) {
	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrapf(err, "decode session %s", id)
	}
	return &stored, nil
}
