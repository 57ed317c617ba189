package services

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"quizcraft/engine"
)

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrForbidden          = errors.New("not allowed to perform this action")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidImage       = errors.New("file is not a supported image")
	ErrSessionConflict    = errors.New("session was changed by another request")
)

// persistenceError wraps a store failure so callers can tell it apart from
// validation and lookup errors. gorm's not-found is mapped to notFound.
func persistenceError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return &engine.PersistenceError{Op: op, Err: err}
}
