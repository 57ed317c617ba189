package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoQuestions marks a quiz that cannot be taken because it has no questions.
// It is a terminal condition rather than a failure.
var ErrNoQuestions = errors.New("quiz has no questions")

// ErrAnswerRequired marks the ValidationError returned when an interactive
// session tries to move past a question that was never answered.
var ErrAnswerRequired = errors.New("an answer is required before continuing")

// ValidationError rejects malformed question or answer data. Field names the
// offending input using its JSON name. Err optionally carries a sentinel for
// errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type ReorderProblem string

const (
	ReorderMissing   ReorderProblem = "missing"
	ReorderDuplicate ReorderProblem = "duplicate"
	ReorderUnknown   ReorderProblem = "unknown"
)

// InvalidReorderError rejects a whole reorder batch before any write happens.
type InvalidReorderError struct {
	Problem    ReorderProblem
	QuestionID uint
}

func (e *InvalidReorderError) Error() string {
	switch e.Problem {
	case ReorderMissing:
		return fmt.Sprintf("invalid reorder: question %d is missing from the list", e.QuestionID)
	case ReorderDuplicate:
		return fmt.Sprintf("invalid reorder: question %d is listed more than once", e.QuestionID)
	default:
		return fmt.Sprintf("invalid reorder: question %d does not belong to this quiz", e.QuestionID)
	}
}

// PersistenceError wraps a failure of the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PartialReorderError reports a reorder batch that stopped at Index. Writes
// for positions [0, Index) were applied, the rest were not attempted.
type PartialReorderError struct {
	Index      int
	QuestionID uint
	Total      int
	Err        error
}

func (e *PartialReorderError) Error() string {
	return fmt.Sprintf("reorder aborted at position %d (question %d) after %d of %d writes: %v",
		e.Index, e.QuestionID, e.Index, e.Total, e.Err)
}

func (e *PartialReorderError) Unwrap() error { return e.Err }

// Applied returns how many leading writes of the batch succeeded.
func (e *PartialReorderError) Applied() int { return e.Index }
