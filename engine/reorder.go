package engine

import (
	"context"

	"quizcraft/models"
)

// Placement is the new 1-based position of one question.
type Placement struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

// OrderWriter persists a single question position. Implementations write one
// row and report whether it succeeded.
type OrderWriter interface {
	WriteQuestionOrder(ctx context.Context, questionID, quizID uint, order int) error
}

// OrderWriterFunc adapts a function to OrderWriter.
type OrderWriterFunc func(ctx context.Context, questionID, quizID uint, order int) error

func (f OrderWriterFunc) WriteQuestionOrder(ctx context.Context, questionID, quizID uint, order int) error {
	return f(ctx, questionID, quizID, order)
}

// PlanReorder turns a full permutation of a quiz's question ids into
// placements. requested must hold every id of current exactly once.
func PlanReorder(current, requested []uint) ([]Placement, error) {
	known := make(map[uint]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}

	seen := make(map[uint]struct{}, len(requested))
	plan := make([]Placement, 0, len(requested))
	for idx, id := range requested {
		if _, ok := known[id]; !ok {
			return nil, &InvalidReorderError{Problem: ReorderUnknown, QuestionID: id}
		}
		if _, dup := seen[id]; dup {
			return nil, &InvalidReorderError{Problem: ReorderDuplicate, QuestionID: id}
		}
		seen[id] = struct{}{}
		plan = append(plan, Placement{QuestionID: id, Order: idx + 1})
	}

	for _, id := range current {
		if _, ok := seen[id]; !ok {
			return nil, &InvalidReorderError{Problem: ReorderMissing, QuestionID: id}
		}
	}
	return plan, nil
}

// ApplyReorder validates the batch, then writes every placement in order, one
// row at a time. The batch is not atomic: the first failed write stops the
// batch and a *PartialReorderError reports how far it got. The returned
// placements are the ones that were written.
func ApplyReorder(ctx context.Context, w OrderWriter, quizID uint, current, requested []uint) ([]Placement, error) {
	plan, err := PlanReorder(current, requested)
	if err != nil {
		return nil, err
	}

	for idx, placement := range plan {
		if err := w.WriteQuestionOrder(ctx, placement.QuestionID, quizID, placement.Order); err != nil {
			return plan[:idx], &PartialReorderError{
				Index:      idx,
				QuestionID: placement.QuestionID,
				Total:      len(plan),
				Err:        &PersistenceError{Op: "write question order", Err: err},
			}
		}
	}
	return plan, nil
}

// IDsOf lists question ids in sequence order.
func IDsOf(questions []models.Question) []uint {
	ids := make([]uint, len(questions))
	for idx, question := range questions {
		ids[idx] = question.ID
	}
	return ids
}

// Reordered returns questions sorted to match plan, with Order fields updated.
// Questions absent from plan are dropped.
func Reordered(questions []models.Question, plan []Placement) []models.Question {
	byID := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	out := make([]models.Question, 0, len(plan))
	for _, placement := range plan {
		question, ok := byID[placement.QuestionID]
		if !ok {
			continue
		}
		question.Order = placement.Order
		out = append(out, question)
	}
	return out
}
