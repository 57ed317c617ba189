package engine

import "quizcraft/models"

// NoAnswer is shown in a review for a question the taker never answered.
const NoAnswer = "No answer"

type Tier string

const (
	TierExcellent     Tier = "excellent"
	TierPassed        Tier = "passed"
	TierNeedsPractice Tier = "needs_practice"
)

// TierFor buckets a percentage for presentation. Scoring never depends on it.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 80:
		return TierExcellent
	case percentage >= 60:
		return TierPassed
	default:
		return TierNeedsPractice
	}
}

type ReviewItem struct {
	Question        models.Question `json:"question"`
	SubmittedAnswer string          `json:"submitted_answer"`
	Answered        bool            `json:"answered"`
	IsCorrect       bool            `json:"is_correct"`
	CorrectAnswer   string          `json:"correct_answer"`
}

type Result struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Tier       Tier         `json:"tier"`
	Review     []ReviewItem `json:"review"`
}

// Score grades answers against questions in sequence order. Every question type
// uses exact string equality; input answers are neither trimmed nor case-folded.
func Score(questions []models.Question, answers map[uint]string) Result {
	review := make([]ReviewItem, 0, len(questions))
	score := 0

	for _, question := range questions {
		submitted, answered := answers[question.ID]
		correct := answered && submitted == question.CorrectAnswer
		if correct {
			score++
		}
		if !answered {
			submitted = NoAnswer
		}
		review = append(review, ReviewItem{
			Question:        question,
			SubmittedAnswer: submitted,
			Answered:        answered,
			IsCorrect:       correct,
			CorrectAnswer:   question.CorrectAnswer,
		})
	}

	percentage := Percentage(score, len(questions))
	return Result{
		Score:      score,
		Total:      len(questions),
		Percentage: percentage,
		Tier:       TierFor(percentage),
		Review:     review,
	}
}

// Percentage returns round(100*score/total) with halves rounded up, computed
// in integers so no float error creeps in. A zero total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*score + total) / (2 * total)
}
