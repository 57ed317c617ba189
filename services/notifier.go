package services

// Editor event types pushed to clients watching a quiz.
const (
	EventQuizUpdated        = "quiz_updated"
	EventQuizDeleted        = "quiz_deleted"
	EventQuestionCreated    = "question_created"
	EventQuestionUpdated    = "question_updated"
	EventQuestionDeleted    = "question_deleted"
	EventQuestionsReordered = "questions_reordered"
	EventResyncRequired     = "resync_required"
)

// EventNotifier fans quiz changes out to connected editors.
type EventNotifier interface {
	NotifyQuiz(quizID uint, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) NotifyQuiz(uint, string, interface{}) {}

func notifierOrNoop(n EventNotifier) EventNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
