package engine

import (
	"maps"

	"quizcraft/models"
)

type State string

const (
	StateNoQuestions State = "no_questions"
	StateInProgress  State = "in_progress"
	StateCompleted   State = "completed"
)

// AnswerSession is one attempt at a quiz. It is a value: every transition
// returns a new session and leaves the receiver untouched, so callers can keep
// or discard either copy.
//
// Requests that fall outside the current state (Next on the last question,
// Previous on the first, Finish twice) return the session unchanged.
type AnswerSession struct {
	QuizID    uint              `json:"quiz_id"`
	Questions []models.Question `json:"questions"`
	Answers   map[uint]string   `json:"answers"`
	Index     int               `json:"index"`
	ReadOnly  bool              `json:"read_only"`
	Result    *Result           `json:"result,omitempty"`
}

// NewAnswerSession starts an attempt over questions in the given order. An
// empty sequence yields a session in StateNoQuestions together with
// ErrNoQuestions.
func NewAnswerSession(quizID uint, questions []models.Question, readOnly bool) (AnswerSession, error) {
	seq := make([]models.Question, len(questions))
	copy(seq, questions)

	s := AnswerSession{
		QuizID:    quizID,
		Questions: seq,
		Answers:   map[uint]string{},
		ReadOnly:  readOnly,
	}
	if len(seq) == 0 {
		return s, ErrNoQuestions
	}
	return s, nil
}

func (s AnswerSession) State() State {
	switch {
	case len(s.Questions) == 0:
		return StateNoQuestions
	case s.Result != nil:
		return StateCompleted
	default:
		return StateInProgress
	}
}

// Current returns the question at the cursor.
func (s AnswerSession) Current() (models.Question, bool) {
	if s.State() != StateInProgress || s.Index < 0 || s.Index >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.Index], true
}

// AnswerFor reports the recorded answer for a question. An explicitly recorded
// empty string is present; a never-answered question is not.
func (s AnswerSession) AnswerFor(questionID uint) (string, bool) {
	value, ok := s.Answers[questionID]
	return value, ok
}

func (s AnswerSession) IsLast() bool {
	return s.Index == len(s.Questions)-1
}

// Progress is the share of the quiz reached so far, counting the current question.
func (s AnswerSession) Progress() int {
	if s.State() == StateCompleted {
		return 100
	}
	return Percentage(s.Index+1, len(s.Questions))
}

// Answer records value for the current question, replacing any earlier answer.
func (s AnswerSession) Answer(value string) (AnswerSession, error) {
	question, ok := s.Current()
	if !ok {
		if s.State() == StateNoQuestions {
			return s, ErrNoQuestions
		}
		return s, nil
	}
	if err := ValidateAnswer(question, value); err != nil {
		return s, err
	}

	next := s
	next.Answers = cloneAnswers(s.Answers)
	next.Answers[question.ID] = value
	return next, nil
}

func (s AnswerSession) Next() (AnswerSession, error) {
	if s.State() == StateNoQuestions {
		return s, ErrNoQuestions
	}
	if s.State() != StateInProgress || s.Index >= len(s.Questions)-1 {
		return s, nil
	}
	if err := s.checkAnswered(); err != nil {
		return s, err
	}

	next := s
	next.Index++
	return next, nil
}

func (s AnswerSession) Previous() (AnswerSession, error) {
	if s.State() == StateNoQuestions {
		return s, ErrNoQuestions
	}
	if s.State() != StateInProgress || s.Index <= 0 {
		return s, nil
	}

	next := s
	next.Index--
	return next, nil
}

// Finish grades the attempt. It only fires from the last question and only
// once per attempt.
func (s AnswerSession) Finish() (AnswerSession, error) {
	if s.State() == StateNoQuestions {
		return s, ErrNoQuestions
	}
	if s.State() != StateInProgress || !s.IsLast() {
		return s, nil
	}
	if err := s.checkAnswered(); err != nil {
		return s, err
	}

	result := Score(s.Questions, s.Answers)
	next := s
	next.Result = &result
	return next, nil
}

// Reset starts a completed attempt over with no answers.
func (s AnswerSession) Reset() (AnswerSession, error) {
	if s.State() == StateNoQuestions {
		return s, ErrNoQuestions
	}
	if s.State() != StateCompleted {
		return s, nil
	}

	next := s
	next.Index = 0
	next.Answers = map[uint]string{}
	next.Result = nil
	return next, nil
}

func (s AnswerSession) checkAnswered() error {
	if s.ReadOnly {
		return nil
	}
	question := s.Questions[s.Index]
	if _, ok := s.Answers[question.ID]; !ok {
		return &ValidationError{Field: "answer", Message: ErrAnswerRequired.Error(), Err: ErrAnswerRequired}
	}
	return nil
}

func cloneAnswers(in map[uint]string) map[uint]string {
	if in == nil {
		return map[uint]string{}
	}
	return maps.Clone(in)
}
