package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeTwoChoices  QuestionType = "two_choices"
	QuestionTypeFourChoices QuestionType = "four_choices"
	QuestionTypeInput       QuestionType = "input"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeTwoChoices, QuestionTypeFourChoices, QuestionTypeInput:
		return true
	}
	return false
}

// IsChoice reports whether answers to t are option letters.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeTwoChoices || t == QuestionTypeFourChoices
}

// Options maps an option letter ("a", "b", ...) to its text.
type Options map[string]string

type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	QuizID        uint                        `json:"quiz_id" gorm:"not null;index"`
	Text          string                      `json:"question_text" gorm:"column:question_text;not null"`
	Type          QuestionType                `json:"question_type" gorm:"column:question_type;not null"`
	Options       datatypes.JSONType[Options] `json:"options" gorm:"column:options"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"not null"`
	Order         int                         `json:"order" gorm:"column:position;not null;index"` // "order" is reserved in SQL
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `json:"-" gorm:"index"`
}

// OptionMap returns the decoded options, never nil.
func (q Question) OptionMap() Options {
	opts := q.Options.Data()
	if opts == nil {
		return Options{}
	}
	return opts
}

// SetOptions replaces the stored options.
func (q *Question) SetOptions(opts Options) {
	if opts == nil {
		opts = Options{}
	}
	q.Options = datatypes.NewJSONType(opts)
}
