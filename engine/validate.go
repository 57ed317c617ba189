package engine

import (
	"fmt"
	"strings"

	"quizcraft/models"
)

var optionKeys = map[models.QuestionType][]string{
	models.QuestionTypeTwoChoices:  {"a", "b"},
	models.QuestionTypeFourChoices: {"a", "b", "c", "d"},
	models.QuestionTypeInput:       {},
}

// OptionKeys returns the option letters a question type must carry.
func OptionKeys(t models.QuestionType) []string {
	keys := optionKeys[t]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// QuestionDraft is the authored content of a question, before it has an id or
// a position.
type QuestionDraft struct {
	Text          string
	Type          models.QuestionType
	Options       models.Options
	CorrectAnswer string
}

// DraftOf extracts the authored content of a stored question.
func DraftOf(q models.Question) QuestionDraft {
	return QuestionDraft{
		Text:          q.Text,
		Type:          q.Type,
		Options:       q.OptionMap(),
		CorrectAnswer: q.CorrectAnswer,
	}
}

// ValidateQuestion checks the per-type rules of a question. The first
// violation is returned as a *ValidationError.
func ValidateQuestion(d QuestionDraft) error {
	if strings.TrimSpace(d.Text) == "" {
		return &ValidationError{Field: "question_text", Message: "must not be empty"}
	}

	keys, ok := optionKeys[d.Type]
	if !ok {
		return &ValidationError{Field: "question_type", Message: "must be one of two_choices, four_choices, input"}
	}

	if d.Type == models.QuestionTypeInput {
		if len(d.Options) != 0 {
			return &ValidationError{Field: "options", Message: "must be empty for input questions"}
		}
		if d.CorrectAnswer == "" {
			return &ValidationError{Field: "correct_answer", Message: "is required"}
		}
		return nil
	}

	for _, key := range keys {
		text, ok := d.Options[key]
		if !ok {
			return &ValidationError{Field: "options", Message: fmt.Sprintf("must contain option %q", key)}
		}
		if strings.TrimSpace(text) == "" {
			return &ValidationError{Field: "options." + key, Message: "must not be empty"}
		}
	}
	if len(d.Options) != len(keys) {
		return &ValidationError{Field: "options", Message: "must have exactly the keys " + strings.Join(keys, ", ")}
	}

	if !containsKey(keys, d.CorrectAnswer) {
		return &ValidationError{Field: "correct_answer", Message: "must be one of " + strings.Join(keys, ", ")}
	}
	return nil
}

// ValidateAnswer checks a submitted answer against the shape of its question.
// Choice answers must name an option; input answers are free-form.
func ValidateAnswer(q models.Question, value string) error {
	if !q.Type.IsChoice() {
		return nil
	}
	keys := optionKeys[q.Type]
	if !containsKey(keys, value) {
		return &ValidationError{Field: "answer", Message: "must be one of " + strings.Join(keys, ", ")}
	}
	return nil
}

// NormalizeOptions keeps only the option letters t allows. Switching a
// question to input drops every option; switching four to two keeps a and b.
func NormalizeOptions(t models.QuestionType, opts models.Options) models.Options {
	keys, ok := optionKeys[t]
	if !ok {
		return opts
	}
	out := make(models.Options, len(keys))
	for _, key := range keys {
		if text, ok := opts[key]; ok {
			out[key] = text
		}
	}
	return out
}

func containsKey(keys []string, value string) bool {
	for _, key := range keys {
		if key == value {
			return true
		}
	}
	return false
}
