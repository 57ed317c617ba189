package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcraft/models"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name  string
		draft QuestionDraft
		field string
	}{
		{
			name:  "valid two choices",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeTwoChoices, Options: models.Options{"a": "x", "b": "y"}, CorrectAnswer: "b"},
		},
		{
			name:  "valid four choices",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeFourChoices, Options: models.Options{"a": "1", "b": "2", "c": "3", "d": "4"}, CorrectAnswer: "d"},
		},
		{
			name:  "valid input",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeInput, CorrectAnswer: "Paris"},
		},
		{
			name:  "blank text",
			draft: QuestionDraft{Text: "   ", Type: models.QuestionTypeInput, CorrectAnswer: "x"},
			field: "question_text",
		},
		{
			name:  "unknown type",
			draft: QuestionDraft{Text: "Q", Type: "essay", CorrectAnswer: "x"},
			field: "question_type",
		},
		{
			name:  "input with options",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeInput, Options: models.Options{"a": "x"}, CorrectAnswer: "x"},
			field: "options",
		},
		{
			name:  "input without answer",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeInput},
			field: "correct_answer",
		},
		{
			name:  "two choices with extra key",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeTwoChoices, Options: models.Options{"a": "x", "b": "y", "c": "z"}, CorrectAnswer: "a"},
			field: "options",
		},
		{
			name:  "four choices missing key",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeFourChoices, Options: models.Options{"a": "1", "b": "2", "c": "3"}, CorrectAnswer: "a"},
			field: "options",
		},
		{
			name:  "blank option text",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeTwoChoices, Options: models.Options{"a": "x", "b": " "}, CorrectAnswer: "a"},
			field: "options.b",
		},
		{
			name:  "answer outside two choices",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeTwoChoices, Options: models.Options{"a": "x", "b": "y"}, CorrectAnswer: "c"},
			field: "correct_answer",
		},
		{
			name:  "answer is option text not letter",
			draft: QuestionDraft{Text: "Q", Type: models.QuestionTypeTwoChoices, Options: models.Options{"a": "x", "b": "y"}, CorrectAnswer: "x"},
			field: "correct_answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.draft)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	four := models.Options{"a": "1", "b": "2", "c": "3", "d": "4"}

	assert.Equal(t, models.Options{"a": "1", "b": "2"}, NormalizeOptions(models.QuestionTypeTwoChoices, four))
	assert.Empty(t, NormalizeOptions(models.QuestionTypeInput, four))
	assert.Equal(t, models.Options{"a": "1", "b": "2"}, NormalizeOptions(models.QuestionTypeFourChoices, models.Options{"a": "1", "b": "2"}))
}

func TestValidateAnswer(t *testing.T) {
	assert.NoError(t, ValidateAnswer(choiceQuestion(1, "a"), "b"))
	assert.Error(t, ValidateAnswer(choiceQuestion(1, "a"), "B"))
	assert.NoError(t, ValidateAnswer(inputQuestion(1, "x"), "anything at all"))
	assert.NoError(t, ValidateAnswer(inputQuestion(1, "x"), ""))
}

func TestOptionKeysReturnsCopy(t *testing.T) {
	keys := OptionKeys(models.QuestionTypeTwoChoices)
	keys[0] = "z"
	assert.Equal(t, []string{"a", "b"}, OptionKeys(models.QuestionTypeTwoChoices))
}
