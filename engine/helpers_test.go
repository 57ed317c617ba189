package engine

import "quizcraft/models"

func choiceQuestion(id uint, correct string) models.Question {
	q := models.Question{
		ID:            id,
		QuizID:        1,
		Text:          "Pick one",
		Type:          models.QuestionTypeTwoChoices,
		CorrectAnswer: correct,
		Order:         int(id),
	}
	q.SetOptions(models.Options{"a": "Yes", "b": "No"})
	return q
}

func inputQuestion(id uint, correct string) models.Question {
	q := models.Question{
		ID:            id,
		QuizID:        1,
		Text:          "Capital?",
		Type:          models.QuestionTypeInput,
		CorrectAnswer: correct,
		Order:         int(id),
	}
	q.SetOptions(nil)
	return q
}
