package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft/middleware"
	"quizcraft/services"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	questions, err := h.questionService.ListQuestionsFor(c.Request.Context(), middleware.ActorFrom(c), quizID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), middleware.ActorFrom(c), quizID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "question ID")
	if !ok {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), middleware.ActorFrom(c), questionID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "question ID")
	if !ok {
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), middleware.ActorFrom(c), questionID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// ReorderQuestions takes the complete list of the quiz's question ids in
// their new order.
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	var req services.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.questionService.ReorderQuestions(c.Request.Context(), middleware.ActorFrom(c), quizID, req.QuestionIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
