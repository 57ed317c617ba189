package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft/middleware"
	"quizcraft/services"
)

type QuizHandler struct {
	quizService *services.QuizService
}

func NewQuizHandler(quizService *services.QuizService) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
	}
}

func (h *QuizHandler) ListPublished(c *gin.Context) {
	page, pageSize, search := parsePage(c)

	result, err := h.quizService.ListPublished(c.Request.Context(), page, pageSize, search)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) ListAuthored(c *gin.Context) {
	page, pageSize, search := parsePage(c)

	result, err := h.quizService.ListAuthored(c.Request.Context(), middleware.ActorFrom(c), page, pageSize, search)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), middleware.ActorFrom(c), quizID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), middleware.ActorFrom(c), quizID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) Publish(c *gin.Context) {
	h.setPublished(c, true)
}

func (h *QuizHandler) Unpublish(c *gin.Context) {
	h.setPublished(c, false)
}

func (h *QuizHandler) setPublished(c *gin.Context, published bool) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	quiz, err := h.quizService.SetPublished(c.Request.Context(), middleware.ActorFrom(c), quizID, published)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID, ok := parseID(c, "quiz ID")
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuiz(c.Request.Context(), middleware.ActorFrom(c), quizID); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
