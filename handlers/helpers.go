package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"quizcraft/engine"
	"quizcraft/services"
)

// writeServiceError maps service and engine errors onto HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var (
		validation  *engine.ValidationError
		invalid     *engine.InvalidReorderError
		partial     *engine.PartialReorderError
		persistence *engine.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "problem": invalid.Problem, "question_id": invalid.QuestionID})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "reorder was only partly saved, reload the questions and try again",
			"failed_index": partial.Index,
			"applied":      partial.Applied(),
			"resync":       true,
			"retryable":    true,
		})
	case errors.Is(err, engine.ErrNoQuestions):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "This quiz has no questions yet"})
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to do that"})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrSessionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Session was changed by another request, reload it", "retryable": true})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a PNG, JPEG, GIF or WebP image"})
	case errors.As(err, &persistence):
		logrus.WithError(err).WithField("path", c.FullPath()).Error("storage failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is unavailable, try again", "retryable": true})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
	}
}

// parseID reads the :id path parameter and answers 400 when it is not a
// positive integer.
func parseID(c *gin.Context, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return uint(id), true
}

// parsePage reads page, page_size and search query parameters. Bad numbers
// fall back to the defaults.
func parsePage(c *gin.Context) (int, int, string) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(services.DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = services.DefaultPageSize
	}
	return page, pageSize, c.Query("search")
}
