package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizcraft/engine"
	"quizcraft/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &engine.ValidationError{Field: "options", Message: "bad"}, http.StatusBadRequest},
		{"answer required", &engine.ValidationError{Field: "answer", Message: "required", Err: engine.ErrAnswerRequired}, http.StatusBadRequest},
		{"invalid reorder", &engine.InvalidReorderError{Problem: engine.ReorderMissing, QuestionID: 3}, http.StatusBadRequest},
		{"partial reorder", &engine.PartialReorderError{Index: 1, QuestionID: 2, Total: 3, Err: errors.New("down")}, http.StatusInternalServerError},
		{"no questions", engine.ErrNoQuestions, http.StatusUnprocessableEntity},
		{"quiz missing", errors.Wrap(services.ErrQuizNotFound, "load"), http.StatusNotFound},
		{"question missing", services.ErrQuestionNotFound, http.StatusNotFound},
		{"session missing", services.ErrSessionNotFound, http.StatusNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"email taken", services.ErrEmailTaken, http.StatusConflict},
		{"session conflict", services.ErrSessionConflict, http.StatusConflict},
		{"bad image", services.ErrInvalidImage, http.StatusBadRequest},
		{"storage", &engine.PersistenceError{Op: "list", Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeServiceError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestWriteServiceErrorDescribesPartialReorder(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeServiceError(c, &engine.PartialReorderError{Index: 2, QuestionID: 9, Total: 4, Err: errors.New("down")})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["failed_index"])
	assert.EqualValues(t, 2, body["applied"])
	assert.Equal(t, true, body["resync"])
	assert.Equal(t, true, body["retryable"])
}

func TestParseIDAndPage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := parseID(c, "quiz ID")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok = parseID(c, "quiz ID")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/quizzes?page=-3&page_size=x&search=math", nil)
	page, pageSize, search := parsePage(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, services.DefaultPageSize, pageSize)
	assert.Equal(t, "math", search)
}
