package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft/middleware"
	"quizcraft/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.sessionService.Start(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	h.respond(c, h.sessionService.Get)
}

func (h *SessionHandler) Answer(c *gin.Context) {
	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.respond(c, func(ctx context.Context, actor *services.Actor, id string) (*services.SessionView, error) {
		return h.sessionService.Answer(ctx, actor, id, *req.Answer)
	})
}

func (h *SessionHandler) Next(c *gin.Context) {
	h.respond(c, h.sessionService.Next)
}

func (h *SessionHandler) Previous(c *gin.Context) {
	h.respond(c, h.sessionService.Previous)
}

func (h *SessionHandler) Finish(c *gin.Context) {
	h.respond(c, h.sessionService.Finish)
}

func (h *SessionHandler) Reset(c *gin.Context) {
	h.respond(c, h.sessionService.Reset)
}

func (h *SessionHandler) DiscardSession(c *gin.Context) {
	if err := h.sessionService.Discard(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session discarded"})
}

func (h *SessionHandler) respond(c *gin.Context, op func(context.Context, *services.Actor, string) (*services.SessionView, error)) {
	view, err := op(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
