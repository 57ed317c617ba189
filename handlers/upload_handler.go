package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft/middleware"
	"quizcraft/services"
)

const maxUploadSize = 5 << 20

type UploadHandler struct {
	images services.ImageStore
}

func NewUploadHandler(images services.ImageStore) *UploadHandler {
	return &UploadHandler{images: images}
}

// UploadCover stores the multipart "file" field and returns its public URL.
func (h *UploadHandler) UploadCover(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file field of at most 5MB is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.images.UploadImage(c.Request.Context(), file, header.Filename, actor.UserID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
