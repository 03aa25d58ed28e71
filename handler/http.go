package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"collector-service/constant"
	"collector-service/dto"
	"collector-service/repository"
	"collector-service/service"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	ingest service.MediaIngestService
}

func NewMediaHandler(ingest service.MediaIngestService) *MediaHandler {
	return &MediaHandler{ingest: ingest}
}

func (h *MediaHandler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/media/upload", h.Upload)
	v1.POST("/media/status", h.UpdateStatus)
}

// Upload accepts multipart content plus meeting metadata form fields.
func (h *MediaHandler) Upload(c *gin.Context) {
	var req dto.MediaUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.ingest.UploadMedia(c.Request.Context(), content, fileHeader.Filename, contentType, req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// UpdateStatus is the HTTP variant of the status-report surface.
func (h *MediaHandler) UpdateStatus(c *gin.Context) {
	var update dto.MediaStatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := constant.MediaStatus(strings.ToUpper(update.Status))
	if err := h.ingest.UpdateStatus(c.Request.Context(), update.FileKey, status); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileKey": update.FileKey, "status": status.String()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrInvalidStatusTransition):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
