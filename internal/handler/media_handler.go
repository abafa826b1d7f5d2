package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/internal/repository"
	"buildtrack/internal/service"
)

type MediaHandler struct {
	media  *service.MediaService
	users  *repository.UserRepository
	logger *zap.Logger
}

func NewMediaHandler(media *service.MediaService, users *repository.UserRepository, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, users: users, logger: logger}
}

type mediaRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

func (h *MediaHandler) ListByTask(c *gin.Context) {
	taskID := c.Param("id")
	media, err := h.media.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("ListMedia: failed to fetch media",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch media"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": media})
}

// Register stores a media record whose URL was resolved by the storage
// provider before this call.
func (h *MediaHandler) Register(c *gin.Context) {
	var req mediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, url and type required"})
		return
	}

	uploader, ok := fullUser(c, h.users)
	if !ok {
		return
	}

	m := &model.MediaFile{
		TaskID:      c.Param("id"),
		Name:        req.Name,
		URL:         req.URL,
		Type:        req.Type,
		Description: req.Description,
	}

	if err := h.media.Register(c.Request.Context(), m, uploader); err != nil {
		if errors.Is(err, service.ErrInvalidMediaType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be image or video"})
			return
		}
		h.logger.Error("RegisterMedia: insert failed",
			zap.String("task_id", m.TaskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register media"})
		return
	}

	h.logger.Info("RegisterMedia: success",
		zap.String("media_id", m.ID),
		zap.String("task_id", m.TaskID),
	)
	c.JSON(http.StatusCreated, gin.H{"media": m})
}

type mediaMetaRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *MediaHandler) UpdateMeta(c *gin.Context) {
	var req mediaMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	id := c.Param("mediaId")
	if err := h.media.UpdateMeta(c.Request.Context(), id, req.Name, req.Description); err != nil {
		h.logger.Error("UpdateMedia: update failed",
			zap.String("media_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MediaHandler) Delete(c *gin.Context) {
	id := c.Param("mediaId")
	if err := h.media.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("DeleteMedia: delete failed",
			zap.String("media_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
