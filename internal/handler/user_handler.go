package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
)

// UserDirectory is the user store surface the handler needs.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	AssignProjects(ctx context.Context, userID string, projectIDs []string) error
}

type UserHandler struct {
	users  UserDirectory
	logger *zap.Logger
}

func NewUserHandler(users UserDirectory, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type assignProjectsRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// AssignProjects replaces the user's visible project set. An empty list
// clears it. Client users only see projects on this list; other roles
// ignore it.
func (h *UserHandler) AssignProjects(c *gin.Context) {
	var req assignProjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_ids required"})
		return
	}
	if req.ProjectIDs == nil {
		req.ProjectIDs = []string{}
	}

	userID := c.Param("id")
	u, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.users.AssignProjects(c.Request.Context(), userID, req.ProjectIDs); err != nil {
		h.logger.Error("AssignProjects: update failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign projects"})
		return
	}

	u.AssignedProjects = req.ProjectIDs
	h.logger.Info("AssignProjects: success",
		zap.String("user_id", userID),
		zap.Int("project_count", len(req.ProjectIDs)),
	)
	c.JSON(http.StatusOK, gin.H{"user": u})
}
