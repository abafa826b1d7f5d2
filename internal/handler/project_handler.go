package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/internal/repository"
	"buildtrack/internal/service"
)

const dateLayout = "2006-01-02"

type ProjectHandler struct {
	projects *service.ProjectService
	users    *repository.UserRepository
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, users *repository.UserRepository, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, logger: logger}
}

type projectRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
}

func (req *projectRequest) toModel() (*model.Project, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, err
	}
	return &model.Project{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Status:    req.Status,
		Progress:  req.Progress,
	}, nil
}

func (h *ProjectHandler) List(c *gin.Context) {
	viewer, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	projects, err := h.projects.List(c.Request.Context(), viewer)
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	viewer, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "project not visible"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, start_date and end_date required"})
		return
	}

	p, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.projects.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("CreateProject: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	h.logger.Info("CreateProject: success", zap.String("project_id", p.ID))
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, start_date and end_date required"})
		return
	}

	p, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	p.ID = c.Param("id")

	if err := h.projects.Update(c.Request.Context(), p); err != nil {
		h.logger.Error("UpdateProject: update failed",
			zap.String("project_id", p.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("DeleteProject: delete failed",
			zap.String("project_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	h.logger.Info("DeleteProject: success", zap.String("project_id", id))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Timeline serves the aggregated, laid-out render model for a project.
func (h *ProjectHandler) Timeline(c *gin.Context) {
	viewer, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	id := c.Param("id")
	view, err := h.projects.Timeline(c.Request.Context(), id, viewer)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "project not visible"})
			return
		}
		h.logger.Error("Timeline: build failed",
			zap.String("project_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build timeline"})
		return
	}

	c.JSON(http.StatusOK, view)
}
