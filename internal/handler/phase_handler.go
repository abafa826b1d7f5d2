package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/internal/service"
)

type PhaseHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewPhaseHandler(projects *service.ProjectService, logger *zap.Logger) *PhaseHandler {
	return &PhaseHandler{projects: projects, logger: logger}
}

type phaseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Color       string `json:"color"`
}

func (req *phaseRequest) toModel(projectID string) (*model.Phase, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, err
	}
	return &model.Phase{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Color:       req.Color,
	}, nil
}

func (h *PhaseHandler) List(c *gin.Context) {
	projectID := c.Param("id")
	phases, err := h.projects.ListPhases(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListPhases: failed to fetch phases",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch phases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases})
}

func (h *PhaseHandler) Create(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, start_date and end_date required"})
		return
	}

	p, err := req.toModel(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.projects.CreatePhase(c.Request.Context(), p); err != nil {
		h.logger.Error("CreatePhase: insert failed",
			zap.String("project_id", p.ProjectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create phase"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"phase": p})
}

func (h *PhaseHandler) Update(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, start_date and end_date required"})
		return
	}

	p, err := req.toModel(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	p.ID = c.Param("phaseId")

	if err := h.projects.UpdatePhase(c.Request.Context(), p); err != nil {
		h.logger.Error("UpdatePhase: update failed",
			zap.String("phase_id", p.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update phase"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phase": p})
}

type reorderRequest struct {
	PhaseIDs []string `json:"phase_ids" binding:"required"`
}

// Reorder rewrites the project's phase sequence to the given id order.
func (h *PhaseHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase_ids required"})
		return
	}

	projectID := c.Param("id")
	if err := h.projects.ReorderPhases(c.Request.Context(), projectID, req.PhaseIDs); err != nil {
		h.logger.Error("ReorderPhases: reorder failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder phases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PhaseHandler) Delete(c *gin.Context) {
	phaseID := c.Param("phaseId")
	if err := h.projects.DeletePhase(c.Request.Context(), phaseID); err != nil {
		h.logger.Error("DeletePhase: delete failed",
			zap.String("phase_id", phaseID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete phase"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
