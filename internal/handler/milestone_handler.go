package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
)

// MilestoneStore is the milestone repository surface the handler needs.
type MilestoneStore interface {
	Insert(ctx context.Context, m *model.Milestone) error
	Get(ctx context.Context, id string) (*model.Milestone, error)
	ListByTask(ctx context.Context, taskID string) ([]model.Milestone, error)
	Update(ctx context.Context, m *model.Milestone) error
	Delete(ctx context.Context, id string) error
}

type TaskFinder interface {
	Get(ctx context.Context, id string) (*model.Task, error)
}

type ViewInvalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

type MilestoneHandler struct {
	milestones MilestoneStore
	tasks      TaskFinder
	cache      ViewInvalidator
	logger     *zap.Logger
}

func NewMilestoneHandler(
	milestones MilestoneStore,
	tasks TaskFinder,
	timelineCache ViewInvalidator,
	logger *zap.Logger,
) *MilestoneHandler {
	return &MilestoneHandler{
		milestones: milestones,
		tasks:      tasks,
		cache:      timelineCache,
		logger:     logger,
	}
}

type milestoneRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
	Date string `json:"date" binding:"required"`
}

func validMilestoneType(t string) bool {
	return t == model.MilestoneInspection || t == model.MilestoneApproval || t == model.MilestoneHandover
}

func (h *MilestoneHandler) ListByTask(c *gin.Context) {
	taskID := c.Param("id")
	milestones, err := h.milestones.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch milestones"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *MilestoneHandler) Create(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, type and date required"})
		return
	}
	if !validMilestoneType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be inspection, approval or handover"})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	taskID := c.Param("id")
	t, err := h.tasks.Get(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	m := &model.Milestone{
		TaskID: taskID,
		Name:   req.Name,
		Type:   req.Type,
		Date:   date,
	}
	if err := h.milestones.Insert(c.Request.Context(), m); err != nil {
		h.logger.Error("CreateMilestone: insert failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create milestone"})
		return
	}

	h.cache.Invalidate(c.Request.Context(), t.ProjectID)
	c.JSON(http.StatusCreated, gin.H{"milestone": m})
}

// ownedMilestone resolves the path's milestone and rejects it unless it
// belongs to the path's task. A mismatched pair must not mutate another
// task's milestone or invalidate another project's snapshot.
func (h *MilestoneHandler) ownedMilestone(c *gin.Context) (*model.Milestone, bool) {
	milestoneID := c.Param("milestoneId")
	m, err := h.milestones.Get(c.Request.Context(), milestoneID)
	if err != nil || m.TaskID != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "milestone not found"})
		return nil, false
	}
	return m, true
}

func (h *MilestoneHandler) Update(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, type and date required"})
		return
	}
	if !validMilestoneType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be inspection, approval or handover"})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	existing, ok := h.ownedMilestone(c)
	if !ok {
		return
	}

	m := &model.Milestone{
		ID:     existing.ID,
		TaskID: existing.TaskID,
		Name:   req.Name,
		Type:   req.Type,
		Date:   date,
	}
	if err := h.milestones.Update(c.Request.Context(), m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update milestone"})
		return
	}

	if t, err := h.tasks.Get(c.Request.Context(), existing.TaskID); err == nil {
		h.cache.Invalidate(c.Request.Context(), t.ProjectID)
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

func (h *MilestoneHandler) Delete(c *gin.Context) {
	existing, ok := h.ownedMilestone(c)
	if !ok {
		return
	}

	if err := h.milestones.Delete(c.Request.Context(), existing.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete milestone"})
		return
	}

	if t, err := h.tasks.Get(c.Request.Context(), existing.TaskID); err == nil {
		h.cache.Invalidate(c.Request.Context(), t.ProjectID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
