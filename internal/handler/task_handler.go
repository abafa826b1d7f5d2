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

type TaskHandler struct {
	tasks  *service.TaskService
	users  *repository.UserRepository
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, users *repository.UserRepository, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users, logger: logger}
}

type taskRequest struct {
	Name        string `json:"name" binding:"required"`
	ProjectName string `json:"project_name" binding:"required"`
	PhaseID     string `json:"phase_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	DueDate     string `json:"due_date"`
	Trade       string `json:"trade"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func (req *taskRequest) toModel() (*model.Task, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	return &model.Task{
		Name:        req.Name,
		ProjectName: req.ProjectName,
		PhaseID:     req.PhaseID,
		StartDate:   start,
		EndDate:     end,
		DueDate:     due,
		Trade:       req.Trade,
		Priority:    req.Priority,
		Status:      req.Status,
		Progress:    req.Progress,
	}, nil
}

func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id required"})
		return
	}

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListTasks: failed to fetch tasks",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}

	h.logger.Info("ListTasks: success",
		zap.String("project_id", projectID),
		zap.Int("task_count", len(tasks)),
	)
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and project_name required"})
		return
	}

	t, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.tasks.Create(c.Request.Context(), t); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("CreateTask: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	h.logger.Info("CreateTask: success", zap.String("task_id", t.ID))
	c.JSON(http.StatusCreated, gin.H{"task": t})
}

// Update is the general edit path; status and progress come through as
// given and are not reconciled against each other.
func (h *TaskHandler) Update(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and project_name required"})
		return
	}

	t, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}
	t.ID = c.Param("id")

	existing, err := h.tasks.Get(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	t.ProjectID = existing.ProjectID

	if err := h.tasks.Update(c.Request.Context(), t); err != nil {
		h.logger.Error("UpdateTask: update failed",
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("DeleteTask: delete failed",
			zap.String("task_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type progressRequest struct {
	Progress *int   `json:"progress" binding:"required"`
	Comment  string `json:"comment"`
}

// UpdateProgress is the dedicated progress path: derives status, appends
// one progress comment, and returns the patched task.
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress required"})
		return
	}

	actor, ok := fullUser(c, h.users)
	if !ok {
		return
	}

	taskID := c.Param("id")
	t, err := h.tasks.UpdateProgress(c.Request.Context(), taskID, *req.Progress, req.Comment, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "comment must not be empty"})
		case errors.Is(err, service.ErrInvalidProgress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "progress must be between 0 and 100"})
		default:
			h.logger.Error("UpdateProgress: failed",
				zap.String("task_id", taskID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progress"})
		}
		return
	}

	h.logger.Info("UpdateProgress: success",
		zap.String("task_id", taskID),
		zap.Int("progress", t.Progress),
		zap.String("status", t.Status),
	)
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *TaskHandler) Comments(c *gin.Context) {
	taskID := c.Param("id")
	comments, err := h.tasks.Comments(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("ListComments: failed to fetch comments",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
