package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	contracts "buildtrack/contracts/mq"
	"buildtrack/internal/model"
)

// The stores are deliberately narrow interfaces: the fire-and-patch
// mutation style lives behind them, so a reconciling or transactional
// implementation can be swapped in without touching handlers.

type TaskStore interface {
	Get(ctx context.Context, id string) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	UpdateProgress(ctx context.Context, taskID string, progress int, status string) error
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
}

type CommentStore interface {
	Insert(ctx context.Context, c *model.ProgressComment) error
	ListByTask(ctx context.Context, taskID string) ([]model.ProgressComment, error)
}

type ProjectFinder interface {
	FindByName(ctx context.Context, name string) (*model.Project, error)
}

type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, projectID string)
}

type TaskService struct {
	tasks     TaskStore
	comments  CommentStore
	projects  ProjectFinder
	publisher EventPublisher
	cache     CacheInvalidator
	logger    *zap.Logger
}

func NewTaskService(
	tasks TaskStore,
	comments CommentStore,
	projects ProjectFinder,
	publisher EventPublisher,
	cache CacheInvalidator,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		comments:  comments,
		projects:  projects,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// DeriveStatus maps a progress percentage to the status the dedicated
// progress-update path enforces. The general edit path does not use it
// and can therefore leave status and progress inconsistent; that is
// accepted behavior.
func DeriveStatus(progress int) string {
	switch {
	case progress == 100:
		return model.StatusCompleted
	case progress == 0:
		return model.StatusPlanned
	default:
		return model.StatusInProgress
	}
}

// Create resolves the denormalized project name before any write; an
// unresolvable name aborts the operation.
func (s *TaskService) Create(ctx context.Context, t *model.Task) error {
	p, err := s.projects.FindByName(ctx, t.ProjectName)
	if err != nil {
		s.logger.Error("Project lookup failed for new task",
			zap.String("project_name", t.ProjectName),
			zap.Error(err),
		)
		return ErrProjectNotFound
	}
	t.ProjectID = p.ID

	if t.Status == "" {
		t.Status = model.StatusPlanned
	}
	if err := s.tasks.Insert(ctx, t); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, t.ProjectID)
	return nil
}

// Update is the general edit path: status and progress are written as
// given, independently.
func (s *TaskService) Update(ctx context.Context, t *model.Task) error {
	if err := s.tasks.Update(ctx, t); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, t.ProjectID)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, t.ProjectID)
	return nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) Comments(ctx context.Context, taskID string) ([]model.ProgressComment, error) {
	return s.comments.ListByTask(ctx, taskID)
}

// UpdateProgress is the dedicated progress path: it derives status from
// the new percentage and appends exactly one immutable comment recording
// the change. The comment is mandatory; empty or whitespace-only text is
// rejected before anything is written. The progress update and the
// comment insert are two independent writes with no transaction between
// them.
func (s *TaskService) UpdateProgress(ctx context.Context, taskID string, newProgress int, comment string, actor *model.User) (*model.Task, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrEmptyComment
	}
	if newProgress < 0 || newProgress > 100 {
		return nil, ErrInvalidProgress
	}

	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	previous := t.Progress
	status := DeriveStatus(newProgress)

	if err := s.tasks.UpdateProgress(ctx, taskID, newProgress, status); err != nil {
		return nil, err
	}

	c := &model.ProgressComment{
		TaskID:           taskID,
		AuthorID:         actor.ID,
		AuthorName:       actor.Name,
		Comment:          comment,
		PreviousProgress: previous,
		NewProgress:      newProgress,
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		// The progress row is already updated at this point; there is no
		// compensation.
		s.logger.Error("Progress updated but comment insert failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.publisher.Publish("task.progress_updated", contracts.TaskProgressUpdatedPayload{
		TaskID:           taskID,
		ProjectID:        t.ProjectID,
		UserID:           actor.ID,
		PreviousProgress: previous,
		NewProgress:      newProgress,
		Status:           status,
	}); err != nil {
		s.logger.Error("Failed to publish task.progress_updated",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}

	s.cache.Invalidate(ctx, t.ProjectID)

	// Patch the local copy optimistically rather than refetching.
	t.Progress = newProgress
	t.Status = status
	return t, nil
}
