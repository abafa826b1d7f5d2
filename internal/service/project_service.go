package service

import (
	"context"

	"go.uber.org/zap"

	contracts "buildtrack/contracts/mq"
	"buildtrack/internal/model"
	"buildtrack/internal/timeline"
)

type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id string) error
}

type PhaseStore interface {
	Insert(ctx context.Context, p *model.Phase) error
	ListByProject(ctx context.Context, projectID string) ([]model.Phase, error)
	Get(ctx context.Context, id string) (*model.Phase, error)
	Update(ctx context.Context, p *model.Phase) error
	Reorder(ctx context.Context, projectID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

type PhaseClearer interface {
	ClearPhase(ctx context.Context, phaseID string) error
	ClearPhasesByProject(ctx context.Context, projectID string) error
}

type MediaLister interface {
	ListByProject(ctx context.Context, projectID string) ([]model.MediaFile, error)
}

type CommentLister interface {
	ListByProject(ctx context.Context, projectID string) ([]model.ProgressComment, error)
}

type MilestoneLister interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error)
}

type TimelineCache interface {
	CacheInvalidator
	Get(ctx context.Context, projectID string) (*timeline.View, bool)
	Set(ctx context.Context, projectID string, view *timeline.View)
}

type ProjectService struct {
	projects   ProjectStore
	phases     PhaseStore
	tasks      TaskStore
	taskPhases PhaseClearer
	media      MediaLister
	comments   CommentLister
	milestones MilestoneLister
	publisher  EventPublisher
	cache      TimelineCache
	engine     timeline.Engine
	logger     *zap.Logger
}

func NewProjectService(
	projects ProjectStore,
	phases PhaseStore,
	tasks TaskStore,
	taskPhases PhaseClearer,
	media MediaLister,
	comments CommentLister,
	milestones MilestoneLister,
	publisher EventPublisher,
	cache TimelineCache,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects:   projects,
		phases:     phases,
		tasks:      tasks,
		taskPhases: taskPhases,
		media:      media,
		comments:   comments,
		milestones: milestones,
		publisher:  publisher,
		cache:      cache,
		engine:     timeline.NewEngine(timeline.DefaultDayWidth),
		logger:     logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, p *model.Project) error {
	if p.Status == "" {
		p.Status = model.StatusPlanned
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return err
	}

	if err := s.publisher.Publish("project.created", contracts.ProjectCreatedPayload{
		ProjectID: p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format("2006-01-02"),
		EndDate:   p.EndDate.Format("2006-01-02"),
	}); err != nil {
		s.logger.Error("Failed to publish project.created",
			zap.String("project_id", p.ID),
			zap.Error(err),
		)
	}
	return nil
}

// List returns the projects visible to the viewer. Clients only see their
// assigned projects; other roles see everything.
func (s *ProjectService) List(ctx context.Context, viewer *model.User) ([]model.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	if viewer.Role != "client" {
		return projects, nil
	}

	visible := []model.Project{}
	for _, p := range projects {
		if viewer.CanSeeProject(p.ID) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *ProjectService) Get(ctx context.Context, id string, viewer *model.User) (*model.Project, error) {
	if !viewer.CanSeeProject(id) {
		return nil, ErrForbidden
	}
	return s.projects.Get(ctx, id)
}

func (s *ProjectService) Update(ctx context.Context, p *model.Project) error {
	if err := s.projects.Update(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, p.ID)
	return nil
}

// Delete removes the project and its phases and unassigns the project's
// tasks from those phases. Task rows survive with their denormalized
// project name dangling; referential integrity is not enforced here.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.taskPhases.ClearPhasesByProject(ctx, id); err != nil {
		return err
	}
	if err := s.phases.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *ProjectService) CreatePhase(ctx context.Context, p *model.Phase) error {
	if err := s.phases.Insert(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, p.ProjectID)
	return nil
}

func (s *ProjectService) ListPhases(ctx context.Context, projectID string) ([]model.Phase, error) {
	return s.phases.ListByProject(ctx, projectID)
}

func (s *ProjectService) UpdatePhase(ctx context.Context, p *model.Phase) error {
	if err := s.phases.Update(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, p.ProjectID)
	return nil
}

// ReorderPhases rewrites the sequence so order values stay dense 0..n-1.
func (s *ProjectService) ReorderPhases(ctx context.Context, projectID string, orderedIDs []string) error {
	if err := s.phases.Reorder(ctx, projectID, orderedIDs); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, projectID)
	return nil
}

// DeletePhase removes the phase, resequences the survivors, and moves the
// phase's tasks to the unassigned bucket.
func (s *ProjectService) DeletePhase(ctx context.Context, phaseID string) error {
	p, err := s.phases.Get(ctx, phaseID)
	if err != nil {
		return err
	}
	if err := s.taskPhases.ClearPhase(ctx, phaseID); err != nil {
		return err
	}
	if err := s.phases.Delete(ctx, phaseID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, p.ProjectID)
	return nil
}

// Timeline builds the full render model for one project: aggregation over
// the flat collections, then pixel layout. Warm snapshots come from the
// cache; any mutation on the project invalidates them.
func (s *ProjectService) Timeline(ctx context.Context, projectID string, viewer *model.User) (*timeline.View, error) {
	if !viewer.CanSeeProject(projectID) {
		return nil, ErrForbidden
	}

	if view, ok := s.cache.Get(ctx, projectID); ok {
		return view, nil
	}

	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	media, err := s.media.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	view := timeline.BuildView(s.engine, project, phases, tasks, media, comments, milestones)
	s.cache.Set(ctx, projectID, view)
	return view, nil
}
