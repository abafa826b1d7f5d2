package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"buildtrack/internal/model"
	"buildtrack/internal/timeline"
)

type fakeProjectStore struct {
	projects []model.Project
	deleted  []string
}

func (f *fakeProjectStore) Insert(_ context.Context, p *model.Project) error {
	f.projects = append(f.projects, *p)
	return nil
}

func (f *fakeProjectStore) List(_ context.Context) ([]model.Project, error) {
	return f.projects, nil
}

func (f *fakeProjectStore) Get(_ context.Context, id string) (*model.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeProjectStore) Update(_ context.Context, _ *model.Project) error { return nil }

func (f *fakeProjectStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePhaseStore struct {
	phases           map[string][]model.Phase
	deletedByProject []string
	deletedPhases    []string
}

func (f *fakePhaseStore) Insert(_ context.Context, _ *model.Phase) error { return nil }

func (f *fakePhaseStore) ListByProject(_ context.Context, projectID string) ([]model.Phase, error) {
	return f.phases[projectID], nil
}

func (f *fakePhaseStore) Get(_ context.Context, id string) (*model.Phase, error) {
	for _, phases := range f.phases {
		for i := range phases {
			if phases[i].ID == id {
				return &phases[i], nil
			}
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakePhaseStore) Update(_ context.Context, _ *model.Phase) error { return nil }

func (f *fakePhaseStore) Reorder(_ context.Context, _ string, _ []string) error { return nil }

func (f *fakePhaseStore) Delete(_ context.Context, id string) error {
	f.deletedPhases = append(f.deletedPhases, id)
	return nil
}

func (f *fakePhaseStore) DeleteByProject(_ context.Context, projectID string) error {
	f.deletedByProject = append(f.deletedByProject, projectID)
	return nil
}

type fakePhaseClearer struct {
	clearedPhases   []string
	clearedProjects []string
}

func (f *fakePhaseClearer) ClearPhase(_ context.Context, phaseID string) error {
	f.clearedPhases = append(f.clearedPhases, phaseID)
	return nil
}

func (f *fakePhaseClearer) ClearPhasesByProject(_ context.Context, projectID string) error {
	f.clearedProjects = append(f.clearedProjects, projectID)
	return nil
}

type fakeProjectTaskStore struct {
	tasks map[string][]model.Task
}

func (f *fakeProjectTaskStore) Get(_ context.Context, _ string) (*model.Task, error) {
	return nil, errors.New("no rows")
}
func (f *fakeProjectTaskStore) Insert(_ context.Context, _ *model.Task) error { return nil }
func (f *fakeProjectTaskStore) Update(_ context.Context, _ *model.Task) error { return nil }
func (f *fakeProjectTaskStore) UpdateProgress(_ context.Context, _ string, _ int, _ string) error {
	return nil
}
func (f *fakeProjectTaskStore) Delete(_ context.Context, _ string) error { return nil }
func (f *fakeProjectTaskStore) ListByProject(_ context.Context, projectID string) ([]model.Task, error) {
	return f.tasks[projectID], nil
}

type fakeMediaLister struct{}

func (fakeMediaLister) ListByProject(_ context.Context, _ string) ([]model.MediaFile, error) {
	return nil, nil
}

type fakeCommentLister struct{}

func (fakeCommentLister) ListByProject(_ context.Context, _ string) ([]model.ProgressComment, error) {
	return nil, nil
}

type fakeMilestoneLister struct{}

func (fakeMilestoneLister) ListByProject(_ context.Context, _ string) ([]model.Milestone, error) {
	return nil, nil
}

type fakeTimelineCache struct {
	fakeInvalidator
	views map[string]*timeline.View
	sets  int
}

func (f *fakeTimelineCache) Get(_ context.Context, projectID string) (*timeline.View, bool) {
	v, ok := f.views[projectID]
	return v, ok
}

func (f *fakeTimelineCache) Set(_ context.Context, projectID string, view *timeline.View) {
	if f.views == nil {
		f.views = map[string]*timeline.View{}
	}
	f.views[projectID] = view
	f.sets++
}

func newProjectServiceFixture() (*ProjectService, *fakeProjectStore, *fakePhaseStore, *fakePhaseClearer, *fakeTimelineCache) {
	projects := &fakeProjectStore{projects: []model.Project{
		{ID: "p1", Name: "Site A"},
		{ID: "p2", Name: "Site B"},
	}}
	phases := &fakePhaseStore{phases: map[string][]model.Phase{
		"p1": {{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0}},
	}}
	clearer := &fakePhaseClearer{}
	tlCache := &fakeTimelineCache{}
	svc := NewProjectService(
		projects, phases, &fakeProjectTaskStore{tasks: map[string][]model.Task{}}, clearer,
		fakeMediaLister{}, fakeCommentLister{}, fakeMilestoneLister{},
		&fakePublisher{}, tlCache, zap.NewNop(),
	)
	return svc, projects, phases, clearer, tlCache
}

func TestListFiltersForClients(t *testing.T) {
	svc, _, _, _, _ := newProjectServiceFixture()

	admin := &model.User{ID: "u1", Role: "admin"}
	all, err := svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin sees %d projects, want 2", len(all))
	}

	client := &model.User{ID: "u2", Role: "client", AssignedProjects: []string{"p2"}}
	visible, err := svc.List(context.Background(), client)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "p2" {
		t.Fatalf("client visibility wrong: %+v", visible)
	}
}

func TestGetForbiddenForUnassignedClient(t *testing.T) {
	svc, _, _, _, _ := newProjectServiceFixture()

	client := &model.User{ID: "u2", Role: "client", AssignedProjects: []string{"p2"}}
	if _, err := svc.Get(context.Background(), "p1", client); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDeleteCascadesPhasesAndUnassignsTasks(t *testing.T) {
	svc, projects, phases, clearer, _ := newProjectServiceFixture()

	if err := svc.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(clearer.clearedProjects) != 1 || clearer.clearedProjects[0] != "p1" {
		t.Fatalf("tasks not unassigned: %v", clearer.clearedProjects)
	}
	if len(phases.deletedByProject) != 1 || phases.deletedByProject[0] != "p1" {
		t.Fatalf("phases not deleted: %v", phases.deletedByProject)
	}
	if len(projects.deleted) != 1 || projects.deleted[0] != "p1" {
		t.Fatalf("project not deleted: %v", projects.deleted)
	}
}

func TestDeletePhaseUnassignsItsTasks(t *testing.T) {
	svc, _, phases, clearer, _ := newProjectServiceFixture()

	if err := svc.DeletePhase(context.Background(), "ph1"); err != nil {
		t.Fatalf("DeletePhase: %v", err)
	}
	if len(clearer.clearedPhases) != 1 || clearer.clearedPhases[0] != "ph1" {
		t.Fatalf("phase tasks not unassigned: %v", clearer.clearedPhases)
	}
	if len(phases.deletedPhases) != 1 {
		t.Fatalf("phase not deleted: %v", phases.deletedPhases)
	}
}

func TestTimelineUsesCacheWhenWarm(t *testing.T) {
	svc, _, _, _, tlCache := newProjectServiceFixture()
	viewer := &model.User{ID: "u1", Role: "admin"}

	first, err := svc.Timeline(context.Background(), "p1", viewer)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if tlCache.sets != 1 {
		t.Fatalf("cold view should be cached once, sets = %d", tlCache.sets)
	}

	second, err := svc.Timeline(context.Background(), "p1", viewer)
	if err != nil {
		t.Fatalf("Timeline (warm): %v", err)
	}
	if tlCache.sets != 1 {
		t.Fatalf("warm view must come from cache, sets = %d", tlCache.sets)
	}
	if first != second {
		t.Fatalf("warm view should be the cached instance")
	}
}
