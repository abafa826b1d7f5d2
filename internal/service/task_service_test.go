package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"buildtrack/internal/model"
)

type fakeTaskStore struct {
	tasks           map[string]*model.Task
	inserted        []*model.Task
	progressUpdates int
}

func (f *fakeTaskStore) Get(_ context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) Insert(_ context.Context, t *model.Task) error {
	f.inserted = append(f.inserted, t)
	return nil
}

func (f *fakeTaskStore) Update(_ context.Context, t *model.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskStore) UpdateProgress(_ context.Context, taskID string, progress int, status string) error {
	t := f.tasks[taskID]
	t.Progress = progress
	t.Status = status
	f.progressUpdates++
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id string) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) ListByProject(_ context.Context, _ string) ([]model.Task, error) {
	return nil, nil
}

type fakeCommentStore struct {
	comments []*model.ProgressComment
}

func (f *fakeCommentStore) Insert(_ context.Context, c *model.ProgressComment) error {
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeCommentStore) ListByTask(_ context.Context, _ string) ([]model.ProgressComment, error) {
	return nil, nil
}

type fakeProjectFinder struct {
	projects map[string]*model.Project
}

func (f *fakeProjectFinder) FindByName(_ context.Context, name string) (*model.Project, error) {
	p, ok := f.projects[name]
	if !ok {
		return nil, errors.New("no rows")
	}
	return p, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(routingKey string, _ any) error {
	f.published = append(f.published, routingKey)
	return nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, projectID string) {
	f.invalidated = append(f.invalidated, projectID)
}

func newTaskServiceFixture(tasks ...*model.Task) (*TaskService, *fakeTaskStore, *fakeCommentStore, *fakePublisher, *fakeInvalidator) {
	store := &fakeTaskStore{tasks: map[string]*model.Task{}}
	for _, t := range tasks {
		store.tasks[t.ID] = t
	}
	comments := &fakeCommentStore{}
	projects := &fakeProjectFinder{projects: map[string]*model.Project{
		"Site A": {ID: "p1", Name: "Site A"},
	}}
	publisher := &fakePublisher{}
	invalidator := &fakeInvalidator{}
	svc := NewTaskService(store, comments, projects, publisher, invalidator, zap.NewNop())
	return svc, store, comments, publisher, invalidator
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		progress int
		want     string
	}{
		{0, model.StatusPlanned},
		{1, model.StatusInProgress},
		{40, model.StatusInProgress},
		{99, model.StatusInProgress},
		{100, model.StatusCompleted},
	}
	for _, c := range cases {
		if got := DeriveStatus(c.progress); got != c.want {
			t.Fatalf("DeriveStatus(%d) = %q, want %q", c.progress, got, c.want)
		}
	}
}

func TestUpdateProgressDerivesStatusAndAppendsComment(t *testing.T) {
	svc, store, comments, publisher, invalidator := newTaskServiceFixture(&model.Task{
		ID: "t1", ProjectID: "p1", Progress: 40, Status: model.StatusInProgress,
	})
	actor := &model.User{ID: "u1", Name: "Dana"}

	updated, err := svc.UpdateProgress(context.Background(), "t1", 100, "final walkthrough done", actor)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if updated.Progress != 100 || updated.Status != model.StatusCompleted {
		t.Fatalf("task = {progress %d, status %q}, want {100, completed}", updated.Progress, updated.Status)
	}
	if len(comments.comments) != 1 {
		t.Fatalf("expected exactly 1 comment, got %d", len(comments.comments))
	}
	c := comments.comments[0]
	if c.PreviousProgress != 40 || c.NewProgress != 100 {
		t.Fatalf("comment = {prev %d, new %d}, want {40, 100}", c.PreviousProgress, c.NewProgress)
	}
	if c.AuthorID != "u1" || c.AuthorName != "Dana" {
		t.Fatalf("comment author wrong: %+v", c)
	}
	if store.progressUpdates != 1 {
		t.Fatalf("expected 1 progress write, got %d", store.progressUpdates)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "task.progress_updated" {
		t.Fatalf("unexpected events: %v", publisher.published)
	}
	if len(invalidator.invalidated) != 1 || invalidator.invalidated[0] != "p1" {
		t.Fatalf("timeline cache not invalidated for project: %v", invalidator.invalidated)
	}
}

func TestUpdateProgressZeroMeansPlanned(t *testing.T) {
	svc, store, _, _, _ := newTaskServiceFixture(&model.Task{
		ID: "t1", ProjectID: "p1", Progress: 60, Status: model.StatusInProgress,
	})

	updated, err := svc.UpdateProgress(context.Background(), "t1", 0, "rework required", &model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if updated.Status != model.StatusPlanned {
		t.Fatalf("status = %q, want planned", updated.Status)
	}
	if store.tasks["t1"].Progress != 0 {
		t.Fatalf("stored progress = %d, want 0", store.tasks["t1"].Progress)
	}
}

func TestUpdateProgressRejectsEmptyComment(t *testing.T) {
	svc, store, comments, publisher, _ := newTaskServiceFixture(&model.Task{
		ID: "t1", ProjectID: "p1", Progress: 40,
	})

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := svc.UpdateProgress(context.Background(), "t1", 80, comment, &model.User{ID: "u1"})
		if !errors.Is(err, ErrEmptyComment) {
			t.Fatalf("comment %q: err = %v, want ErrEmptyComment", comment, err)
		}
	}
	if store.progressUpdates != 0 {
		t.Fatalf("no write should happen before comment validation, got %d", store.progressUpdates)
	}
	if len(comments.comments) != 0 || len(publisher.published) != 0 {
		t.Fatalf("rejected update must not produce comments or events")
	}
}

func TestUpdateProgressRejectsOutOfRange(t *testing.T) {
	svc, _, _, _, _ := newTaskServiceFixture(&model.Task{ID: "t1", ProjectID: "p1"})

	for _, p := range []int{-1, 101} {
		_, err := svc.UpdateProgress(context.Background(), "t1", p, "x", &model.User{ID: "u1"})
		if !errors.Is(err, ErrInvalidProgress) {
			t.Fatalf("progress %d: err = %v, want ErrInvalidProgress", p, err)
		}
	}
}

func TestCreateResolvesProjectName(t *testing.T) {
	svc, store, _, _, invalidator := newTaskServiceFixture()

	task := &model.Task{Name: "Dig", ProjectName: "Site A"}
	if err := svc.Create(context.Background(), task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ProjectID != "p1" {
		t.Fatalf("ProjectID = %q, want p1", task.ProjectID)
	}
	if task.Status != model.StatusPlanned {
		t.Fatalf("default status = %q, want planned", task.Status)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(store.inserted))
	}
	if len(invalidator.invalidated) != 1 {
		t.Fatalf("cache not invalidated on create")
	}
}

func TestCreateAbortsOnUnknownProject(t *testing.T) {
	svc, store, _, _, _ := newTaskServiceFixture()

	err := svc.Create(context.Background(), &model.Task{Name: "Dig", ProjectName: "Nowhere"})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("aborted create must not write, got %d inserts", len(store.inserted))
	}
}

// The general edit path sets status and progress independently; a task can
// end up completed at 40%. That drift is accepted and not reconciled.
func TestGeneralUpdateAllowsInconsistentStatus(t *testing.T) {
	svc, store, _, _, _ := newTaskServiceFixture(&model.Task{
		ID: "t1", ProjectID: "p1", Progress: 40, Status: model.StatusInProgress,
	})

	edited := &model.Task{ID: "t1", ProjectID: "p1", Progress: 40, Status: model.StatusCompleted}
	if err := svc.Update(context.Background(), edited); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := store.tasks["t1"]
	if got.Status != model.StatusCompleted || got.Progress != 40 {
		t.Fatalf("general edit must write as given, got {progress %d, status %q}", got.Progress, got.Status)
	}
}
