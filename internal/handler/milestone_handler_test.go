package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
)

type fakeMilestoneStore struct {
	items   map[string]*model.Milestone
	updates int
}

func (f *fakeMilestoneStore) Insert(_ context.Context, m *model.Milestone) error {
	f.items[m.ID] = m
	return nil
}

func (f *fakeMilestoneStore) Get(_ context.Context, id string) (*model.Milestone, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMilestoneStore) ListByTask(_ context.Context, taskID string) ([]model.Milestone, error) {
	out := []model.Milestone{}
	for _, m := range f.items {
		if m.TaskID == taskID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMilestoneStore) Update(_ context.Context, m *model.Milestone) error {
	f.updates++
	f.items[m.ID] = m
	return nil
}

func (f *fakeMilestoneStore) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeTaskFinder struct {
	tasks map[string]*model.Task
}

func (f *fakeTaskFinder) Get(_ context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *t
	return &cp, nil
}

type fakeViewInvalidator struct {
	invalidated []string
}

func (f *fakeViewInvalidator) Invalidate(_ context.Context, projectID string) {
	f.invalidated = append(f.invalidated, projectID)
}

func newMilestoneFixture() (*fakeMilestoneStore, *fakeTaskFinder, *fakeViewInvalidator, *gin.Engine) {
	store := &fakeMilestoneStore{items: map[string]*model.Milestone{
		"m1": {ID: "m1", TaskID: "tA", Name: "Pour sign-off", Type: model.MilestoneInspection,
			Date: time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC)},
	}}
	tasks := &fakeTaskFinder{tasks: map[string]*model.Task{
		"tA": {ID: "tA", ProjectID: "pA"},
		"tB": {ID: "tB", ProjectID: "pB"},
	}}
	inv := &fakeViewInvalidator{}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMilestoneHandler(store, tasks, inv, zap.NewNop())
	r.PUT("/tasks/:id/milestones/:milestoneId", h.Update)
	r.DELETE("/tasks/:id/milestones/:milestoneId", h.Delete)
	return store, tasks, inv, r
}

func TestUpdateMilestoneWrongTaskRejected(t *testing.T) {
	store, _, inv, r := newMilestoneFixture()

	w := putJSON(t, r, "/tasks/tB/milestones/m1", map[string]any{
		"name": "hijacked", "type": "approval", "date": "2024-07-06",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if store.updates != 0 {
		t.Fatalf("updates = %d, want 0", store.updates)
	}
	if store.items["m1"].Name != "Pour sign-off" {
		t.Fatalf("milestone mutated through mismatched task path")
	}
	if len(inv.invalidated) != 0 {
		t.Fatalf("invalidated = %v, want none", inv.invalidated)
	}
}

func TestUpdateMilestoneOwningTask(t *testing.T) {
	store, _, inv, r := newMilestoneFixture()

	w := putJSON(t, r, "/tasks/tA/milestones/m1", map[string]any{
		"name": "Final sign-off", "type": "approval", "date": "2024-07-06",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	m := store.items["m1"]
	if m.Name != "Final sign-off" || m.Type != model.MilestoneApproval {
		t.Fatalf("milestone = %+v, want updated name and type", m)
	}
	if m.TaskID != "tA" {
		t.Fatalf("task_id = %q, want tA preserved", m.TaskID)
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != "pA" {
		t.Fatalf("invalidated = %v, want [pA]", inv.invalidated)
	}
}

func TestDeleteMilestoneWrongTaskKeepsRow(t *testing.T) {
	store, _, inv, r := newMilestoneFixture()

	req := httptest.NewRequest(http.MethodDelete, "/tasks/tB/milestones/m1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if _, ok := store.items["m1"]; !ok {
		t.Fatalf("milestone deleted through mismatched task path")
	}
	if len(inv.invalidated) != 0 {
		t.Fatalf("invalidated = %v, want none", inv.invalidated)
	}
}

func TestDeleteMilestoneOwningTask(t *testing.T) {
	store, _, inv, r := newMilestoneFixture()

	req := httptest.NewRequest(http.MethodDelete, "/tasks/tA/milestones/m1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, ok := store.items["m1"]; ok {
		t.Fatalf("milestone still present after delete")
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != "pA" {
		t.Fatalf("invalidated = %v, want [pA]", inv.invalidated)
	}
}
