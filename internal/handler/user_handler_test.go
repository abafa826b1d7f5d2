package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"buildtrack/internal/model"
)

type fakeUserDirectory struct {
	users map[string]*model.User
}

func (f *fakeUserDirectory) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserDirectory) AssignProjects(_ context.Context, userID string, projectIDs []string) error {
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no rows in result set")
	}
	u.AssignedProjects = projectIDs
	return nil
}

func newUserRouter(dir *fakeUserDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewUserHandler(dir, zap.NewNop())
	r.PUT("/users/:id/projects", h.AssignProjects)
	return r
}

func putJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAssignProjectsDrivesClientVisibility(t *testing.T) {
	dir := &fakeUserDirectory{users: map[string]*model.User{
		"u1": {ID: "u1", Username: "acme", Role: "client"},
	}}
	r := newUserRouter(dir)

	w := putJSON(t, r, "/users/u1/projects", map[string]any{"project_ids": []string{"p1", "p2"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	u := dir.users["u1"]
	if !reflect.DeepEqual(u.AssignedProjects, []string{"p1", "p2"}) {
		t.Fatalf("assigned_projects = %v, want [p1 p2]", u.AssignedProjects)
	}
	if !u.CanSeeProject("p1") {
		t.Fatalf("client should see assigned project p1")
	}
	if u.CanSeeProject("p3") {
		t.Fatalf("client should not see unassigned project p3")
	}
}

func TestAssignProjectsEmptyListClears(t *testing.T) {
	dir := &fakeUserDirectory{users: map[string]*model.User{
		"u1": {ID: "u1", Role: "client", AssignedProjects: []string{"p1"}},
	}}
	r := newUserRouter(dir)

	w := putJSON(t, r, "/users/u1/projects", map[string]any{"project_ids": []string{}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(dir.users["u1"].AssignedProjects) != 0 {
		t.Fatalf("assigned_projects = %v, want empty", dir.users["u1"].AssignedProjects)
	}
	if dir.users["u1"].CanSeeProject("p1") {
		t.Fatalf("cleared client should no longer see p1")
	}
}

func TestAssignProjectsUnknownUser(t *testing.T) {
	dir := &fakeUserDirectory{users: map[string]*model.User{}}
	r := newUserRouter(dir)

	w := putJSON(t, r, "/users/nobody/projects", map[string]any{"project_ids": []string{"p1"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
