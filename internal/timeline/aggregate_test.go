package timeline

import (
	"reflect"
	"testing"
	"time"

	"buildtrack/internal/model"
)

func fixtureProject() *model.Project {
	return &model.Project{
		ID:        "p1",
		Name:      "Site A",
		StartDate: date(2024, time.July, 1),
		EndDate:   date(2024, time.July, 31),
	}
}

func TestBuildGroupsPhaseOrderAndUnassigned(t *testing.T) {
	project := fixtureProject()
	phases := []model.Phase{
		// deliberately out of order to prove sorting
		{ID: "ph2", ProjectID: "p1", Name: "Framing", Order: 1, Color: "#F59E0B"},
		{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0, Color: "#3B82F6"},
	}
	tasks := []model.Task{
		{ID: "t1", Name: "Dig", ProjectName: "Site A", PhaseID: "ph1"},
		{ID: "t2", Name: "Paint", ProjectName: "Site A", PhaseID: ""},
	}

	groups := BuildGroups(project, phases, tasks, nil, nil, nil)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Name != "Groundwork" || groups[1].Name != "Framing" {
		t.Fatalf("phase order wrong: %q, %q", groups[0].Name, groups[1].Name)
	}
	if len(groups[0].Tasks) != 1 || groups[0].Tasks[0].Task.ID != "t1" {
		t.Fatalf("Groundwork tasks wrong: %+v", groups[0].Tasks)
	}
	if len(groups[1].Tasks) != 0 {
		t.Fatalf("empty phase should still be emitted with no tasks, got %d", len(groups[1].Tasks))
	}
	if groups[2].Name != UnassignedGroupName {
		t.Fatalf("trailing group = %q, want %q", groups[2].Name, UnassignedGroupName)
	}
	if len(groups[2].Tasks) != 1 || groups[2].Tasks[0].Task.ID != "t2" {
		t.Fatalf("unassigned tasks wrong: %+v", groups[2].Tasks)
	}
}

func TestBuildGroupsUnassignedOnlyWhenNonEmpty(t *testing.T) {
	project := fixtureProject()
	phases := []model.Phase{{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0}}
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", PhaseID: "ph1"},
	}

	groups := BuildGroups(project, phases, tasks, nil, nil, nil)
	if len(groups) != 1 {
		t.Fatalf("expected no unassigned group, got %d groups", len(groups))
	}
}

func TestBuildGroupsAllTasksUnassigned(t *testing.T) {
	project := fixtureProject()
	phases := []model.Phase{{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0}}
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A"},
		{ID: "t2", ProjectName: "Site A", PhaseID: "gone"}, // stale phase id
	}

	groups := BuildGroups(project, phases, tasks, nil, nil, nil)
	if len(groups) != 2 {
		t.Fatalf("expected phase + unassigned, got %d groups", len(groups))
	}
	if len(groups[1].Tasks) != 2 {
		t.Fatalf("both tasks should be unassigned, got %d", len(groups[1].Tasks))
	}
}

func TestBuildGroupsTradeFallback(t *testing.T) {
	project := fixtureProject()
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", Trade: "Electrical"},
		{ID: "t2", ProjectName: "Site A", Trade: "Plumbing"},
		{ID: "t3", ProjectName: "Site A", Trade: "Electrical"},
	}

	groups := BuildGroups(project, nil, tasks, nil, nil, nil)
	if len(groups) != 2 {
		t.Fatalf("expected 2 trade groups, got %d", len(groups))
	}
	if groups[0].Name != "Electrical" || groups[1].Name != "Plumbing" {
		t.Fatalf("first-seen trade order wrong: %q, %q", groups[0].Name, groups[1].Name)
	}
	if groups[0].Color == groups[1].Color {
		t.Fatalf("adjacent trades share color %q", groups[0].Color)
	}
	if groups[0].Color != PaletteColor(0) || groups[1].Color != PaletteColor(1) {
		t.Fatalf("palette assignment wrong: %q, %q", groups[0].Color, groups[1].Color)
	}
	if len(groups[0].Tasks) != 2 {
		t.Fatalf("Electrical should hold 2 tasks, got %d", len(groups[0].Tasks))
	}
}

func TestBuildGroupsFiltersByProjectName(t *testing.T) {
	project := fixtureProject()
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", Trade: "Electrical"},
		{ID: "t2", ProjectName: "Site B", Trade: "Electrical"},
	}

	groups := BuildGroups(project, nil, tasks, nil, nil, nil)
	if len(groups) != 1 || len(groups[0].Tasks) != 1 {
		t.Fatalf("tasks of other projects must be filtered out: %+v", groups)
	}
}

func TestBuildGroupsNoProject(t *testing.T) {
	groups := BuildGroups(nil, nil, []model.Task{{ID: "t1"}}, nil, nil, nil)
	if len(groups) != 0 {
		t.Fatalf("no project selected must yield empty result, got %d groups", len(groups))
	}
}

func TestBuildGroupsEmptyTaskList(t *testing.T) {
	project := fixtureProject()
	phases := []model.Phase{
		{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0},
		{ID: "ph2", ProjectID: "p1", Name: "Framing", Order: 1},
	}

	groups := BuildGroups(project, phases, nil, nil, nil, nil)
	if len(groups) != 2 {
		t.Fatalf("phase groups must still be emitted, got %d", len(groups))
	}
	for _, g := range groups {
		if g.Tasks == nil || len(g.Tasks) != 0 {
			t.Fatalf("group %q should carry an empty task slice", g.Name)
		}
	}
}

func TestBuildGroupsAttachesMediaAndComments(t *testing.T) {
	project := fixtureProject()
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", Trade: "Electrical"},
	}
	media := []model.MediaFile{
		{ID: "m1", TaskID: "t1", Type: model.MediaTypeImage},
		{ID: "m2", TaskID: "t1", Type: model.MediaTypeVideo},
		{ID: "m3", TaskID: "other", Type: model.MediaTypeImage},
	}
	comments := []model.ProgressComment{
		{ID: "c1", TaskID: "t1", PreviousProgress: 0, NewProgress: 40},
	}

	groups := BuildGroups(project, nil, tasks, media, comments, nil)
	tv := groups[0].Tasks[0]
	if tv.MediaCount != 2 || len(tv.Media) != 2 {
		t.Fatalf("media subset wrong: count=%d len=%d", tv.MediaCount, len(tv.Media))
	}
	if len(tv.Comments) != 1 || tv.Comments[0].ID != "c1" {
		t.Fatalf("comments wrong: %+v", tv.Comments)
	}
}

func TestTaskViewDueDateFallback(t *testing.T) {
	project := fixtureProject()
	due := date(2024, time.July, 10)
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", Trade: "Electrical", DueDate: due},
	}

	groups := BuildGroups(project, nil, tasks, nil, nil, nil)
	tv := groups[0].Tasks[0]
	if !tv.Start.Equal(due) || !tv.End.Equal(due) {
		t.Fatalf("due date fallback failed: start=%v end=%v", tv.Start, tv.End)
	}
}

func TestBuildGroupsIdempotent(t *testing.T) {
	project := fixtureProject()
	phases := []model.Phase{
		{ID: "ph1", ProjectID: "p1", Name: "Groundwork", Order: 0},
	}
	tasks := []model.Task{
		{ID: "t1", ProjectName: "Site A", PhaseID: "ph1"},
		{ID: "t2", ProjectName: "Site A"},
	}
	media := []model.MediaFile{{ID: "m1", TaskID: "t1"}}

	first := BuildGroups(project, phases, tasks, media, nil, nil)
	second := BuildGroups(project, phases, tasks, media, nil, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSummarize(t *testing.T) {
	tasks := []model.Task{
		{Progress: 100, Status: model.StatusCompleted},
		{Progress: 50, Status: model.StatusInProgress},
		{Progress: 0, Status: model.StatusPlanned},
	}

	s := Summarize(tasks)
	if s.TaskCount != 3 {
		t.Fatalf("TaskCount = %d, want 3", s.TaskCount)
	}
	if s.OverallProgress != 50 {
		t.Fatalf("OverallProgress = %d, want 50", s.OverallProgress)
	}
	if s.StatusCounts[model.StatusCompleted] != 1 || s.StatusCounts[model.StatusPlanned] != 1 {
		t.Fatalf("unexpected status counts: %+v", s.StatusCounts)
	}

	empty := Summarize(nil)
	if empty.TaskCount != 0 || empty.OverallProgress != 0 {
		t.Fatalf("empty summary wrong: %+v", empty)
	}
}
