package timeline

import (
	"sort"
	"time"

	"buildtrack/internal/model"
)

// UnassignedGroupName labels the trailing group holding tasks that belong
// to no phase of the project.
const UnassignedGroupName = "Unassigned Tasks"

const unassignedGroupColor = "#9CA3AF"

// TaskView is a task enriched with everything the timeline renders: the
// resolved date range, the task's media and comments, and its milestones.
type TaskView struct {
	Task       model.Task              `json:"task"`
	Start      time.Time               `json:"start"`
	End        time.Time               `json:"end"`
	Media      []model.MediaFile       `json:"media"`
	MediaCount int                     `json:"media_count"`
	Comments   []model.ProgressComment `json:"comments"`
	Milestones []model.Milestone       `json:"milestones"`
}

// Group is one row band of the timeline: a phase, the synthetic unassigned
// bucket, or a trade bucket when the project has no phases.
type Group struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Collapsed bool       `json:"collapsed"`
	Tasks     []TaskView `json:"tasks"`
}

// Summary carries the derived statistics shown alongside the timeline.
type Summary struct {
	TaskCount       int            `json:"task_count"`
	OverallProgress int            `json:"overall_progress"`
	StatusCounts    map[string]int `json:"status_counts"`
}

// BuildGroups derives the ordered phase→tasks structure from the flat
// collections. It is a pure function of its inputs: recomputing on
// unchanged data yields structurally identical output.
//
// With at least one phase, phases are emitted in ascending order (empty
// ones included) and tasks that match no phase id collect into a trailing
// "Unassigned Tasks" group, emitted only when non-empty. With zero phases,
// tasks group by their exact trade string in first-seen order, colored
// from the fixed palette.
func BuildGroups(
	project *model.Project,
	phases []model.Phase,
	tasks []model.Task,
	media []model.MediaFile,
	comments []model.ProgressComment,
	milestones []model.Milestone,
) []Group {
	if project == nil {
		return []Group{}
	}

	projectTasks := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ProjectName == project.Name {
			projectTasks = append(projectTasks, t)
		}
	}

	if len(phases) == 0 {
		return groupByTrade(projectTasks, media, comments, milestones)
	}

	ordered := make([]model.Phase, len(phases))
	copy(ordered, phases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	phaseIDs := make(map[string]bool, len(ordered))
	for _, p := range ordered {
		phaseIDs[p.ID] = true
	}

	groups := make([]Group, 0, len(ordered)+1)
	for _, p := range ordered {
		g := Group{
			ID:    p.ID,
			Name:  p.Name,
			Color: p.Color,
			Tasks: []TaskView{},
		}
		for _, t := range projectTasks {
			if t.PhaseID == p.ID {
				g.Tasks = append(g.Tasks, newTaskView(t, media, comments, milestones))
			}
		}
		groups = append(groups, g)
	}

	unassigned := Group{
		ID:    "unassigned",
		Name:  UnassignedGroupName,
		Color: unassignedGroupColor,
		Tasks: []TaskView{},
	}
	for _, t := range projectTasks {
		if t.PhaseID == "" || !phaseIDs[t.PhaseID] {
			unassigned.Tasks = append(unassigned.Tasks, newTaskView(t, media, comments, milestones))
		}
	}
	if len(unassigned.Tasks) > 0 {
		groups = append(groups, unassigned)
	}

	return groups
}

// groupByTrade is the zero-phase fallback: one group per distinct trade
// string (case-sensitive, exact match), in first-seen order.
func groupByTrade(
	tasks []model.Task,
	media []model.MediaFile,
	comments []model.ProgressComment,
	milestones []model.Milestone,
) []Group {
	groups := []Group{}
	index := make(map[string]int)

	for _, t := range tasks {
		i, seen := index[t.Trade]
		if !seen {
			i = len(groups)
			index[t.Trade] = i
			groups = append(groups, Group{
				ID:    t.Trade,
				Name:  t.Trade,
				Color: PaletteColor(i),
				Tasks: []TaskView{},
			})
		}
		groups[i].Tasks = append(groups[i].Tasks, newTaskView(t, media, comments, milestones))
	}

	return groups
}

func newTaskView(
	t model.Task,
	media []model.MediaFile,
	comments []model.ProgressComment,
	milestones []model.Milestone,
) TaskView {
	v := TaskView{
		Task:       t,
		Start:      t.ResolvedStart(),
		End:        t.ResolvedEnd(),
		Media:      []model.MediaFile{},
		Comments:   []model.ProgressComment{},
		Milestones: []model.Milestone{},
	}
	for _, m := range media {
		if m.TaskID == t.ID {
			v.Media = append(v.Media, m)
		}
	}
	v.MediaCount = len(v.Media)
	for _, c := range comments {
		if c.TaskID == t.ID {
			v.Comments = append(v.Comments, c)
		}
	}
	for _, ms := range milestones {
		if ms.TaskID == t.ID {
			v.Milestones = append(v.Milestones, ms)
		}
	}
	return v
}

// Summarize computes overall progress (mean of task progress, truncated)
// and per-status counts over the given tasks.
func Summarize(tasks []model.Task) Summary {
	s := Summary{
		TaskCount:    len(tasks),
		StatusCounts: map[string]int{},
	}
	if len(tasks) == 0 {
		return s
	}

	total := 0
	for _, t := range tasks {
		total += t.Progress
		s.StatusCounts[t.Status]++
	}
	s.OverallProgress = total / len(tasks)
	return s
}
