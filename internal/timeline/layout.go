package timeline

import (
	"math"
	"time"

	"buildtrack/internal/model"
)

const (
	DefaultDayWidth   = 40
	DefaultMarkerSize = 12
)

// Engine converts a project's date span and a fixed pixel-per-day unit
// into absolute pixel geometry. It never validates or repairs its input
// dates; degenerate spans degrade to empty grids or minimum-width bars.
type Engine struct {
	DayWidth   int
	MarkerSize int
}

func NewEngine(dayWidth int) Engine {
	return Engine{DayWidth: dayWidth, MarkerSize: DefaultMarkerSize}
}

// Bar is the rendered rectangle for one task, clipped to the project
// window.
type Bar struct {
	OffsetStartDays int `json:"offset_start_days"`
	OffsetEndDays   int `json:"offset_end_days"`
	DurationDays    int `json:"duration_days"`
	Left            int `json:"left"`
	Width           int `json:"width"`
	ProgressWidth   int `json:"progress_width"`
}

// Marker is a milestone indicator centered on its day column. It is not
// clipped: a milestone outside the window renders off-grid.
type Marker struct {
	Milestone model.Milestone `json:"milestone"`
	Left      int             `json:"left"`
}

func daysFloor(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func daysCeil(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// TotalDays is the number of day columns in the grid: ceil of the span,
// never negative.
func (e Engine) TotalDays(projectStart, projectEnd time.Time) int {
	n := daysCeil(projectStart, projectEnd)
	if n < 0 {
		return 0
	}
	return n
}

// ChartWidth is the full grid width in pixels.
func (e Engine) ChartWidth(totalDays int) int {
	return totalDays * e.DayWidth
}

// DateGrid produces exactly totalDays entries, one per calendar day
// starting at projectStart. Stepping is pure calendar-day arithmetic.
func (e Engine) DateGrid(projectStart, projectEnd time.Time) []time.Time {
	n := e.TotalDays(projectStart, projectEnd)
	grid := make([]time.Time, 0, n)
	d := projectStart
	for i := 0; i < n; i++ {
		grid = append(grid, d)
		d = d.AddDate(0, 0, 1)
	}
	return grid
}

// TaskBar computes the bar rectangle for one task. Tasks starting before
// the window clip to its left edge, tasks ending after it clip to its
// right edge, and anything that clips to nothing still renders at one
// DayWidth (the minimum-visible-width floor).
func (e Engine) TaskBar(projectStart time.Time, totalDays int, taskStart, taskEnd time.Time, progress int) Bar {
	offsetStart := daysFloor(projectStart, taskStart)
	if offsetStart < 0 {
		offsetStart = 0
	}
	offsetEnd := daysCeil(projectStart, taskEnd)
	if offsetEnd > totalDays {
		offsetEnd = totalDays
	}

	duration := offsetEnd - offsetStart
	width := duration * e.DayWidth
	if width < e.DayWidth {
		width = e.DayWidth
	}

	return Bar{
		OffsetStartDays: offsetStart,
		OffsetEndDays:   offsetEnd,
		DurationDays:    duration,
		Left:            offsetStart * e.DayWidth,
		Width:           width,
		ProgressWidth:   progress * width / 100,
	}
}

// MarkerLeft centers a milestone on its day column: day offset in pixels
// minus half the marker's rendered size.
func (e Engine) MarkerLeft(projectStart, milestoneDate time.Time) int {
	return daysFloor(projectStart, milestoneDate)*e.DayWidth - e.MarkerSize/2
}

// GroupLayout pairs an aggregated group with the geometry of its rows.
type GroupLayout struct {
	Group
	Rows []RowLayout `json:"rows"`
}

// RowLayout is the geometry for a single task row.
type RowLayout struct {
	TaskID  string   `json:"task_id"`
	Bar     Bar      `json:"bar"`
	Markers []Marker `json:"markers"`
}

// View is the full render model for one project's timeline.
type View struct {
	ProjectID  string        `json:"project_id"`
	TotalDays  int           `json:"total_days"`
	DayWidth   int           `json:"day_width"`
	ChartWidth int           `json:"chart_width"`
	Days       []time.Time   `json:"days"`
	Groups     []GroupLayout `json:"groups"`
	Summary    Summary       `json:"summary"`
}

// BuildView runs aggregation and layout end to end: raw records in,
// presentational grid out.
func BuildView(
	e Engine,
	project *model.Project,
	phases []model.Phase,
	tasks []model.Task,
	media []model.MediaFile,
	comments []model.ProgressComment,
	milestones []model.Milestone,
) *View {
	if project == nil {
		return &View{Groups: []GroupLayout{}, Days: []time.Time{}}
	}

	totalDays := e.TotalDays(project.StartDate, project.EndDate)
	groups := BuildGroups(project, phases, tasks, media, comments, milestones)

	layouts := make([]GroupLayout, 0, len(groups))
	summaryTasks := make([]model.Task, 0, len(tasks))
	for _, g := range groups {
		gl := GroupLayout{Group: g, Rows: make([]RowLayout, 0, len(g.Tasks))}
		for _, tv := range g.Tasks {
			row := RowLayout{
				TaskID:  tv.Task.ID,
				Bar:     e.TaskBar(project.StartDate, totalDays, tv.Start, tv.End, tv.Task.Progress),
				Markers: []Marker{},
			}
			for _, ms := range tv.Milestones {
				row.Markers = append(row.Markers, Marker{
					Milestone: ms,
					Left:      e.MarkerLeft(project.StartDate, ms.Date),
				})
			}
			gl.Rows = append(gl.Rows, row)
			summaryTasks = append(summaryTasks, tv.Task)
		}
		layouts = append(layouts, gl)
	}

	return &View{
		ProjectID:  project.ID,
		TotalDays:  totalDays,
		DayWidth:   e.DayWidth,
		ChartWidth: e.ChartWidth(totalDays),
		Days:       e.DateGrid(project.StartDate, project.EndDate),
		Groups:     layouts,
		Summary:    Summarize(summaryTasks),
	}
}
