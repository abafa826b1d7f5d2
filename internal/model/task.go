package model

import "time"

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"` // denormalized; grouping matches on this
	PhaseID     string    `json:"phase_id"`     // empty = unassigned
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	DueDate     time.Time `json:"due_date"` // legacy single date, fallback when start/end absent
	Trade       string    `json:"trade"`
	Priority    string    `json:"priority"` // high / medium / low
	Status      string    `json:"status"`   // planned / in-progress / delayed / completed
	Progress    int       `json:"progress"` // 0-100
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResolvedStart returns the task's start date, falling back to the legacy
// due date when no explicit range was set.
func (t *Task) ResolvedStart() time.Time {
	if t.StartDate.IsZero() {
		return t.DueDate
	}
	return t.StartDate
}

// ResolvedEnd returns the task's end date, falling back to the legacy
// due date when no explicit range was set.
func (t *Task) ResolvedEnd() time.Time {
	if t.EndDate.IsZero() {
		return t.DueDate
	}
	return t.EndDate
}

type ProgressComment struct {
	ID               string    `json:"id"`
	TaskID           string    `json:"task_id"`
	AuthorID         string    `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	Comment          string    `json:"comment"`
	PreviousProgress int       `json:"previous_progress"`
	NewProgress      int       `json:"new_progress"`
	CreatedAt        time.Time `json:"created_at"`
}
