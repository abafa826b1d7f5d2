package model

import "time"

const (
	MilestoneInspection = "inspection"
	MilestoneApproval   = "approval"
	MilestoneHandover   = "handover"
)

// Milestone is a dated marker attached to a task, independent of the
// task's own date range.
type Milestone struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // inspection / approval / handover
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
