package mq

type TaskProgressUpdatedPayload struct {
	TaskID           string `json:"task_id"`
	ProjectID        string `json:"project_id"`
	UserID           string `json:"user_id"`
	PreviousProgress int    `json:"previous_progress"`
	NewProgress      int    `json:"new_progress"`
	Status           string `json:"status"`
}

type ProjectCreatedPayload struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // YYYY-MM-DD format
	EndDate   string `json:"end_date"`   // YYYY-MM-DD format
}

type MediaUploadedPayload struct {
	MediaID string `json:"media_id"`
	TaskID  string `json:"task_id"`
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
}
