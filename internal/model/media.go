package model

import "time"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type MediaFile struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"` // resolved by the storage provider, opaque here
	Type         string    `json:"type"` // image / video
	UploaderID   string    `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
	Description  string    `json:"description"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
