package models

import "time"

// Upload status values. Uploaded levels are trial-built right after saving.
const (
	FileStatusUploaded = "uploaded"
	FileStatusValid    = "valid"
	FileStatusInvalid  = "invalid"
)

// FileInfo represents metadata about an uploaded level file.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
}
