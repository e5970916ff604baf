package entity

import "time"

// UploadIntent is written before any byte reaches the media host, so a crash
// between upload and insert leaves a trace the reconciler can resolve.
type UploadIntent struct {
	SubmissionID string       `json:"submission_id"`
	Folder       string       `json:"folder"`
	ImageCount   int          `json:"image_count"`
	Status       IntentStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
}
