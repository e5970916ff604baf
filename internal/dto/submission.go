package dto

import (
	"io"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
)

// ImageFile is one image part of an upload request. Open may be called once
// per upload attempt.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type IngestRequest struct {
	UserInfo *entity.UserInfo
	Images   []ImageFile
}

type IngestResult struct {
	SubmissionID string
	ImageCount   int
	Folder       string
}

type SubmissionQuery struct {
	User         string `json:"userIdentifier"`
	SubmissionID string `json:"submissionId"`
	Limit        int    `json:"limit"`
}

type DeleteResult struct {
	SubmissionID     string
	CloudinaryFolder string
}

// ProcessedEvent is the message the processing step publishes once a
// submission's images have been handled.
type ProcessedEvent struct {
	SubmissionID string                  `json:"submissionId"`
	ProcessedAt  string                  `json:"processedAt"`
	Images       []entity.ProcessedImage `json:"images"`
}

// CreatedEvent is published for every committed submission.
type CreatedEvent struct {
	SubmissionID   string   `json:"submissionId"`
	UserIdentifier string   `json:"userIdentifier"`
	Folder         string   `json:"cloudinaryFolder"`
	ImageCount     int      `json:"imageCount"`
	RemoteIDs      []string `json:"remoteIds"`
	CreatedAt      string   `json:"createdAt"`
}
