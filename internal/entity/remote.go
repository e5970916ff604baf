package entity

import "time"

// RemoteObject is what the media host reports for a freshly stored image.
type RemoteObject struct {
	RemoteID string
	URL      string
}

type RemoteResource struct {
	RemoteID  string    `json:"publicId"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}

type RemoteFolder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type RemoteSubmission struct {
	SubmissionID string           `json:"submissionId"`
	FolderPath   string           `json:"folderPath"`
	ImageCount   int              `json:"imageCount"`
	Resources    []RemoteResource `json:"resources"`
	TotalSize    int64            `json:"totalSize"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type RemoteUser struct {
	UserIdentifier   string             `json:"userIdentifier"`
	FolderPath       string             `json:"folderPath"`
	Submissions      []RemoteSubmission `json:"submissions"`
	TotalSubmissions int                `json:"totalSubmissions"`
	TotalImages      int                `json:"totalImages"`
	TotalSize        int64              `json:"totalSize"`
	LastActivity     *time.Time         `json:"lastActivity"`
	Error            string             `json:"error,omitempty"`
}
