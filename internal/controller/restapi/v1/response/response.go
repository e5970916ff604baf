package response

import "github.com/andreyxaxa/Photo-Intake/internal/entity"

type Error struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Upload failed"`
}

type Upload struct {
	Success      bool   `json:"success" example:"true"`
	SubmissionID string `json:"submissionId" example:"sub_1755080000000_k3j9x0a1b"`
	ImageCount   int    `json:"imageCount" example:"3"`
}

type Query struct {
	UserIdentifier *string `json:"userIdentifier"`
	SubmissionID   *string `json:"submissionId"`
	Limit          int     `json:"limit" example:"50"`
}

type Submissions struct {
	Success     bool                        `json:"success" example:"true"`
	Submissions []entity.EnrichedSubmission `json:"submissions"`
	Total       int                         `json:"total" example:"1"`
	Query       Query                       `json:"query"`
}

type Delete struct {
	Success          bool   `json:"success" example:"true"`
	Message          string `json:"message" example:"Submission deleted successfully"`
	SubmissionID     string `json:"submissionId"`
	CloudinaryFolder string `json:"cloudinaryFolder"`
}

type Users struct {
	Success  bool                `json:"success" example:"true"`
	Users    []entity.RemoteUser `json:"users"`
	Total    int                 `json:"total"`
	Filtered bool                `json:"filtered"`
	Filter   *string             `json:"filter"`
}

type Health struct {
	Status string `json:"status" example:"ok"`
}
