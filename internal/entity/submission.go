package entity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionProcessed SubmissionStatus = "processed"
)

type UserInfo struct {
	Email   string `json:"email" bson:"email"`
	Name    string `json:"name" bson:"name"`
	Project string `json:"project" bson:"project"`
}

// Valid reports whether every field carries a non-blank value.
func (u UserInfo) Valid() bool {
	return strings.TrimSpace(u.Email) != "" &&
		strings.TrimSpace(u.Name) != "" &&
		strings.TrimSpace(u.Project) != ""
}

// Identifier is the display key submissions are filed under: email, else name.
func (u UserInfo) Identifier() string {
	if email := strings.TrimSpace(u.Email); email != "" {
		return email
	}

	return strings.TrimSpace(u.Name)
}

type SubmissionImage struct {
	RemoteID     string  `json:"remoteId" bson:"remoteId"`
	URL          string  `json:"url" bson:"url"`
	OriginalName string  `json:"originalName" bson:"originalName"`
	Processed    bool    `json:"processed" bson:"processed"`
	ProcessedURL *string `json:"processedUrl" bson:"processedUrl"`
}

type Submission struct {
	SubmissionID     string            `json:"submissionId" bson:"submissionId"`
	UserInfo         UserInfo          `json:"userInfo" bson:"userInfo"`
	UserIdentifier   string            `json:"userIdentifier" bson:"userIdentifier"`
	Images           []SubmissionImage `json:"images" bson:"images"`
	Status           SubmissionStatus  `json:"status" bson:"status"` // pending, processed
	CreatedAt        time.Time         `json:"createdAt" bson:"createdAt"`
	ProcessedAt      *time.Time        `json:"processedAt" bson:"processedAt"`
	CloudinaryFolder string            `json:"cloudinaryFolder" bson:"cloudinaryFolder"`
}

// ProcessedImage is the result the processing step reports for one image.
type ProcessedImage struct {
	RemoteID     string `json:"remoteId"`
	ProcessedURL string `json:"processedUrl"`
}

const (
	submissionIDPrefix = "sub_"
	idSuffixLen        = 9
	idAlphabet         = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewSubmissionID returns sub_<unix millis>_<9 base36 chars>.
func NewSubmissionID(now time.Time) (string, error) {
	var sb strings.Builder
	sb.Grow(idSuffixLen)

	max := big.NewInt(int64(len(idAlphabet)))
	for range idSuffixLen {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("NewSubmissionID - rand.Int: %w", err)
		}
		sb.WriteByte(idAlphabet[n.Int64()])
	}

	return fmt.Sprintf("%s%d_%s", submissionIDPrefix, now.UnixMilli(), sb.String()), nil
}
