package submission

import (
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/google/uuid"
)

const _defaultContentType = "application/octet-stream"

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// imageExt prefers the file name's extension and falls back to the
// declared content type.
func imageExt(f dto.ImageFile) string {
	if ext := filepath.Ext(f.Name); ext != "" {
		return strings.ToLower(ext)
	}

	return extByContentType[strings.ToLower(f.ContentType)]
}

func imageContentType(f dto.ImageFile) string {
	if f.ContentType != "" {
		return f.ContentType
	}

	if ct := mime.TypeByExtension(filepath.Ext(f.Name)); ct != "" {
		return ct
	}

	return _defaultContentType
}

func (uc *UseCase) createOutboxEvent(sub *entity.Submission) (*entity.OutboxEvent, error) {
	remoteIDs := make([]string, 0, len(sub.Images))
	for _, img := range sub.Images {
		remoteIDs = append(remoteIDs, img.RemoteID)
	}

	b, err := json.Marshal(dto.CreatedEvent{
		SubmissionID:   sub.SubmissionID,
		UserIdentifier: sub.UserIdentifier,
		Folder:         sub.CloudinaryFolder,
		ImageCount:     len(sub.Images),
		RemoteIDs:      remoteIDs,
		CreatedAt:      sub.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: sub.SubmissionID,
		EventType:   entity.EventSubmissionCreated,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}
