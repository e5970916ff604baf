package repo

import (
	"context"
	"io"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/google/uuid"
)

type (
	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}

	// MediaGateway is the remote object store holding image bytes.
	MediaGateway interface {
		Upload(ctx context.Context, folder, name string, data io.Reader, size int64, contentType string) (entity.RemoteObject, error)
		ListFolder(ctx context.Context, prefix string, maxResults int) ([]entity.RemoteResource, error)
		DeleteFolder(ctx context.Context, prefix string) (int, error)
		ListUserFolders(ctx context.Context) ([]entity.RemoteFolder, error)
		ListSubmissionFolders(ctx context.Context, user string) ([]entity.RemoteFolder, error)
	}

	SubmissionRepo interface {
		Insert(ctx context.Context, s *entity.Submission) error
		Find(ctx context.Context, q dto.SubmissionQuery) ([]entity.Submission, error)
		FindOne(ctx context.Context, submissionID string) (*entity.Submission, error)
		DeleteOne(ctx context.Context, submissionID string) (int64, error)
		MarkProcessed(ctx context.Context, submissionID string, at time.Time, images []entity.ProcessedImage) error
		Ping(ctx context.Context) error
	}

	UploadIntentRepo interface {
		Create(ctx context.Context, intent *entity.UploadIntent) error
		MarkCommitted(ctx context.Context, submissionID string) error
		MarkAborted(ctx context.Context, submissionID string) error
		GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.UploadIntent, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Time) (int64, error)
	}
)
