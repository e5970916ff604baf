package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
)

type (
	SubmissionUseCase interface {
		Ingest(ctx context.Context, req dto.IngestRequest) (dto.IngestResult, error)
		Delete(ctx context.Context, submissionID string) (dto.DeleteResult, error)
		MarkProcessed(ctx context.Context, ev dto.ProcessedEvent) error
		ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
		Health(ctx context.Context) error
	}

	DashboardUseCase interface {
		ListSubmissions(ctx context.Context, q dto.SubmissionQuery) ([]entity.EnrichedSubmission, error)
		ListRemoteUsers(ctx context.Context, filter string) ([]entity.RemoteUser, error)
	}

	OutboxUseCase interface {
		ClaimPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context, retention time.Duration) error
	}
)
