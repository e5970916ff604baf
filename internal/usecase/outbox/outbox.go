package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/google/uuid"
)

type UseCase struct {
	outbox     repo.OutboxRepo
	transactor repo.Transactor

	logger logger.Interface
}

func New(outbox repo.OutboxRepo, transactor repo.Transactor, l logger.Interface) *UseCase {
	return &UseCase{
		outbox:     outbox,
		transactor: transactor,
		logger:     l,
	}
}

func ids(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}

// ClaimPendingEvents selects sendable events and marks them processing in one
// transaction, so concurrent relays never pick the same rows.
func (uc *UseCase) ClaimPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	var events []*entity.OutboxEvent

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		events, err = uc.outbox.GetPendingEvents(ctx, maxRetries, limit)
		if err != nil {
			return fmt.Errorf("uc.outbox.GetPendingEvents: %w", err)
		}

		if len(events) == 0 {
			return nil
		}

		err = uc.outbox.MarkAsProcessingBatch(ctx, ids(events))
		if err != nil {
			return fmt.Errorf("uc.outbox.MarkAsProcessingBatch: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("OutboxUseCase - ClaimPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *UseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outbox.MarkAsProcessedBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessedBatch - uc.outbox.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outbox.IncrementRetryCountBatch(ctx, ids(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - IncrementRetryCountBatch - uc.outbox.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outbox.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkMaxRetriesAsFailed - uc.outbox.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *UseCase) CleanupOutbox(ctx context.Context, retention time.Duration) error {
	count, err := uc.outbox.DeleteOldProcessedAndFailed(ctx, time.Now().Add(-retention))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - CleanupOutbox - uc.outbox.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("OutboxUseCase - CleanupOutbox - deleted old events, count = %d", count)
	}

	return nil
}
