package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
)

type Intervals struct {
	Poll       time.Duration
	MarkFailed time.Duration
	Cleanup    time.Duration
}

// OutboxRelay publishes queued submission events and keeps the outbox table
// trimmed.
type OutboxRelay struct {
	ob     usecase.OutboxUseCase
	es     infrastructure.EventsSender
	logger logger.Interface

	intervals           Intervals
	retention           time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	ob usecase.OutboxUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	intervals Intervals,
	retention time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	maxRetries int,
) *OutboxRelay {
	return &OutboxRelay{
		ob:                  ob,
		es:                  es,
		logger:              l,
		intervals:           intervals,
		retention:           retention,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		maxRetries:          maxRetries,
	}
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. publish pending events
	r.worker(r.intervals.Poll, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// 2. give up on events out of retries
	r.worker(r.intervals.MarkFailed, func() {
		err := r.ob.MarkMaxRetriesAsFailed(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.ob.MarkMaxRetriesAsFailed")
		}
	})

	// 3. drop processed and failed events past retention
	r.worker(r.intervals.Cleanup, func() {
		err := r.ob.CleanupOutbox(r.ctx, r.retention)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.ob.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	// 1. claim pending events below max retries, they come back as processing
	events, err := r.ob.ClaimPendingEvents(ctx, r.maxRetries, r.batchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.ob.ClaimPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	// 2. publish
	err = r.es.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")
		// 2.1 back to pending with one more retry spent
		incErr := r.ob.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.ob.IncrementRetryCountBatch")
		}
		return
	}

	// 3. sent
	err = r.ob.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.ob.MarkAsProcessedBatch")

		return
	}

	r.logger.Debug("OutboxRelay - processEventsBatch - %d events published", len(events))
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.es.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
