package reconciler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
)

// Reconciler periodically settles upload intents left pending by ingestions
// that never finished.
type Reconciler struct {
	sub    usecase.SubmissionUseCase
	logger logger.Interface

	interval     time.Duration
	staleAfter   time.Duration
	sweepTimeout time.Duration
	batchSize    int

	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	sub usecase.SubmissionUseCase,
	l logger.Interface,
	interval time.Duration,
	staleAfter time.Duration,
	sweepTimeout time.Duration,
	batchSize int,
) *Reconciler {
	return &Reconciler{
		sub:          sub,
		logger:       l,
		interval:     interval,
		staleAfter:   staleAfter,
		sweepTimeout: sweepTimeout,
		batchSize:    batchSize,
		now:          time.Now,
	}
}

func (r *Reconciler) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Reconciler - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, sweepCancel := context.WithTimeout(r.ctx, r.sweepTimeout)
				r.sweep(sweepCtx)
				sweepCancel()
			}
		}
	}()

	return nil
}

func (r *Reconciler) sweep(ctx context.Context) {
	olderThan := r.now().Add(-r.staleAfter)

	n, err := r.sub.ReconcileStale(ctx, olderThan, r.batchSize)
	if err != nil {
		r.logger.Error(err, "Reconciler - sweep - r.sub.ReconcileStale")

		return
	}

	if n > 0 {
		r.logger.Info("Reconciler - sweep - %d stale intents resolved", n)
	}
}

func (r *Reconciler) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("Reconciler - Shutdown: %w", ctx.Err())
	}
}
