package outbox

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/google/uuid"
)

type fakeOutbox struct {
	mu sync.Mutex

	pending   []*entity.OutboxEvent
	claimErr  error
	processed int
	retried   int
	failed    int
	cleaned   []time.Duration
}

func (f *fakeOutbox) ClaimPendingEvents(_ context.Context, _, limit int) ([]*entity.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claimErr != nil {
		return nil, f.claimErr
	}

	n := min(limit, len(f.pending))
	out := f.pending[:n]
	f.pending = f.pending[n:]

	return out, nil
}

func (f *fakeOutbox) MarkAsProcessedBatch(_ context.Context, events []*entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.processed += len(events)

	return nil
}

func (f *fakeOutbox) IncrementRetryCountBatch(_ context.Context, events []*entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.retried += len(events)

	return nil
}

func (f *fakeOutbox) MarkMaxRetriesAsFailed(_ context.Context, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failed++

	return nil
}

func (f *fakeOutbox) CleanupOutbox(_ context.Context, retention time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleaned = append(f.cleaned, retention)

	return nil
}

type fakeSender struct {
	mu     sync.Mutex
	err    error
	sent   int
	closed bool
}

func (s *fakeSender) SendEvents(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.sent += len(events)

	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

func events(n int) []*entity.OutboxEvent {
	out := make([]*entity.OutboxEvent, n)
	for i := range out {
		out[i] = &entity.OutboxEvent{ID: uuid.New(), EventType: entity.EventSubmissionCreated}
	}

	return out
}

func newRelay(ob *fakeOutbox, es *fakeSender) *OutboxRelay {
	return New(ob, es, logger.NewWithWriter("error", io.Discard),
		Intervals{Poll: time.Hour, MarkFailed: time.Hour, Cleanup: time.Hour},
		72*time.Hour, time.Second, 2, 3)
}

func TestProcessEventsBatch_Published(t *testing.T) {
	ob := &fakeOutbox{pending: events(3)}
	es := &fakeSender{}
	r := newRelay(ob, es)

	r.processEventsBatch(context.Background())

	if es.sent != 2 || ob.processed != 2 || ob.retried != 0 {
		t.Fatalf("sent %d, processed %d, retried %d", es.sent, ob.processed, ob.retried)
	}
	if len(ob.pending) != 1 {
		t.Errorf("batch size not honoured, %d left", len(ob.pending))
	}
}

func TestProcessEventsBatch_SendFailureSpendsRetry(t *testing.T) {
	ob := &fakeOutbox{pending: events(2)}
	es := &fakeSender{err: errors.New("broker down")}
	r := newRelay(ob, es)

	r.processEventsBatch(context.Background())

	if ob.retried != 2 || ob.processed != 0 {
		t.Fatalf("processed %d, retried %d", ob.processed, ob.retried)
	}
}

func TestProcessEventsBatch_NothingClaimed(t *testing.T) {
	ob := &fakeOutbox{claimErr: errors.New("db down")}
	es := &fakeSender{}
	r := newRelay(ob, es)

	r.processEventsBatch(context.Background())

	if es.sent != 0 || ob.retried != 0 {
		t.Fatal("nothing may be sent when the claim fails")
	}
}

func TestStartShutdown(t *testing.T) {
	ob := &fakeOutbox{}
	es := &fakeSender{}
	r := newRelay(ob, es)

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(context.Background()); err == nil {
		t.Error("second Start must fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := r.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if !es.closed {
		t.Error("sender must be closed on shutdown")
	}
}
