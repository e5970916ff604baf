package kafka

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu sync.Mutex

	queue     chan kafka.Message
	committed []int64
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{queue: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		r.queue <- m
	}

	return r
}

func (r *fakeReader) ReadEvent(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.queue:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitEvent(_ context.Context, event kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.committed = append(r.committed, event.Offset)

	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	return nil
}

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.committed...)
}

type fakeSubmissions struct {
	mu sync.Mutex

	failures map[string]error
	// flaky fails a submission this many times before it goes through
	flaky  map[string]int
	calls  map[string]int
	marked []dto.ProcessedEvent
}

func (f *fakeSubmissions) Ingest(context.Context, dto.IngestRequest) (dto.IngestResult, error) {
	return dto.IngestResult{}, nil
}

func (f *fakeSubmissions) Delete(context.Context, string) (dto.DeleteResult, error) {
	return dto.DeleteResult{}, nil
}

func (f *fakeSubmissions) ReconcileStale(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func (f *fakeSubmissions) Health(context.Context) error { return nil }

func (f *fakeSubmissions) Marked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.marked))
	for _, ev := range f.marked {
		ids = append(ids, ev.SubmissionID)
	}

	return ids
}

func (f *fakeSubmissions) MarkProcessed(_ context.Context, ev dto.ProcessedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures[ev.SubmissionID]; err != nil {
		return err
	}
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ev.SubmissionID]++
	if f.calls[ev.SubmissionID] <= f.flaky[ev.SubmissionID] {
		return errs.ErrStoreConnection
	}
	f.marked = append(f.marked, ev)

	return nil
}

func onPartition(m kafka.Message, partition int) kafka.Message {
	m.Partition = partition

	return m
}

func message(offset int64, eventType, value string) kafka.Message {
	m := kafka.Message{Offset: offset, Value: []byte(value)}
	if eventType != "" {
		m.Headers = []kafka.Header{{Key: headerEventType, Value: []byte(eventType)}}
	}

	return m
}

func TestHandle(t *testing.T) {
	sub := &fakeSubmissions{failures: map[string]error{
		"sub_missing": fmt.Errorf("find: %w", errs.ErrRecordNotFound),
		"sub_down":    fmt.Errorf("update: %w", errs.ErrStoreConnection),
	}}
	c := New(sub, newFakeReader(), logger.NewWithWriter("error", io.Discard), time.Second, time.Second, 1)

	tests := []struct {
		name     string
		msg      kafka.Message
		wantErr  bool
		wantSkip bool
	}{
		{"applied", message(1, entity.EventSubmissionProcessed, `{"submissionId":"sub_ok","images":[{"remoteId":"a","processedUrl":"u"}]}`), false, false},
		{"no header", message(2, "", `{"submissionId":"sub_ok"}`), false, false},
		{"other event type", message(3, entity.EventSubmissionCreated, `{}`), true, true},
		{"broken json", message(4, entity.EventSubmissionProcessed, `{`), true, true},
		{"unknown submission", message(5, "", `{"submissionId":"sub_missing"}`), true, true},
		{"store down", message(6, "", `{"submissionId":"sub_down"}`), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.handle(context.Background(), tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && skippable(err) != tt.wantSkip {
				t.Errorf("skippable(%v) = %v", err, !tt.wantSkip)
			}
		})
	}

	if len(sub.marked) != 2 || sub.marked[0].Images[0].ProcessedURL != "u" {
		t.Errorf("marked = %+v", sub.marked)
	}
}

func TestWorkerPool_CommitsSettledEventsOnly(t *testing.T) {
	sub := &fakeSubmissions{failures: map[string]error{
		"sub_down": errs.ErrStoreConnection,
	}}
	reader := newFakeReader(
		message(1, "", `{"submissionId":"sub_a"}`),
		onPartition(message(2, "", `{"submissionId":"sub_down"}`), 1),
		message(3, "", `not json`),
	)
	c := New(sub, reader, logger.NewWithWriter("error", io.Discard), time.Second, time.Second, 2)
	c.retryBackoff = time.Millisecond

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(reader.Committed()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	committed := map[int64]bool{}
	for _, off := range reader.Committed() {
		committed[off] = true
	}
	if !committed[1] || !committed[3] || committed[2] {
		t.Fatalf("committed offsets = %v, want 1 and 3 only", reader.Committed())
	}
	if !reader.closed {
		t.Error("reader must be closed on shutdown")
	}
}

func TestWorkerPool_RetriesTransientFailureBeforeMovingOn(t *testing.T) {
	sub := &fakeSubmissions{flaky: map[string]int{"sub_a": 2}}
	reader := newFakeReader(
		message(1, "", `{"submissionId":"sub_a"}`),
		message(2, "", `{"submissionId":"sub_b"}`),
	)
	c := New(sub, reader, logger.NewWithWriter("error", io.Discard), time.Second, time.Second, 1)
	c.retryBackoff = time.Millisecond

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(reader.Committed()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	got := reader.Committed()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("committed offsets = %v, want [1 2]", got)
	}
	if marked := sub.Marked(); len(marked) != 2 || marked[0] != "sub_a" || marked[1] != "sub_b" {
		t.Fatalf("marked = %v, want [sub_a sub_b]", marked)
	}
	if sub.calls["sub_a"] != 3 {
		t.Errorf("sub_a attempts = %d, want 3", sub.calls["sub_a"])
	}
}

func TestWorkerPool_ShutdownAbandonsRetry(t *testing.T) {
	sub := &fakeSubmissions{failures: map[string]error{
		"sub_down": errs.ErrStoreConnection,
	}}
	reader := newFakeReader(
		message(1, "", `{"submissionId":"sub_down"}`),
		message(2, "", `{"submissionId":"sub_b"}`),
	)
	c := New(sub, reader, logger.NewWithWriter("error", io.Discard), time.Second, time.Second, 1)
	c.retryBackoff = time.Millisecond

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	if got := reader.Committed(); len(got) != 0 {
		t.Fatalf("committed offsets = %v, want none past the failing event", got)
	}
	if marked := sub.Marked(); len(marked) != 0 {
		t.Fatalf("marked = %v, want nothing behind the failing event", marked)
	}
}
