package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/infrastructure"
	kafkapc "github.com/andreyxaxa/Photo-Intake/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

const (
	headerEventType = "event_type"

	_defaultRetryBackoff = 200 * time.Millisecond
	_maxRetryBackoff     = 5 * time.Second
)

// KafkaController applies processing results published by the external
// processing step to stored submissions.
type KafkaController struct {
	sub    usecase.SubmissionUseCase
	er     infrastructure.EventsReader
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	retryBackoff   time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	sub usecase.SubmissionUseCase,
	er infrastructure.EventsReader,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	if workers <= 0 {
		workers = 1
	}

	return &KafkaController{
		sub:            sub,
		er:             er,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryBackoff:   _defaultRetryBackoff,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// one queue per worker, a partition always lands on the same one
	tasks := make([]chan kafka.Message, c.workers)
	for i := range tasks {
		tasks[i] = make(chan kafka.Message, 2)

		c.wg.Add(1)
		go c.worker(tasks[i])
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			for _, q := range tasks {
				close(q)
			}
		}()

		for {
			// 1. read
			event, err := c.er.ReadEvent(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Error(err, "KafkaController - Start - c.er.ReadEvent")

				continue
			}

			// 2. hand over to the partition's worker
			select {
			case tasks[event.Partition%c.workers] <- event:
			case <-c.ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (c *KafkaController) handle(ctx context.Context, event kafka.Message) error {
	if t := kafkapc.Header(event, headerEventType); t != "" && t != entity.EventSubmissionProcessed {
		return fmt.Errorf("KafkaController - handle - %q: %w", t, errs.ErrUnknownEventType)
	}

	var payload dto.ProcessedEvent
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		return fmt.Errorf("KafkaController - handle - json.Unmarshal: %w: %w", errs.ErrInvalidEvent, err)
	}

	err = c.sub.MarkProcessed(ctx, payload)
	if err != nil {
		return fmt.Errorf("KafkaController - handle - c.sub.MarkProcessed: %w", err)
	}

	return nil
}

// skippable errors can never succeed on redelivery, so the offset moves past them.
func skippable(err error) bool {
	return errors.Is(err, errs.ErrInvalidEvent) ||
		errors.Is(err, errs.ErrUnknownEventType) ||
		errors.Is(err, errs.ErrRecordNotFound)
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		if c.ctx.Err() != nil {
			// stopping: leave the rest for redelivery
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			if !c.settle(event) {
				return
			}

			// commit only once the event is settled
			commitCtx, commitCancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.commitTimeout)
			err := c.er.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.er.CommitEvent")
			}
		}()
	}
}

// settle retries transient failures in place so no later offset of the
// partition is committed past the event. False means the controller is
// stopping and the event stays uncommitted.
func (c *KafkaController) settle(event kafka.Message) bool {
	backoff := c.retryBackoff

	for {
		processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
		err := c.handle(processCtx, event)
		processCancel()

		switch {
		case err == nil:
			return true
		case skippable(err):
			c.logger.Warn("KafkaController - worker - skipping offset %d: %v", event.Offset, err)

			return true
		}

		c.logger.Error(err, "KafkaController - worker - c.handle")

		select {
		case <-time.After(backoff):
		case <-c.ctx.Done():
			return false
		}

		backoff = min(backoff*2, _maxRetryBackoff)
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.er.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
