package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/segmentio/kafka-go"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	EventsReader interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}

	// Compressor shrinks an encoded image. It never fails; on any problem it
	// hands back the input.
	Compressor interface {
		Compress(data []byte) []byte
	}
)
