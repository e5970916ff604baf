package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSubmissionCreated   = "submission.created"
	EventSubmissionProcessed = "submission.processed"
)

type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID string     `json:"aggregate_id"` // submission id
	EventType   string     `json:"event_type"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}
