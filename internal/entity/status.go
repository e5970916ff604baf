package entity

// Status is the lifecycle state of an outbox event.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Processed  Status = "processed"
	Failed     Status = "failed"
)

// IntentStatus is the lifecycle state of an upload intent.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentCommitted IntentStatus = "committed"
	IntentAborted   IntentStatus = "aborted"
)
