package entity

type EnrichmentStatus string

const (
	EnrichmentEnriched EnrichmentStatus = "enriched"
	EnrichmentFailed   EnrichmentStatus = "failed"
)

// Enrichment is the live media-host view attached to a stored submission.
type Enrichment struct {
	Status        EnrichmentStatus `json:"status"`
	Reason        string           `json:"reason,omitempty"`
	ResourceCount int              `json:"resourceCount"`
	Resources     []RemoteResource `json:"resources"`
}

type EnrichedSubmission struct {
	Submission
	CloudinaryInfo Enrichment `json:"cloudinaryInfo"`
}
