package relay

import "time"

// Outcome records how a delivery attempt ended.
type Outcome string

const (
	// OutcomeDelivered means the events API accepted the event
	OutcomeDelivered Outcome = "delivered"

	// OutcomeFailed means the attempt failed: missing credential,
	// transport error, or vendor rejection
	OutcomeFailed Outcome = "failed"
)

// Delivery is the record of one event sent (or attempted) to PagerDuty.
type Delivery struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	DedupKey    string    `json:"dedup_key,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Severity    string    `json:"severity,omitempty"`
	Source      string    `json:"source,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Duration    float64   `json:"duration_seconds,omitempty"`
}
