package socialblade

import (
	"time"

	"github.com/google/uuid"
)

// Sample is one dated metric snapshot for an influencer on one platform.
// Rows are append-only: one row per successful fetch, never updated.
type Sample struct {
	// ID is the generated row identifier.
	ID string
	// InfluencerID is the owning influencer, stamped by the orchestrator.
	InfluencerID string
	// Platform the sample belongs to.
	Platform Platform
	// Counters holds the platform's numeric metrics keyed by column name.
	// Counters missing from the provider response default to zero.
	Counters map[string]int64
	// EngagementRate as reported by the provider, 0.0 when absent.
	EngagementRate float64
	// Timestamp is when the provider sampled the metrics.
	Timestamp time.Time
	// CreatedAt is when this row was collected.
	CreatedAt time.Time
}

// newSample builds an empty sample for a platform with generated id and
// zeroed counters.
func newSample(p Platform, now time.Time) *Sample {
	counters := make(map[string]int64, len(p.Counters()))
	for _, c := range p.Counters() {
		counters[c.Column] = 0
	}

	return &Sample{
		ID:        uuid.New().String(),
		Platform:  p,
		Counters:  counters,
		Timestamp: now,
		CreatedAt: now,
	}
}
