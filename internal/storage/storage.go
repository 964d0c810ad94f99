package storage

import (
	"context"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
)

// Sink persists influencer records and metric rows. Two implementations
// exist, selected once at process start: the BigQuery warehouse and local
// CSV files for development. Writes are simple appends; a failed write is
// surfaced to the caller and never retried.
type Sink interface {
	// ActiveInfluencers returns all influencers flagged active.
	ActiveInfluencers(ctx context.Context) ([]*roster.Influencer, error)
	// SaveInfluencer appends one influencer record.
	SaveInfluencer(ctx context.Context, inf *roster.Influencer) error
	// SaveMetrics appends a batch of metric rows for one platform.
	SaveMetrics(ctx context.Context, p socialblade.Platform, samples []*socialblade.Sample) error
	// UpdateHandles replaces the influencer's handles on the given
	// platforms. Platforms absent from the map keep their current handle.
	UpdateHandles(ctx context.Context, influencerID string, handles map[socialblade.Platform]string) error
	// SetLastUpdated records a platform's last successful fetch on the
	// influencer record.
	SetLastUpdated(ctx context.Context, influencerID string, p socialblade.Platform, ts time.Time) error
	// Close releases any underlying resources.
	Close() error
}
