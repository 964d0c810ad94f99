package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
)

// Influencer is one tracked account owner with optional handles on each
// platform. Records are created once by the add-flow and never physically
// deleted; only the active flag and per-platform timestamps change.
type Influencer struct {
	ID          string
	Name        string
	Handles     map[socialblade.Platform]string
	LastUpdated map[socialblade.Platform]time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates an active influencer with a generated id. At least one handle
// is expected to be non-empty for the record to be useful.
func New(name string, handles map[socialblade.Platform]string) *Influencer {
	now := time.Now().UTC()

	return &Influencer{
		ID:          uuid.New().String(),
		Name:        name,
		Handles:     handles,
		LastUpdated: make(map[socialblade.Platform]time.Time),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Handle returns the influencer's handle on the platform, empty when unset.
func (i *Influencer) Handle(p socialblade.Platform) string {
	return i.Handles[p]
}

// LastUpdatedOn returns the platform's last successful fetch time, or nil
// when the platform has never been fetched.
func (i *Influencer) LastUpdatedOn(p socialblade.Platform) *time.Time {
	ts, ok := i.LastUpdated[p]
	if !ok {
		return nil
	}

	return &ts
}

// SetLastUpdated records a successful fetch for the platform.
func (i *Influencer) SetLastUpdated(p socialblade.Platform, ts time.Time) {
	if i.LastUpdated == nil {
		i.LastUpdated = make(map[socialblade.Platform]time.Time)
	}

	i.LastUpdated[p] = ts
	i.UpdatedAt = ts
}

// HasHandles reports whether any platform handle is set.
func (i *Influencer) HasHandles() bool {
	for _, p := range socialblade.Platforms() {
		if i.Handles[p] != "" {
			return true
		}
	}

	return false
}
