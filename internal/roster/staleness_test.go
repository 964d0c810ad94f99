package roster_test

import (
	"testing"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/stretchr/testify/assert"
)

func TestDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	ts := func(d time.Duration) *time.Time {
		v := now.Add(-d)
		return &v
	}

	tests := []struct {
		name        string
		lastUpdated *time.Time
		want        bool
	}{
		{
			name:        "never fetched",
			lastUpdated: nil,
			want:        true,
		},
		{
			name:        "fetched 31 days ago",
			lastUpdated: ts(31 * 24 * time.Hour),
			want:        true,
		},
		{
			name:        "fetched exactly 30 days ago",
			lastUpdated: ts(30 * 24 * time.Hour),
			want:        true,
		},
		{
			name:        "fetched just under 30 days ago",
			lastUpdated: ts(30*24*time.Hour - time.Second),
			want:        false,
		},
		{
			name:        "fetched 5 days ago",
			lastUpdated: ts(5 * 24 * time.Hour),
			want:        false,
		},
		{
			name:        "fetched in the future",
			lastUpdated: ts(-time.Hour),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, roster.Due(tt.lastUpdated, now))
		})
	}
}
