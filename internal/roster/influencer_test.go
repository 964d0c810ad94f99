package roster_test

import (
	"testing"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInfluencer(t *testing.T) {
	t.Parallel()

	inf := roster.New("Test Creator", map[socialblade.Platform]string{
		socialblade.PlatformTwitter: "testcreator",
	})

	assert.NotEmpty(t, inf.ID)
	assert.Equal(t, "Test Creator", inf.Name)
	assert.True(t, inf.Active)
	assert.True(t, inf.HasHandles())
	assert.Equal(t, "testcreator", inf.Handle(socialblade.PlatformTwitter))
	assert.Empty(t, inf.Handle(socialblade.PlatformYouTube))
	assert.Nil(t, inf.LastUpdatedOn(socialblade.PlatformTwitter))
	assert.False(t, inf.CreatedAt.IsZero())
}

func TestInfluencerSetLastUpdated(t *testing.T) {
	t.Parallel()

	inf := roster.New("Test Creator", map[socialblade.Platform]string{
		socialblade.PlatformTwitter: "testcreator",
		socialblade.PlatformTikTok:  "testcreator",
	})

	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	inf.SetLastUpdated(socialblade.PlatformTwitter, ts)

	got := inf.LastUpdatedOn(socialblade.PlatformTwitter)
	require.NotNil(t, got)
	assert.Equal(t, ts, *got)
	assert.Equal(t, ts, inf.UpdatedAt)

	// Other platforms stay untouched
	assert.Nil(t, inf.LastUpdatedOn(socialblade.PlatformTikTok))
}

func TestHasHandlesEmpty(t *testing.T) {
	t.Parallel()

	inf := roster.New("No Handles", map[socialblade.Platform]string{})
	assert.False(t, inf.HasHandles())
}
