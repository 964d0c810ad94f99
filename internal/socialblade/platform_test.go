package socialblade_test

import (
	"testing"

	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatforms(t *testing.T) {
	t.Parallel()

	platforms := socialblade.Platforms()
	require.Len(t, platforms, 5)

	for _, p := range platforms {
		assert.True(t, p.Valid(), "platform %s should be valid", p)
		assert.NotEmpty(t, p.Counters(), "platform %s should have counters", p)
	}

	assert.False(t, socialblade.Platform("myspace").Valid())
}

func TestPlatformCounters(t *testing.T) {
	t.Parallel()

	columns := func(p socialblade.Platform) []string {
		var cols []string
		for _, c := range p.Counters() {
			cols = append(cols, c.Column)
		}

		return cols
	}

	assert.Equal(t, []string{"followers", "following", "tweets"},
		columns(socialblade.PlatformTwitter))
	assert.Equal(t, []string{"subscribers", "total_views", "videos"},
		columns(socialblade.PlatformYouTube))
	assert.Equal(t, []string{"followers", "following", "posts"},
		columns(socialblade.PlatformInstagram))
	assert.Equal(t, []string{"followers", "following", "likes", "videos"},
		columns(socialblade.PlatformTikTok))
	assert.Equal(t, []string{"followers", "likes"},
		columns(socialblade.PlatformFacebook))
}

func TestPlatformColumns(t *testing.T) {
	t.Parallel()

	p := socialblade.PlatformInstagram

	assert.Equal(t, "instagram_handle", p.HandleColumn())
	assert.Equal(t, "last_instagram_updated", p.LastUpdatedColumn())
	assert.Equal(t, "instagram_metrics", p.MetricsTable())
	assert.Equal(t, "instagram_metrics.csv", p.MetricsFile())
}

func TestYouTubeViewsFieldMapping(t *testing.T) {
	t.Parallel()

	// The provider reports "views" but the warehouse column is total_views
	for _, c := range socialblade.PlatformYouTube.Counters() {
		if c.Column == "total_views" {
			assert.Equal(t, "views", c.Field)
			return
		}
	}

	t.Fatal("youtube adapter is missing the total_views counter")
}
