package socialblade

import "fmt"

// Platform identifies one of the supported social media platforms.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
)

// Platforms returns all supported platforms in a fixed order.
func Platforms() []Platform {
	return []Platform{
		PlatformTwitter,
		PlatformYouTube,
		PlatformInstagram,
		PlatformTikTok,
		PlatformFacebook,
	}
}

// Counter maps a warehouse column to the field name used by the provider.
// Most counters share both names; YouTube's view counter does not.
type Counter struct {
	// Column is the metric column in the warehouse and CSV files.
	Column string
	// Field is the key in the provider's response payload.
	Field string
}

// adapter holds everything platform-specific so orchestration code never
// branches on the platform.
type adapter struct {
	counters []Counter
	table    string
}

var adapters = map[Platform]adapter{
	PlatformTwitter: {
		counters: []Counter{
			{Column: "followers", Field: "followers"},
			{Column: "following", Field: "following"},
			{Column: "tweets", Field: "tweets"},
		},
		table: "twitter_metrics",
	},
	PlatformYouTube: {
		counters: []Counter{
			{Column: "subscribers", Field: "subscribers"},
			{Column: "total_views", Field: "views"},
			{Column: "videos", Field: "videos"},
		},
		table: "youtube_metrics",
	},
	PlatformInstagram: {
		counters: []Counter{
			{Column: "followers", Field: "followers"},
			{Column: "following", Field: "following"},
			{Column: "posts", Field: "posts"},
		},
		table: "instagram_metrics",
	},
	PlatformTikTok: {
		counters: []Counter{
			{Column: "followers", Field: "followers"},
			{Column: "following", Field: "following"},
			{Column: "likes", Field: "likes"},
			{Column: "videos", Field: "videos"},
		},
		table: "tiktok_metrics",
	},
	PlatformFacebook: {
		counters: []Counter{
			{Column: "followers", Field: "followers"},
			{Column: "likes", Field: "likes"},
		},
		table: "facebook_metrics",
	},
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	_, ok := adapters[p]
	return ok
}

// Counters returns the platform's metric counters in column order.
func (p Platform) Counters() []Counter {
	return adapters[p].counters
}

// MetricsTable returns the warehouse table holding the platform's metric rows.
func (p Platform) MetricsTable() string {
	return adapters[p].table
}

// MetricsFile returns the CSV file name used for the platform in development mode.
func (p Platform) MetricsFile() string {
	return adapters[p].table + ".csv"
}

// HandleColumn returns the influencer column holding the platform handle.
func (p Platform) HandleColumn() string {
	return string(p) + "_handle"
}

// LastUpdatedColumn returns the influencer column holding the platform's
// last successful fetch timestamp.
func (p Platform) LastUpdatedColumn() string {
	return fmt.Sprintf("last_%s_updated", p)
}

// statisticsPath returns the provider endpoint path for the platform.
func (p Platform) statisticsPath() string {
	return fmt.Sprintf("/b/%s/statistics", p)
}
