package roster

import "time"

// StalenessThreshold is how long a platform's metrics stay fresh before a
// routine update refetches them.
const StalenessThreshold = 30 * 24 * time.Hour

// Due reports whether a refresh is due for a platform given its last
// successful fetch time. A platform is due when it has never been fetched
// or when at least the staleness threshold has elapsed; exactly at the
// threshold counts as due.
func Due(lastUpdated *time.Time, now time.Time) bool {
	if lastUpdated == nil {
		return true
	}

	return now.Sub(*lastUpdated) >= StalenessThreshold
}
