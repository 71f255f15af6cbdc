package common

import "time"

// FreshnessSnapshot is how long a stored series snapshot is considered current.
// Older snapshots are still served as a fallback but logged as stale.
const FreshnessSnapshot = 24 * time.Hour

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	return IsFreshAt(updated, time.Now(), ttl)
}

// IsFreshAt is IsFresh against an explicit current time.
func IsFreshAt(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
