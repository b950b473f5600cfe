package cache

import (
	"context"
	"errors"
	"time"
)

// SlidingExpiration is how long a cached entry survives without being read.
const SlidingExpiration = 24 * time.Hour

var ErrNotFound = errors.New("cache entry not found")

// EntryOptions controls when an entry expires. A zero duration disables that
// bound. When both are set the entry expires at whichever comes first.
type EntryOptions struct {
	// Maximum lifetime measured from the time the entry was written.
	AbsoluteExpiration time.Duration
	// Lifetime measured from the last read, capped by AbsoluteExpiration.
	SlidingExpiration time.Duration
}

// Store is a string keyed store of opaque string values. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the value for key or ErrNotFound. A hit restarts the
	// sliding expiration window.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, opts EntryOptions) error
	Remove(ctx context.Context, key string) error
}

// ttl returns how long an entry may live from now, given the absolute deadline
// (zero for none) and the sliding window (zero for none). A result <= 0 means
// the entry has expired. ok is false when neither bound applies.
func ttl(now, absolute time.Time, sliding time.Duration) (d time.Duration, ok bool) {
	switch {
	case absolute.IsZero() && sliding <= 0:
		return 0, false
	case absolute.IsZero():
		return sliding, true
	}

	remaining := absolute.Sub(now)
	if sliding > 0 && sliding < remaining {
		return sliding, true
	}
	return remaining, true
}

func absoluteDeadline(now time.Time, opts EntryOptions) time.Time {
	if opts.AbsoluteExpiration <= 0 {
		return time.Time{}
	}
	return now.Add(opts.AbsoluteExpiration)
}
