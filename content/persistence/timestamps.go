package persistence

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 text with nanoseconds so that a round trip through
// the cache never makes a source copy look newer than its cached copy.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
