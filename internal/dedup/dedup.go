// Package dedup suppresses repeated alerts for the same asset and signal
// inside a short window, so one provider message forwarded twice does not
// open two trades.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// Window is how long an asset+signal pair stays "seen".
	Window = 60 * time.Second

	// evictAfter is how long stale entries linger before the sweeper
	// drops them from the in-memory index.
	evictAfter = 5 * time.Minute

	sweepInterval = 60 * time.Second
)

// Suppressor reports whether an alert is a duplicate of one seen recently.
// A true result also records the sighting, so the first caller wins.
type Suppressor interface {
	IsDuplicate(ctx context.Context, asset string, signal string) bool
}

func key(asset, signal string) string {
	return fmt.Sprintf("%s:%s", strings.ToUpper(asset), strings.ToUpper(signal))
}
