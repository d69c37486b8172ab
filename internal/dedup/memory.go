package dedup

import (
	"context"
	"log"
	"sync"
	"time"
)

// MemorySuppressor keeps last-seen timestamps in process memory. It is the
// default when Redis is not configured; state does not survive a restart.
type MemorySuppressor struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemorySuppressor() *MemorySuppressor {
	return &MemorySuppressor{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// IsDuplicate reports whether the pair was seen inside the window. The
// window is fixed, measured from the first sighting: duplicates are not
// re-stamped, so a repeating signal becomes fresh again once the window
// from the original sighting elapses.
func (m *MemorySuppressor) IsDuplicate(_ context.Context, asset, signal string) bool {
	k := key(asset, signal)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.seen[k]; ok && now.Sub(last) < Window {
		return true
	}
	m.seen[k] = now
	return false
}

// StartSweep evicts entries older than the retention horizon once a minute
// until the context is cancelled.
func (m *MemorySuppressor) StartSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.evict(); n > 0 {
					log.Printf("dedup: evicted %d stale entries", n)
				}
			}
		}
	}()
}

func (m *MemorySuppressor) evict() int {
	cutoff := m.now().Add(-evictAfter)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for k, last := range m.seen {
		if last.Before(cutoff) {
			delete(m.seen, k)
			evicted++
		}
	}
	return evicted
}
