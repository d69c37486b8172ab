package trade

import (
	"fmt"
	"strings"
	"sync"

	"signal-desk/internal/domain"
)

// Tracker is the admission gate over currently-open trades. It enforces the
// global cap and one open trade per symbol. The journal is the source of
// truth; Load repopulates the tracker from it after a restart.
type Tracker struct {
	mu      sync.Mutex
	open    map[string]string // symbol -> trade id
	maxOpen int
}

func NewTracker(maxOpen int) *Tracker {
	return &Tracker{
		open:    make(map[string]string),
		maxOpen: maxOpen,
	}
}

// CanOpen reports whether a new trade on symbol would be admitted, with a
// human-readable reason when not.
func (tr *Tracker) CanOpen(symbol string) (bool, string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if len(tr.open) >= tr.maxOpen {
		return false, fmt.Sprintf("max open trades reached (%d)", tr.maxOpen)
	}
	if _, exists := tr.open[strings.ToUpper(symbol)]; exists {
		return false, fmt.Sprintf("trade already open for %s", strings.ToUpper(symbol))
	}
	return true, ""
}

func (tr *Tracker) Track(t domain.Trade) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.open[strings.ToUpper(t.Symbol)] = t.ID
}

func (tr *Tracker) Release(symbol string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	delete(tr.open, strings.ToUpper(symbol))
}

// Load rebuilds the open set from journal state, dropping anything tracked
// that the journal no longer considers open.
func (tr *Tracker) Load(trades []domain.Trade) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.open = make(map[string]string)
	for _, t := range trades {
		if t.Status == domain.StatusOpen {
			tr.open[strings.ToUpper(t.Symbol)] = t.ID
		}
	}
}

// OpenCount returns the number of tracked open trades.
func (tr *Tracker) OpenCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.open)
}
