package market

import (
	"sync"
	"time"

	"github.com/bingqian0328/Futures-Trading-Strategy/internal/domain"
)

// State is the shared price cell between the feed worker and the trading loop.
// The lock is held only for the instant of the copy, never across I/O, so a
// reader can never observe a bid and ask from two different messages.
type State struct {
	mu      sync.RWMutex
	quote   domain.Quote
	ready   bool
	updated time.Time
}

// NewState creates an empty state ("no quote yet").
func NewState() *State {
	return &State{}
}

// Update replaces the stored quote wholesale and stamps the update time.
func (s *State) Update(q domain.Quote) {
	s.mu.Lock()
	s.quote = q
	s.ready = true
	s.updated = time.Now()
	s.mu.Unlock()
}

// Snapshot returns the most recently completed quote and whether any quote
// has arrived yet.
func (s *State) Snapshot() (domain.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quote, s.ready
}

// Age reports how long ago the last quote arrived. Zero before the first one.
func (s *State) Age() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0
	}
	return time.Since(s.updated)
}
