// Package tracking smooths hand presence into a stable link flag.
package tracking

import (
	"sync"
	"time"
)

// DefaultGrace is how long a lost hand keeps the link stable.
const DefaultGrace = 500 * time.Millisecond

// Stabilizer turns per-cycle visibility into an asymmetric flag: it becomes
// stable on the first sighting and only drops after the grace window has
// elapsed without one.
type Stabilizer struct {
	mu       sync.Mutex
	grace    time.Duration
	lastSeen time.Time
	seen     bool
}

// NewStabilizer creates a stabilizer; grace <= 0 uses DefaultGrace.
func NewStabilizer(grace time.Duration) *Stabilizer {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Stabilizer{grace: grace}
}

// Observe records one detection cycle and returns the resulting flag.
func (s *Stabilizer) Observe(visible bool, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible {
		s.lastSeen = now
		s.seen = true
	}
	return s.stableLocked(now)
}

// Stable reports the flag at now without recording a cycle.
func (s *Stabilizer) Stable(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stableLocked(now)
}

// Reset forgets the last sighting.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = false
	s.lastSeen = time.Time{}
}

// Grace returns the configured grace window.
func (s *Stabilizer) Grace() time.Duration {
	return s.grace
}

func (s *Stabilizer) stableLocked(now time.Time) bool {
	return s.seen && now.Sub(s.lastSeen) < s.grace
}
