// Package ratelimit bounds how fast a single client can hit the validation
// endpoints. The wizard fires a request per field commit, so an abusive
// client could otherwise turn email resolution into an account oracle.
package ratelimit

import (
	"sync"
	"time"
)

// Result describes one admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// SlidingWindow admits at most limit requests per key within the window.
// A sliding window avoids the burst-at-boundary artifact of fixed buckets.
type SlidingWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	buckets   map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records one request for the key and reports whether it is admitted.
func (s *SlidingWindow) Allow(key string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	// Keys whose whole window expired would otherwise accumulate one entry
	// per client IP for the life of the process.
	if now.Sub(s.lastSweep) >= s.window {
		for k, ts := range s.buckets {
			if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	timestamps := s.buckets[key]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.buckets[key] = kept
		return Result{
			Allowed: false,
			Limit:   s.limit,
			ResetAt: kept[0].Add(s.window),
		}
	}

	kept = append(kept, now)
	s.buckets[key] = kept
	return Result{
		Allowed:   true,
		Remaining: s.limit - len(kept),
		Limit:     s.limit,
		ResetAt:   kept[0].Add(s.window),
	}
}

// Reset clears the window for a key.
func (s *SlidingWindow) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
}
