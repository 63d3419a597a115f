package httpapi

import (
	"sync"
	"time"
)

// seenEvents is a bounded, time-evicted set of Slack event ids.
// Slack redelivers events when an acknowledgement is slow, so the
// handler must treat event ids as at-least-once. The set is owned by
// the server, never shared process-wide, and cannot grow without bound.
type seenEvents struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]time.Time
	now     func() time.Time
}

func newSeenEvents(ttl time.Duration, max int) *seenEvents {
	return &seenEvents{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Seen records id and reports whether it was already present.
func (s *seenEvents) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, at := range s.entries {
		if now.Sub(at) > s.ttl {
			delete(s.entries, key)
		}
	}

	if _, ok := s.entries[id]; ok {
		return true
	}

	if len(s.entries) >= s.max {
		s.evictOldest()
	}
	s.entries[id] = now
	return false
}

// evictOldest drops the entry with the earliest timestamp.
// Caller holds the lock.
func (s *seenEvents) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, at := range s.entries {
		if first || at.Before(oldestAt) {
			oldestKey, oldestAt = key, at
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}

// Len returns the current number of tracked ids. Test helper.
func (s *seenEvents) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
