package security

import (
	"strings"
	"sync"
	"time"
)

// Rate limiter memory management.
const (
	// CleanupInterval is the minimum spacing between stale-entry sweeps.
	CleanupInterval = 300 * time.Second

	// StaleThreshold is how long a bucket may sit untouched before a sweep
	// removes it.
	StaleThreshold = 3600 * time.Second
)

// Limiter is a token-bucket rate limiter keyed by (identifier, operation).
// Buckets refill continuously at their configured rate and are swept lazily:
// every Check call may trigger an inline cleanup of entries that have not
// been refilled within StaleThreshold, at most once per CleanupInterval.
//
// A single mutex serializes all bookkeeping. The reference design assumed one
// UI thread; here the gateway dispatches from per-connection goroutines, so
// the check-then-update sequence on a bucket must be atomic.
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	callCounts  map[string]int
	lastCleanup time.Time
	now         func() time.Time
}

// bucket holds the admission state for one (identifier, operation) key.
// Invariant: 0 <= tokens <= capacity after every Check.
type bucket struct {
	tokens     float64
	capacity   float64
	lastRefill time.Time
}

// NewLimiter creates an empty rate limiter.
func NewLimiter() *Limiter {
	now := time.Now
	return &Limiter{
		buckets:     make(map[string]*bucket),
		callCounts:  make(map[string]int),
		lastCleanup: now(),
		now:         now,
	}
}

// Check reports whether one more call for the (identifier, operation) pair is
// within maxPerSecond. The first call for a fresh key is always admitted and
// does not consume a token: the bucket is created full, so a template gets
// maxPerSecond+1 immediate calls before the first rejection. Rejected calls
// leave the bucket untouched; they neither reset the refill clock nor count
// toward the call counter.
func (l *Limiter) Check(identifier, operation string, maxPerSecond float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if now.Sub(l.lastCleanup) > CleanupInterval {
		l.sweepStale(now)
		l.lastCleanup = now
	}

	key := identifier + ":" + operation

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{
			tokens:     maxPerSecond,
			capacity:   maxPerSecond,
			lastRefill: now,
		}
		l.callCounts[key] = 1
		return true
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.capacity)

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		b.lastRefill = now
		l.callCounts[key]++
		return true
	}

	return false
}

// CallCount returns the total number of admitted calls recorded for the
// (identifier, operation) pair, or 0 for an unknown key.
func (l *Limiter) CallCount(identifier, operation string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callCounts[identifier+":"+operation]
}

// Reset clears all buckets and counters whose key starts with the given
// identifier, or everything when identifier is empty.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if identifier == "" {
		l.buckets = make(map[string]*bucket)
		l.callCounts = make(map[string]int)
		return
	}

	prefix := identifier + ":"
	for key := range l.buckets {
		if strings.HasPrefix(key, prefix) {
			delete(l.buckets, key)
			delete(l.callCounts, key)
		}
	}
}

// sweepStale removes buckets not refilled within StaleThreshold, together
// with their call counters. O(live keys), runs inline under the lock.
func (l *Limiter) sweepStale(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > StaleThreshold {
			delete(l.buckets, key)
			delete(l.callCounts, key)
		}
	}
}
