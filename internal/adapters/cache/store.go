// Package cache implements the signature-keyed store for computed plan fragments.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Store implements ports.CacheStore with generation and age filtering at read time.
// Hidden entries stay in memory until Prune.
type Store struct {
	mu      sync.RWMutex
	entries map[domain.Signature]domain.CacheEntry

	generation atomic.Uint64
	floor      atomic.Uint64

	path   string
	maxAge time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxAge hides entries computed more than d ago. Zero keeps entries forever.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

// WithClock replaces the clock used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. A non-empty path enables Load and Persist.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		entries: make(map[domain.Signature]domain.CacheEntry),
		path:    path,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.generation.Store(1)
	return s
}

// Get returns the entry for sig if it is neither below the generation floor nor expired.
func (s *Store) Get(sig domain.Signature) (domain.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sig]
	if !ok || s.hidden(entry, s.floor.Load(), s.now()) {
		return domain.CacheEntry{}, false
	}
	return entry, true
}

func (s *Store) hidden(entry domain.CacheEntry, floor uint64, now time.Time) bool {
	return entry.Generation < floor || s.expired(entry.ComputedAt, now)
}

func (s *Store) expired(computedAt, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(computedAt) > s.maxAge
}

// Put stores payload under sig stamped with the current generation.
func (s *Store) Put(sig domain.Signature, payload domain.Fragment) domain.CacheEntry {
	entry := domain.CacheEntry{
		Signature:  sig,
		Payload:    payload,
		ComputedAt: s.now(),
		Generation: s.generation.Load(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sig] = entry
	return entry
}

// Generation returns the generation new entries are stamped with.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Advance starts a new generation and hides everything written before it.
func (s *Store) Advance() uint64 {
	next := s.generation.Add(1)
	s.InvalidateBefore(next)
	return next
}

// InvalidateBefore hides entries with a generation lower than n. The floor never moves back.
func (s *Store) InvalidateBefore(n uint64) {
	for {
		cur := s.floor.Load()
		if n <= cur || s.floor.CompareAndSwap(cur, n) {
			return
		}
	}
}

// Prune deletes hidden entries and returns how many were removed.
func (s *Store) Prune() int {
	floor := s.floor.Load()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for sig, entry := range s.entries {
		if s.hidden(entry, floor, now) {
			delete(s.entries, sig)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries including hidden ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
