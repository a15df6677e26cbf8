package ports

import "go.trai.ch/pkgdeck/internal/core/domain"

// CacheStore maps signatures to computed plan fragments.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type CacheStore interface {
	// Get returns the entry for sig unless it is missing or older than the generation floor.
	Get(sig domain.Signature) (domain.CacheEntry, bool)

	// Put stores payload under sig, stamped with the current generation.
	Put(sig domain.Signature, payload domain.Fragment) domain.CacheEntry

	// Generation returns the generation new entries are stamped with.
	Generation() uint64

	// Advance starts a new generation and hides every entry written before it.
	Advance() uint64

	// InvalidateBefore hides every entry with a generation lower than n.
	InvalidateBefore(n uint64)

	// Persist writes visible entries to the backing file, if any.
	Persist() error

	// Clear drops every entry and the backing file.
	Clear() error
}
