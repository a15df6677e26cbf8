package ports

import "context"

// DatabaseWatcher reports changes to the local package database.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type DatabaseWatcher interface {
	// Run watches until ctx is done.
	Run(ctx context.Context) error

	// Changes delivers a new external state version after each debounced change.
	Changes() <-chan string

	// Version returns the current external state version.
	Version() string
}
