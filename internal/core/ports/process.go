package ports

import (
	"context"
	"io"
)

// Process is a running child attached to a terminal.
// Reads return the merged output stream; writes go to the child's input.
type Process interface {
	io.Reader
	io.Writer

	// Terminate asks the child to exit.
	Terminate() error

	// Wait blocks until the child exits and returns its exit code.
	Wait() (int, error)

	// Close releases the terminal.
	Close() error
}

// ProcessBackend spawns child processes.
//
//go:generate mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type ProcessBackend interface {
	// Start spawns argv with the given extra environment.
	Start(ctx context.Context, argv []string, env []string) (Process, error)
}
