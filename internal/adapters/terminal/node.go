package terminal

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the prompter Graft node.
const NodeID graft.ID = "adapter.terminal"

func init() {
	graft.Register(graft.Node[ports.Prompter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Prompter, error) {
			return NewPrompter(os.Stdin, os.Stderr), nil
		},
	})
}
