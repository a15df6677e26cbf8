package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the process backend Graft node.
const NodeID graft.ID = "adapter.shell"

func init() {
	graft.Register(graft.Node[ports.ProcessBackend]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProcessBackend, error) {
			return NewBackend(), nil
		},
	})
}
