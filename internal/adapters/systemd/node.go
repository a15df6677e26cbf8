package systemd

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the service manager Graft node.
const NodeID graft.ID = "adapter.systemd"

func init() {
	graft.Register(graft.Node[ports.ServiceManager]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ServiceManager, error) {
			return NewManager(), nil
		},
	})
}
