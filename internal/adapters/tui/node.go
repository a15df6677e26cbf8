package tui

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the interactive view Graft node.
const NodeID graft.ID = "adapter.tui"

func init() {
	graft.Register(graft.Node[*Launcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Launcher, error) {
			return NewLauncher(nil, nil), nil
		},
	})
}
