package pacman

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

const (
	// LocalNodeID is the unique identifier for the local database Graft node.
	LocalNodeID graft.ID = "adapter.pacman.local"
	// SyncNodeID is the unique identifier for the sync repository Graft node.
	SyncNodeID graft.ID = "adapter.pacman.sync"
	// CommandsNodeID is the unique identifier for the command builder Graft node.
	CommandsNodeID graft.ID = "adapter.pacman.commands"
)

func init() {
	graft.Register(graft.Node[ports.LocalDatabase]{
		ID:        LocalNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LocalDatabase, error) {
			return NewClient(), nil
		},
	})

	graft.Register(graft.Node[ports.Repository]{
		ID:        SyncNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Repository, error) {
			return NewClient(), nil
		},
	})

	graft.Register(graft.Node[*CommandBuilder]{
		ID:        CommandsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*CommandBuilder, error) {
			return NewCommandBuilder(), nil
		},
	})
}
