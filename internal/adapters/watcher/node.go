package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/adapters/logger"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the database watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.DatabaseWatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.DatabaseWatcher, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(cfg.Watch.DatabasePath, cfg.Watch.Debounce, log), nil
		},
	})
}
