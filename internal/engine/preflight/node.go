package preflight

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
)

// NodeID is the unique identifier for the risk rules Graft node.
const NodeID graft.ID = "engine.preflight"

func init() {
	graft.Register(graft.Node[Rules]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (Rules, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return Rules{}, err
			}
			return Rules{
				Thresholds:   Thresholds{Medium: cfg.Risk.Medium, High: cfg.Risk.High},
				CorePackages: cfg.Risk.CorePackages,
			}, nil
		},
	})
}
