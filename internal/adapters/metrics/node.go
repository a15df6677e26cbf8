package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the metrics Graft node.
const NodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[ports.Metrics]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Metrics, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewPrometheus(cfg.Metrics.Textfile), nil
		},
	})
}
