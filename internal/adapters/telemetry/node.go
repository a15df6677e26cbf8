package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the tracer Graft node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			if cfg.Telemetry.TraceFile == "" {
				return NewOTelTracer(InstrumentationName), nil
			}
			return NewFileTracer(InstrumentationName, cfg.Telemetry.TraceFile)
		},
	})
}
