package dispatcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/cache"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pkgdeck/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pkgdeck/internal/adapters/metrics"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pkgdeck/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pkgdeck/internal/adapters/watcher"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/engine/executor"
	"go.trai.ch/pkgdeck/internal/engine/preflight"
	"go.trai.ch/pkgdeck/internal/engine/workers"
)

// NodeID is the unique identifier for the dispatcher Graft node.
const NodeID graft.ID = "engine.dispatcher"

func init() {
	graft.Register(graft.Node[*Dispatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			workers.NodeID,
			executor.NodeID,
			preflight.NodeID,
			watcher.NodeID,
			cache.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Dispatcher, error) {
			pool, err := graft.Dep[*workers.Pool](ctx)
			if err != nil {
				return nil, err
			}

			exec, err := graft.Dep[*executor.Executor](ctx)
			if err != nil {
				return nil, err
			}

			rules, err := graft.Dep[preflight.Rules](ctx)
			if err != nil {
				return nil, err
			}

			w, err := graft.Dep[ports.DatabaseWatcher](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(pool, exec, w, store, tracer, m, log, rules), nil
		},
	})
}
