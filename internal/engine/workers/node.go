package workers

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/aur"
	"go.trai.ch/pkgdeck/internal/adapters/cache"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/adapters/metrics"
	"go.trai.ch/pkgdeck/internal/adapters/pacman"
	"go.trai.ch/pkgdeck/internal/adapters/systemd"
	"go.trai.ch/pkgdeck/internal/adapters/telemetry"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the worker pool Graft node.
const NodeID graft.ID = "engine.workers"

func init() {
	graft.Register(graft.Node[*Pool]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cache.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
			pacman.LocalNodeID,
			pacman.SyncNodeID,
			aur.NodeID,
			systemd.NodeID,
		},
		Run: func(ctx context.Context) (*Pool, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
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
			local, err := graft.Dep[ports.LocalDatabase](ctx)
			if err != nil {
				return nil, err
			}
			repo, err := graft.Dep[ports.Repository](ctx)
			if err != nil {
				return nil, err
			}
			third, err := graft.Dep[ports.ThirdPartyIndex](ctx)
			if err != nil {
				return nil, err
			}
			units, err := graft.Dep[ports.ServiceManager](ctx)
			if err != nil {
				return nil, err
			}

			timeout := cfg.Workers.Timeout
			queue := cfg.Workers.QueueSize
			return NewPool(
				NewWorker(NewDependencies(local, repo, third), store, tracer, m, timeout, queue),
				NewWorker(NewFiles(local, repo), store, tracer, m, timeout, queue),
				NewWorker(NewServices(local, repo, units), store, tracer, m, timeout, queue),
				NewWorker(NewSandbox(local, third), store, tracer, m, timeout, queue),
				NewWorker(NewMetadata(repo, third), store, tracer, m, timeout, queue),
			), nil
		},
	})
}
