package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/adapters/logger"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the cache store Graft node.
const NodeID graft.ID = "adapter.cache"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			path := ""
			if cfg.Cache.Persist {
				path = cfg.Cache.Path
			}
			store := NewStore(path, WithMaxAge(cfg.Cache.MaxAge))
			if _, err := store.Load(); err != nil {
				log.Warn(zerr.Wrap(err, "starting with an empty cache").Error())
			}
			return store, nil
		},
	})
}
