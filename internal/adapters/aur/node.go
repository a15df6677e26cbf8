package aur

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the AUR Graft node.
const NodeID graft.ID = "adapter.aur"

func init() {
	graft.Register(graft.Node[ports.ThirdPartyIndex]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ThirdPartyIndex, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			client, err := NewClient(cfg.AUR.BaseURL, cfg.Workers.NetworkTimeout, cfg.AUR.RequestsPerSecond)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	})
}
