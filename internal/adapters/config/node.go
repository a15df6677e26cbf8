package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

// NodeID is the unique identifier for the configuration Graft node.
const NodeID graft.ID = "adapter.config"

// PathEnv overrides the configuration file location.
const PathEnv = "PKGDECK_CONFIG"

func init() {
	graft.Register(graft.Node[*Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Config, error) {
			path := os.Getenv(PathEnv)
			if path == "" {
				path = domain.DefaultConfigPath()
			}
			return NewLoader().Load(path)
		},
	})
}
