package executor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/config"
	"go.trai.ch/pkgdeck/internal/adapters/logger"
	"go.trai.ch/pkgdeck/internal/adapters/metrics"
	"go.trai.ch/pkgdeck/internal/adapters/shell"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// NodeID is the unique identifier for the executor Graft node.
const NodeID graft.ID = "engine.executor"

// ChildEnv is added to every spawned command so prompts and messages are not localised.
var ChildEnv = []string{"LC_ALL=C"}

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, shell.NodeID, metrics.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Executor, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			backend, err := graft.Dep[ports.ProcessBackend](ctx)
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

			cred := cfg.Credential
			patterns, err := CompilePatterns(cred.Prompts, cred.Rejections, cred.Lockouts)
			if err != nil {
				return nil, err
			}
			return New(backend, m, log, Options{
				Elevation:  cfg.Elevation,
				Patterns:   patterns,
				RetryLimit: cred.RetryLimit,
				Env:        ChildEnv,
			}), nil
		},
	})
}
