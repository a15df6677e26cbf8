package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pkgdeck/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/metrics"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/pacman"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/terminal"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/engine/dispatcher"
	"go.trai.ch/pkgdeck/internal/engine/executor"
	"go.trai.ch/pkgdeck/internal/engine/workers"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			dispatcher.NodeID,
			workers.NodeID,
			executor.NodeID,
			watcher.NodeID,
			cache.NodeID,
			pacman.CommandsNodeID,
			terminal.NodeID,
			linear.NodeID,
			tui.NodeID,
			telemetry.NodeID,
			metrics.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*config.Config](ctx)
	if err != nil {
		return nil, err
	}

	d, err := graft.Dep[*dispatcher.Dispatcher](ctx)
	if err != nil {
		return nil, err
	}

	pool, err := graft.Dep[*workers.Pool](ctx)
	if err != nil {
		return nil, err
	}

	exec, err := graft.Dep[*executor.Executor](ctx)
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

	cmds, err := graft.Dep[*pacman.CommandBuilder](ctx)
	if err != nil {
		return nil, err
	}

	prompter, err := graft.Dep[ports.Prompter](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[*linear.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	launcher, err := graft.Dep[*tui.Launcher](ctx)
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

	return New(Deps{
		Engine:    d,
		Pool:      pool,
		Executor:  exec,
		Watcher:   w,
		Cache:     store,
		Commands:  cmds,
		Prompter:  prompter,
		Renderer:  renderer,
		Console: func(ctrl Controller) Console {
			return launcher.Launch(ctrl)
		},
		Tracer:    tracer,
		Metrics:   m,
		Logger:    log,
		Elevation: cfg.Elevation,
	}), nil
}
