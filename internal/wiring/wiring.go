// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pkgdeck/internal/adapters/aur"
	_ "go.trai.ch/pkgdeck/internal/adapters/cache"
	_ "go.trai.ch/pkgdeck/internal/adapters/config"
	_ "go.trai.ch/pkgdeck/internal/adapters/linear"
	_ "go.trai.ch/pkgdeck/internal/adapters/logger"
	_ "go.trai.ch/pkgdeck/internal/adapters/metrics"
	_ "go.trai.ch/pkgdeck/internal/adapters/pacman"
	_ "go.trai.ch/pkgdeck/internal/adapters/shell"
	_ "go.trai.ch/pkgdeck/internal/adapters/systemd"
	_ "go.trai.ch/pkgdeck/internal/adapters/telemetry"
	_ "go.trai.ch/pkgdeck/internal/adapters/terminal"
	_ "go.trai.ch/pkgdeck/internal/adapters/tui"
	_ "go.trai.ch/pkgdeck/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/pkgdeck/internal/app"
	_ "go.trai.ch/pkgdeck/internal/engine/dispatcher"
	_ "go.trai.ch/pkgdeck/internal/engine/executor"
	_ "go.trai.ch/pkgdeck/internal/engine/preflight"
	_ "go.trai.ch/pkgdeck/internal/engine/workers"
)
