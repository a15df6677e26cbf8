package app

import "context"

// SetProbe replaces the passwordless elevation probe.
func (a *App) SetProbe(probe func(ctx context.Context, elevation []string) bool) {
	a.probe = probe
}
