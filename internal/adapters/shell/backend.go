// Package shell spawns child processes attached to a terminal.
package shell

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
)

// Terminal size of spawned children.
const (
	Rows = 24
	Cols = 80
)

// Backend implements ports.ProcessBackend. The platform files decide whether a
// child gets a pseudo-terminal or plain pipes.
type Backend struct{}

// NewBackend creates a Backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Start spawns argv with the system environment overridden by env.
func (b *Backend) Start(ctx context.Context, argv []string, env []string) (ports.Process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, zerr.With(domain.ErrInvalidCommand, "reason", "empty argv")
	}

	cmdEnv := mergeEnvironment(os.Environ(), env)

	executable, err := exec.LookPath(argv[0])
	if err != nil {
		notFound := zerr.With(domain.ErrToolNotFound, "tool", argv[0])
		return nil, domain.Classify(domain.KindNotFound, notFound)
	}

	//nolint:gosec // argv is a validated command chosen by the user
	cmd := exec.CommandContext(ctx, executable, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Env = cmdEnv

	proc, err := start(cmd)
	if err != nil {
		startErr := zerr.Wrap(err, domain.ErrProcessStartFailed.Error())
		return nil, zerr.With(startErr, "command", strings.Join(argv, " "))
	}
	return proc, nil
}

// mergeEnvironment applies overrides on top of the system environment.
// Later entries win.
func mergeEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	order := make([]string, 0, len(sysEnv)+len(overrides))
	for _, list := range [][]string{sysEnv, overrides} {
		for _, entry := range list {
			k, v, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			if _, seen := envMap[k]; !seen {
				order = append(order, k)
			}
			envMap[k] = v
		}
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// exitCode turns a Wait error into an exit status. Non-zero exits are not errors.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, zerr.Wrap(err, "failed to wait for process")
}
