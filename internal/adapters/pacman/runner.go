// Package pacman queries the local and sync databases through the pacman CLI
// and builds the commands that mutate them.
package pacman

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// Binary is the tool every query runs.
const Binary = "pacman"

// runner executes one tool with a fixed locale so output parsing is stable.
type runner struct {
	bin string
}

func (r runner) run(ctx context.Context, args ...string) ([]byte, error) {
	path, err := exec.LookPath(r.bin)
	if err != nil {
		return nil, domain.Classify(domain.KindNotFound, zerr.With(domain.ErrToolNotFound, "tool", r.bin))
	}

	//nolint:gosec // arguments are package names passed as separate argv entries
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return nil, domain.Classify(domain.KindTimeout, zerr.With(zerr.Wrap(ctx.Err(), domain.ErrSourceTimeout.Error()), "tool", r.bin))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && partialMiss(stderr.String()) {
		// Lookups of several names exit 1 when some are unknown and still print the rest.
		return out, nil
	}

	toolErr := zerr.Wrap(err, domain.ErrToolFailed.Error())
	toolErr = zerr.With(toolErr, "tool", r.bin)
	toolErr = zerr.With(toolErr, "args", strings.Join(args, " "))
	return nil, zerr.With(toolErr, "stderr", strings.TrimSpace(stderr.String()))
}

// partialMiss reports whether every stderr line is an unknown-package error.
func partialMiss(stderr string) bool {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for _, l := range lines {
		if !strings.Contains(l, "was not found") {
			return false
		}
	}
	return len(lines) > 0 && lines[0] != ""
}
