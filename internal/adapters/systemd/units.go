// Package systemd lists active service units through systemctl.
package systemd

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// Binary is the tool queried for unit state.
const Binary = "systemctl"

// Manager implements ports.ServiceManager.
type Manager struct {
	bin string
}

// NewManager creates a Manager that runs systemctl from PATH.
func NewManager() *Manager {
	return &Manager{bin: Binary}
}

// ActiveUnits returns the names of active service units.
func (m *Manager) ActiveUnits(ctx context.Context) ([]string, error) {
	path, err := exec.LookPath(m.bin)
	if err != nil {
		return nil, domain.Classify(domain.KindNotFound, zerr.With(domain.ErrToolNotFound, "tool", m.bin))
	}

	//nolint:gosec // fixed arguments
	cmd := exec.CommandContext(ctx, path, "list-units", "--type=service", "--no-legend", "--no-pager", "--plain", "--state=active")
	cmd.Env = append(os.Environ(), "LC_ALL=C", "SYSTEMD_COLORS=0")

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.Classify(domain.KindTimeout, zerr.Wrap(ctx.Err(), domain.ErrSourceTimeout.Error()))
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrToolFailed.Error()), "tool", m.bin)
	}
	return ParseUnits(out), nil
}

// ParseUnits extracts unit names from list-units output. Rows may start with a
// status marker such as "●".
func ParseUnits(out []byte) []string {
	var units []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		for _, f := range strings.Fields(sc.Text()) {
			if strings.HasSuffix(f, ".service") {
				units = append(units, f)
				break
			}
		}
	}
	return units
}
