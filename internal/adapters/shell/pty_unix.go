//go:build !windows

package shell

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"golang.org/x/sys/unix"
)

// drainDelay bounds how long Wait keeps output pipes open after a cancelled child exits.
const drainDelay = 2 * time.Second

type ptyProcess struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

func start(cmd *exec.Cmd) (ports.Process, error) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = drainDelay

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: Rows, Cols: Cols})
	if err != nil {
		return nil, err
	}
	return &ptyProcess{cmd: cmd, ptmx: ptmx}, nil
}

// Read returns io.EOF once the child side of the terminal is gone.
func (p *ptyProcess) Read(b []byte) (int, error) {
	n, err := p.ptmx.Read(b)
	if err != nil && (errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)) {
		return n, io.EOF
	}
	return n, err
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

func (p *ptyProcess) Terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Signal(unix.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *ptyProcess) Wait() (int, error) {
	return exitCode(p.cmd.Wait())
}

func (p *ptyProcess) Close() error {
	return p.ptmx.Close()
}
