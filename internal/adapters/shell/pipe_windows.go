//go:build windows

package shell

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.trai.ch/pkgdeck/internal/core/ports"
)

// pipeProcess merges stdout and stderr into one pipe. There is no terminal,
// so children that probe for one fall back to plain output.
type pipeProcess struct {
	cmd   *exec.Cmd
	out   *io.PipeReader
	outW  *io.PipeWriter
	stdin io.WriteCloser
	once  sync.Once
}

func start(cmd *exec.Cmd) (ports.Process, error) {
	r, w := io.Pipe()
	cmd.Stdout = w
	cmd.Stderr = w

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &pipeProcess{cmd: cmd, out: r, outW: w, stdin: stdin}, nil
}

func (p *pipeProcess) Read(b []byte) (int, error) {
	return p.out.Read(b)
}

func (p *pipeProcess) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

func (p *pipeProcess) Terminate() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *pipeProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	p.once.Do(func() { _ = p.outW.Close() })
	return exitCode(err)
}

func (p *pipeProcess) Close() error {
	_ = p.stdin.Close()
	return p.out.Close()
}
