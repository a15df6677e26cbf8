// Package terminal asks the user for confirmations and secrets on the controlling terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Prompter implements ports.Prompter. Secrets are read without echo when the
// input is a terminal and are handed over in locked memory.
type Prompter struct {
	mu  sync.Mutex
	in  io.Reader
	out io.Writer
	br  *bufio.Reader
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, br: bufio.NewReader(in)}
}

type readResult struct {
	data []byte
	err  error
}

// Credential prints the prompt and reads one secret. End of input or a
// cancelled context yield a cancelled response.
func (p *Prompter) Credential(ctx context.Context, req domain.CredentialRequest) (domain.CredentialResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := strings.TrimSpace(req.PromptText)
	if label == "" {
		label = "Password:"
	}
	if req.Attempt > 1 {
		label = fmt.Sprintf("%s (attempt %d)", label, req.Attempt)
	}
	_, _ = fmt.Fprintf(p.out, "%s ", label)

	res := make(chan readResult, 1)
	go func() {
		data, err := p.readSecret()
		res <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return domain.CredentialResponse{Cancelled: true}, nil
	case r := <-res:
		_, _ = fmt.Fprintln(p.out)
		if errors.Is(r.err, io.EOF) {
			memguard.WipeBytes(r.data)
			return domain.CredentialResponse{Cancelled: true}, nil
		}
		if r.err != nil {
			memguard.WipeBytes(r.data)
			return domain.CredentialResponse{}, zerr.Wrap(r.err, "failed to read credential")
		}
		// NewBufferFromBytes wipes the source slice.
		return domain.CredentialResponse{Secret: memguard.NewBufferFromBytes(r.data)}, nil
	}
}

func (p *Prompter) readSecret() ([]byte, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return term.ReadPassword(int(f.Fd()))
	}
	line, err := p.br.ReadBytes('\n')
	if err != nil && (len(line) == 0 || !errors.Is(err, io.EOF)) {
		return line, err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, "%s [y/N] ", question)

	res := make(chan readResult, 1)
	go func() {
		line, err := p.br.ReadString('\n')
		res <- readResult{data: []byte(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return false, domain.Classify(domain.KindCancelled, zerr.Wrap(ctx.Err(), domain.ErrOperationDeclined.Error()))
	case r := <-res:
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return false, zerr.Wrap(r.err, "failed to read answer")
		}
		switch strings.ToLower(strings.TrimSpace(string(r.data))) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
