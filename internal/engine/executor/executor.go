// Package executor runs shell-level commands in a pseudo-terminal and drives
// the session state machine, including out-of-band credential prompts.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	eventBuffer   = 256
	requestBuffer = 8
	readBuffer    = 4096
)

// Options configure an Executor.
type Options struct {
	Elevation  []string
	Patterns   Patterns
	RetryLimit int
	Env        []string
}

// Executor owns at most one execution session at a time.
type Executor struct {
	backend  ports.ProcessBackend
	metrics  ports.Metrics
	logger   ports.Logger
	validate *validator.Validate
	opts     Options

	now   func() time.Time
	newID func() string

	requests chan Request
	events   chan Event
}

// New creates an Executor.
func New(backend ports.ProcessBackend, metrics ports.Metrics, logger ports.Logger, opts Options) *Executor {
	return &Executor{
		backend:  backend,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
		requests: make(chan Request, requestBuffer),
		events:   make(chan Event, eventBuffer),
	}
}

// Requests accepts StartRequest, SupplyCredential and AbortRequest values.
func (e *Executor) Requests() chan<- Request {
	return e.requests
}

// Events publishes session progress.
func (e *Executor) Events() <-chan Event {
	return e.events
}

// Submit sends req to the loop, waiting for buffer space.
func (e *Executor) Submit(ctx context.Context, req Request) error {
	select {
	case e.requests <- req:
		return nil
	case <-ctx.Done():
		return domain.Classify(domain.KindCancelled, ctx.Err())
	}
}

type exitResult struct {
	code int
	err  error
}

// session is the active execution. Only Run touches it.
type session struct {
	rec    domain.SessionRecord
	proc   ports.Process
	cancel context.CancelFunc
	framer Framer

	chunks chan []byte
	exited chan exitResult

	lastRedraw bool
	secretSent bool
	rejections int
	attempt    int

	aborting bool
	abortErr error
	failure  error
}

// Run serves requests until ctx is done. An active session is terminated on exit.
func (e *Executor) Run(ctx context.Context) error {
	var s *session
	for {
		var chunks <-chan []byte
		var exited <-chan exitResult
		if s != nil {
			chunks = s.chunks
			exited = s.exited
		}

		select {
		case <-ctx.Done():
			if s != nil {
				e.terminate(s)
				s.cancel()
				_ = s.proc.Close()
			}
			return nil

		case req := <-e.requests:
			s = e.handle(ctx, s, req)

		case chunk, ok := <-chunks:
			if !ok {
				s.chunks = nil
				go func(proc ports.Process, out chan<- exitResult) {
					code, err := proc.Wait()
					out <- exitResult{code: code, err: err}
				}(s.proc, s.exited)
				continue
			}
			e.consume(ctx, s, chunk)

		case res := <-exited:
			e.finish(ctx, s, res)
			s = nil
		}
	}
}

func (e *Executor) handle(ctx context.Context, s *session, req Request) *session {
	switch r := req.(type) {
	case StartRequest:
		if s != nil {
			e.emit(ctx, Rejected{Err: zerr.With(domain.ErrSessionBusy, "active", s.rec.ID)})
			return s
		}
		return e.start(ctx, r)
	case SupplyCredential:
		e.credential(ctx, s, r)
	case AbortRequest:
		e.abort(ctx, s, r)
	}
	return s
}

func (e *Executor) start(ctx context.Context, r StartRequest) *session {
	if r.Plan != nil && r.Plan.Blocking && !r.Override {
		err := zerr.With(domain.ErrPlanBlocking, "plan", string(r.Plan.Signature))
		e.emit(ctx, Rejected{Err: domain.Classify(domain.KindConflictBlocking, err)})
		return nil
	}
	if err := e.validate.Struct(r.Command); err != nil {
		e.emit(ctx, Rejected{Err: zerr.Wrap(err, domain.ErrInvalidCommand.Error())})
		return nil
	}

	argv := r.Command.Expand(e.opts.Elevation)
	s := &session{rec: domain.SessionRecord{
		ID:        e.newID(),
		State:     domain.SessionIdle,
		Command:   r.Command.Clone(),
		Argv:      argv,
		DryRun:    r.Command.DryRun,
		Abortable: r.Command.Abortable,
		StartedAt: e.now(),
	}}
	if r.Plan != nil {
		s.rec.PlanSignature = r.Plan.Signature
	}

	e.emit(ctx, Started{Record: s.rec.Clone()})
	e.transition(ctx, s, domain.SessionRunning)

	if r.Command.DryRun {
		e.appendLine(ctx, s, Frame{Text: domain.DryRunLine(argv)})
		code := 0
		e.complete(ctx, s, domain.SessionCompleted, &code, nil)
		return nil
	}

	sctx, cancel := context.WithCancel(ctx)
	proc, err := e.backend.Start(sctx, argv, e.opts.Env)
	if err != nil {
		cancel()
		e.complete(ctx, s, domain.SessionFailed, nil, err)
		return nil
	}
	e.logger.Info(fmt.Sprintf("session %s started: %s", s.rec.ID, strings.Join(argv, " ")))

	s.proc = proc
	s.cancel = cancel
	s.chunks = make(chan []byte, 16)
	s.exited = make(chan exitResult, 1)
	go pump(sctx, proc, s.chunks)
	return s
}

// pump copies process output to out until EOF and then closes out.
func pump(ctx context.Context, r io.Reader, out chan<- []byte) {
	defer close(out)
	buf := make([]byte, readBuffer)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case out <- bytes.Clone(buf[:n]):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (e *Executor) consume(ctx context.Context, s *session, chunk []byte) {
	for _, f := range s.framer.Feed(chunk) {
		e.line(ctx, s, f)
	}
	// Prompts usually end without a newline.
	if pending := s.framer.Pending(); pending != "" && e.opts.Patterns.IsPrompt(pending) {
		if f, ok := s.framer.Take(); ok {
			e.appendLine(ctx, s, f)
			e.prompt(ctx, s, f.Text)
		}
	}
}

func (e *Executor) line(ctx context.Context, s *session, f Frame) {
	e.appendLine(ctx, s, f)

	p := e.opts.Patterns
	switch {
	case p.IsLockout(f.Text):
		e.fail(s, domain.Classify(domain.KindCredentialRejected, zerr.With(domain.ErrCredentialLockout, "line", f.Text)))
	case p.IsRejection(f.Text):
		if s.secretSent {
			s.secretSent = false
			e.rejected(s)
		}
	case p.IsPrompt(f.Text):
		e.prompt(ctx, s, f.Text)
	}
}

func (e *Executor) prompt(ctx context.Context, s *session, text string) {
	if s.failure != nil || s.aborting {
		return
	}
	if s.secretSent {
		// Asked again without a rejection line: the secret was wrong.
		s.secretSent = false
		if e.rejected(s) {
			return
		}
	}
	if s.rec.State == domain.SessionWaitingForCredential {
		return
	}

	s.attempt++
	e.transition(ctx, s, domain.SessionWaitingForCredential)
	e.emit(ctx, CredentialRequested{Request: domain.CredentialRequest{
		SessionID:  s.rec.ID,
		Purpose:    Purpose(text),
		PromptText: text,
		Attempt:    s.attempt,
	}})
}

// rejected counts a refused secret and fails the session past the retry limit.
func (e *Executor) rejected(s *session) bool {
	s.rejections++
	if s.rejections <= e.opts.RetryLimit {
		return false
	}
	err := zerr.With(domain.ErrCredentialRejected, "attempts", s.rejections)
	e.fail(s, domain.Classify(domain.KindCredentialRejected, err))
	return true
}

func (e *Executor) credential(ctx context.Context, s *session, r SupplyCredential) {
	defer r.Response.Destroy()

	if s == nil || s.rec.ID != r.SessionID {
		e.emit(ctx, Rejected{SessionID: r.SessionID, Err: zerr.With(domain.ErrSessionNotFound, "session", r.SessionID)})
		return
	}
	if s.rec.State != domain.SessionWaitingForCredential {
		e.emit(ctx, Rejected{SessionID: r.SessionID, Err: zerr.With(domain.ErrSessionNotWaiting, "state", s.rec.State.String())})
		return
	}

	if r.Response.Cancelled || r.Response.Secret == nil {
		s.aborting = true
		s.abortErr = domain.Classify(domain.KindCancelled, domain.ErrCredentialCancelled)
		e.terminate(s)
		return
	}

	_, err := s.proc.Write(r.Response.Secret.Bytes())
	if err == nil {
		_, err = s.proc.Write([]byte("\n"))
	}
	if err != nil {
		e.fail(s, zerr.With(zerr.Wrap(err, domain.ErrProcessFailed.Error()), "session", s.rec.ID))
		return
	}
	s.secretSent = true
	e.transition(ctx, s, domain.SessionRunning)
}

func (e *Executor) abort(ctx context.Context, s *session, r AbortRequest) {
	if s == nil || s.rec.ID != r.SessionID {
		e.emit(ctx, Rejected{SessionID: r.SessionID, Err: zerr.With(domain.ErrSessionNotFound, "session", r.SessionID)})
		return
	}
	if !s.rec.Abortable {
		e.emit(ctx, Rejected{SessionID: r.SessionID, Err: zerr.With(domain.ErrAbortNotAllowed, "command", s.rec.Command.String())})
		return
	}
	if s.aborting {
		return
	}
	s.aborting = true
	s.abortErr = domain.Classify(domain.KindCancelled, domain.ErrSessionAborted)
	e.terminate(s)
}

func (e *Executor) fail(s *session, err error) {
	if s.failure != nil {
		return
	}
	s.failure = err
	e.terminate(s)
}

func (e *Executor) terminate(s *session) {
	if s.proc == nil {
		return
	}
	if err := s.proc.Terminate(); err != nil {
		e.logger.Warn(fmt.Sprintf("session %s: terminate: %v", s.rec.ID, err))
	}
}

func (e *Executor) finish(ctx context.Context, s *session, res exitResult) {
	if f, ok := s.framer.Take(); ok {
		e.appendLine(ctx, s, f)
	}
	_ = s.proc.Close()
	s.cancel()

	code := res.code
	switch {
	case s.failure != nil:
		e.complete(ctx, s, domain.SessionFailed, &code, s.failure)
	case s.aborting:
		e.complete(ctx, s, domain.SessionAborted, &code, s.abortErr)
	case res.err != nil:
		e.complete(ctx, s, domain.SessionFailed, nil, zerr.Wrap(res.err, domain.ErrProcessFailed.Error()))
	case code != 0:
		e.complete(ctx, s, domain.SessionFailed, &code, zerr.With(domain.ErrProcessFailed, "exit_status", code))
	default:
		e.complete(ctx, s, domain.SessionCompleted, &code, nil)
	}
}

func (e *Executor) complete(ctx context.Context, s *session, state domain.SessionState, code *int, err error) {
	s.rec.ExitStatus = code
	s.rec.Err = err
	s.rec.FinishedAt = e.now()
	e.transition(ctx, s, state)

	e.metrics.SessionFinished(state.String())
	if err != nil && !domain.IsKind(err, domain.KindCancelled) {
		e.logger.Error(zerr.With(err, "session", s.rec.ID))
	} else {
		e.logger.Info(fmt.Sprintf("session %s %s", s.rec.ID, state))
	}
	e.emit(ctx, Finished{Record: s.rec.Clone()})
}

func (e *Executor) transition(ctx context.Context, s *session, next domain.SessionState) {
	from := s.rec.State
	if !from.CanTransition(next) {
		e.logger.Warn(fmt.Sprintf("session %s: ignoring transition %s → %s", s.rec.ID, from, next))
		return
	}
	s.rec.State = next
	e.emit(ctx, StateChanged{SessionID: s.rec.ID, From: from, To: next})
}

// appendLine adds f to the log. A progress line directly after a redrawn
// progress line replaces it.
func (e *Executor) appendLine(ctx context.Context, s *session, f Frame) {
	line := domain.LogLine{Text: f.Text, At: e.now()}
	replace := f.Progress && s.lastRedraw && len(s.rec.Log) > 0
	if replace {
		s.rec.Log[len(s.rec.Log)-1] = line
	} else {
		s.rec.Log = append(s.rec.Log, line)
	}
	s.lastRedraw = f.Progress && f.Redraw
	e.emit(ctx, Output{SessionID: s.rec.ID, Line: f.Text, Replace: replace})
}

func (e *Executor) emit(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}
