package app

import (
	"context"
	"errors"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/engine/dispatcher"
	"go.trai.ch/zerr"
)

// Controller receives the requests of an interactive view.
type Controller interface {
	Execute(force bool)
	Refresh()
	Abort()
	Details()
	Answer(resp domain.CredentialResponse)
}

// Console is an interactive view of the engine.
type Console interface {
	Start(ctx context.Context) error
	Stop() error
	Wait() error

	OnPlan(plan domain.Plan)
	OnSessionStarted(rec domain.SessionRecord)
	OnSessionOutput(sessionID, line string, replace bool)
	OnCredentialRequested(req domain.CredentialRequest)
	OnSessionFinished(rec domain.SessionRecord)
	OnStatus(text string, alert bool)
	OnDetails(pkgs []domain.Package, missing []string, err error)
}

// ConsoleFactory creates a Console reporting to ctrl.
type ConsoleFactory func(ctrl Controller) Console

type request struct {
	execute bool
	force   bool
	refresh bool
	abort   bool
	details bool
	answer  *domain.CredentialResponse
}

// controller turns view callbacks into requests for the console loop.
type controller struct {
	requests chan request
	done     <-chan struct{}
}

func (c *controller) send(r request) bool {
	select {
	case c.requests <- r:
		return true
	case <-c.done:
		return false
	}
}

func (c *controller) Execute(force bool) { c.send(request{execute: true, force: force}) }
func (c *controller) Refresh()           { c.send(request{refresh: true}) }
func (c *controller) Abort()             { c.send(request{abort: true}) }
func (c *controller) Details()           { c.send(request{details: true}) }

func (c *controller) Answer(resp domain.CredentialResponse) {
	if !c.send(request{answer: &resp}) {
		resp.Destroy()
	}
}

// console owns the interactive run. Only loop touches its fields.
type console struct {
	app    *App
	view   Console
	engine context.Context

	action  domain.Action
	targets []domain.Target
	plan    *domain.Plan

	queue      []domain.Command
	force      bool
	pending    dispatcher.Intent
	running    bool
	replanning bool
}

// Interactive opens the full screen view for an action.
func (a *App) Interactive(ctx context.Context, action domain.Action, targets []string) error {
	if a.console == nil {
		return domain.ErrNoInteractiveView
	}
	parsed := domain.ParseTargets(targets)
	return a.serve(ctx, func(ctx, engine context.Context) error {
		done := make(chan struct{})
		defer close(done)

		ctrl := &controller{requests: make(chan request), done: done}
		c := &console{
			app:     a,
			view:    a.console(ctrl),
			engine:  engine,
			action:  action,
			targets: parsed,
		}
		return c.loop(ctx, ctrl.requests)
	})
}

func (c *console) loop(ctx context.Context, requests <-chan request) error {
	if err := c.view.Start(ctx); err != nil {
		return zerr.Wrap(err, "failed to start interactive view")
	}
	viewDone := make(chan error, 1)
	go func() { viewDone <- c.view.Wait() }()

	stop := func(err error) error {
		_ = c.view.Stop()
		return errors.Join(err, <-viewDone)
	}

	if err := c.send(dispatcher.Select{Action: c.action, Targets: c.targets}); err != nil {
		return stop(err)
	}

	for {
		select {
		case err := <-viewDone:
			if err != nil {
				return zerr.Wrap(err, "interactive view failed")
			}
			return nil
		case <-ctx.Done():
			return stop(domain.Classify(domain.KindCancelled, ctx.Err()))
		case <-c.engine.Done():
			return stop(domain.Classify(domain.KindFatal, zerr.Wrap(c.engine.Err(), "engine stopped")))
		case r := <-requests:
			if err := c.handle(r); err != nil {
				return stop(err)
			}
		case n := <-c.app.engine.Notifications():
			if err := c.notify(n); err != nil {
				return stop(err)
			}
		}
	}
}

func (c *console) send(in dispatcher.Intent) error {
	return c.app.engine.Send(c.engine, in)
}

func (c *console) handle(r request) error {
	switch {
	case r.answer != nil:
		if err := c.send(dispatcher.SupplyCredential{Response: *r.answer}); err != nil {
			r.answer.Destroy()
			return err
		}
	case r.execute:
		return c.execute(r.force)
	case r.refresh:
		return c.send(dispatcher.Refresh{})
	case r.abort:
		c.queue = nil
		if c.replanning {
			c.replanning = false
			c.pending = nil
			c.running = false
			return nil
		}
		return c.send(dispatcher.Abort{})
	case r.details:
		return c.send(dispatcher.FetchDetails{Targets: c.targets})
	}
	return nil
}

func (c *console) execute(force bool) error {
	if c.plan == nil || c.running {
		return nil
	}
	cmds := c.app.commands.Build(c.plan.Action, c.plan.Targets, false)
	if len(cmds) == 0 {
		c.view.OnStatus("nothing to do", false)
		return nil
	}
	c.force = force
	c.queue = cmds[1:]
	c.running = true
	return c.start(cmds[0])
}

func (c *console) start(cmd domain.Command) error {
	in := dispatcher.ExecutePlan{Command: cmd, Override: c.force}
	c.pending = in
	return c.send(in)
}

func (c *console) notify(n dispatcher.Notification) error {
	switch n := n.(type) {
	case dispatcher.PlanReady:
		c.plan = &n.Plan
		c.view.OnPlan(n.Plan)
		if c.replanning {
			c.replanning = false
			return c.send(c.pending)
		}
	case dispatcher.SessionStarted:
		c.pending = nil
		c.view.OnSessionStarted(n.Record)
	case dispatcher.SessionOutput:
		c.view.OnSessionOutput(n.SessionID, n.Line, n.Replace)
	case dispatcher.CredentialRequested:
		c.view.OnCredentialRequested(n.Request)
	case dispatcher.SessionFinished:
		c.view.OnSessionFinished(n.Record)
		if n.Record.Err != nil {
			if !domain.IsKind(n.Record.Err, domain.KindCancelled) {
				c.app.logger.Error(n.Record.Err)
			}
			c.queue = nil
		}
		if len(c.queue) == 0 {
			c.running = false
			return nil
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		return c.start(next)
	case dispatcher.SessionRejected:
		switch {
		case errors.Is(n.Err, domain.ErrNoPlan) && c.pending != nil:
			// The package database changed; the command is sent again with the new plan.
			c.replanning = true
			c.view.OnStatus("package database changed, resolving again...", false)
		case errors.Is(n.Err, domain.ErrAbortNotAllowed):
			c.view.OnStatus("command cannot be aborted, waiting for it to finish", true)
		default:
			if c.pending != nil {
				c.pending = nil
				c.queue = nil
				c.running = false
			}
			c.view.OnStatus(n.Err.Error(), true)
		}
	case dispatcher.StatusChanged:
		if n.Status == nil {
			c.view.OnStatus("", false)
			return nil
		}
		c.view.OnStatus(n.Status.Text, n.Status.Level != dispatcher.StatusInfo)
	case dispatcher.DetailsReady:
		c.view.OnDetails(n.Packages, n.Missing, n.Err)
	}
	return nil
}
