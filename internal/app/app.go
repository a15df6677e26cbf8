// Package app implements the application layer for pkgdeck.
package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/engine/dispatcher"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Engine is the dispatcher as seen by the application.
type Engine interface {
	Run(ctx context.Context) error
	Send(ctx context.Context, in dispatcher.Intent) error
	Notifications() <-chan dispatcher.Notification
}

// Service is a long-running component started alongside the engine.
type Service interface {
	Run(ctx context.Context) error
}

// Renderer prints plans, details and session output.
type Renderer interface {
	RenderPlan(plan *domain.Plan)
	RenderPlanJSON(plan *domain.Plan) error
	RenderDetails(pkgs []domain.Package, missing []string)
	SessionStarted(rec domain.SessionRecord)
	SessionOutput(line string, replace bool)
	SessionFinished(rec domain.SessionRecord)
	Status(msg string)
}

// CommandBuilder turns an action into the commands that carry it out.
type CommandBuilder interface {
	Build(action domain.Action, targets []domain.Target, dryRun bool) []domain.Command
}

// Deps groups everything an App needs.
type Deps struct {
	Engine   Engine
	Pool     Service
	Executor Service
	Watcher  Service
	Cache    ports.CacheStore
	Commands CommandBuilder
	Prompter ports.Prompter
	Renderer Renderer
	Console  ConsoleFactory
	Tracer   ports.Tracer
	Metrics  ports.Metrics
	Logger   ports.Logger

	// Elevation is the argv prefix of elevated commands.
	Elevation []string
}

// App represents the main application logic.
type App struct {
	engine   Engine
	services map[string]Service
	watcher  Service
	cache    ports.CacheStore
	commands CommandBuilder
	prompter ports.Prompter
	renderer Renderer
	console  ConsoleFactory
	tracer   ports.Tracer
	metrics  ports.Metrics
	logger   ports.Logger

	elevation []string
	probe     func(ctx context.Context, elevation []string) bool
}

// New creates a new App instance. A nil watcher disables external change tracking.
func New(deps Deps) *App {
	return &App{
		engine:   deps.Engine,
		services: map[string]Service{"workers": deps.Pool, "executor": deps.Executor},
		watcher:  deps.Watcher,
		cache:    deps.Cache,
		commands: deps.Commands,
		prompter: deps.Prompter,
		renderer: deps.Renderer,
		console:  deps.Console,
		tracer:   deps.Tracer,
		metrics:  deps.Metrics,
		logger:   deps.Logger,

		elevation: deps.Elevation,
		probe:     CanElevateWithoutPassword,
	}
}

// PlanOptions configures the Preflight method.
type PlanOptions struct {
	JSON bool
}

// ExecuteOptions configures the Execute method.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Yes    bool
}

// RunOptions configures the Run method.
type RunOptions struct {
	DryRun  bool
	Elevate bool
	NoAbort bool
}

// Preflight resolves and prints the plan for an action without executing it.
func (a *App) Preflight(ctx context.Context, action domain.Action, targets []string, opts PlanOptions) error {
	return a.serve(ctx, func(ctx context.Context, engine context.Context) error {
		plan, err := a.resolve(ctx, engine, action, domain.ParseTargets(targets))
		if err != nil {
			return err
		}
		if opts.JSON {
			return a.renderer.RenderPlanJSON(&plan)
		}
		a.renderer.RenderPlan(&plan)
		return nil
	})
}

// Execute resolves the plan for an action, asks for confirmation and runs it.
func (a *App) Execute(ctx context.Context, action domain.Action, targets []string, opts ExecuteOptions) error {
	return a.serve(ctx, func(ctx context.Context, engine context.Context) error {
		plan, err := a.resolve(ctx, engine, action, domain.ParseTargets(targets))
		if err != nil {
			return err
		}
		a.renderer.RenderPlan(&plan)

		if plan.Blocking && !opts.Force {
			return zerr.With(domain.ErrPlanBlocking, "plan", string(plan.Signature))
		}

		if !opts.Yes && !opts.DryRun {
			ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("Proceed with %s?", action))
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrOperationDeclined
			}
		}

		cmds := a.commands.Build(action, plan.Targets, opts.DryRun)
		a.announceElevation(ctx, cmds)
		for _, cmd := range cmds {
			in := dispatcher.ExecutePlan{Command: cmd, Override: opts.Force}
			if err := a.session(ctx, engine, in); err != nil {
				return err
			}
		}
		return nil
	})
}

// Run executes an ad-hoc command through the process executor.
func (a *App) Run(ctx context.Context, argv []string, opts RunOptions) error {
	if len(argv) == 0 {
		return domain.ErrInvalidCommand
	}
	cmd := domain.Command{
		Argv:           argv,
		NeedsElevation: opts.Elevate,
		Abortable:      !opts.NoAbort,
		DryRun:         opts.DryRun,
	}
	return a.serve(ctx, func(ctx context.Context, engine context.Context) error {
		return a.session(ctx, engine, dispatcher.RunCommand{Command: cmd})
	})
}

// Info prints package metadata for targets.
func (a *App) Info(ctx context.Context, targets []string) error {
	parsed := domain.ParseTargets(targets)
	if len(parsed) == 0 {
		return domain.ErrNoTargetsSpecified
	}
	return a.serve(ctx, func(ctx context.Context, engine context.Context) error {
		if err := a.engine.Send(engine, dispatcher.FetchDetails{Targets: parsed}); err != nil {
			return err
		}
		for {
			n, err := a.next(ctx, engine)
			if err != nil {
				return err
			}
			switch n := n.(type) {
			case dispatcher.DetailsReady:
				if n.Err != nil {
					return zerr.Wrap(n.Err, "failed to fetch package details")
				}
				a.renderer.RenderDetails(n.Packages, n.Missing)
				if len(n.Packages) == 0 && len(n.Missing) > 0 {
					return zerr.With(domain.ErrPackageNotFound, "packages", strings.Join(n.Missing, ","))
				}
				return nil
			case dispatcher.StatusChanged:
				a.status(n)
			}
		}
	})
}

// CleanCache removes every cached preflight fragment.
func (a *App) CleanCache(_ context.Context) error {
	a.logger.Info("removing preflight cache...")
	if err := a.cache.Clear(); err != nil {
		return zerr.Wrap(err, "failed to remove preflight cache")
	}
	a.logger.Info("removed preflight cache")
	return nil
}

// CanElevateWithoutPassword reports whether the elevation tool accepts a
// non-interactive invocation, for example because of cached credentials.
func CanElevateWithoutPassword(ctx context.Context, elevation []string) bool {
	if len(elevation) == 0 {
		return true
	}
	return exec.CommandContext(ctx, elevation[0], "-n", "true").Run() == nil
}

// announceElevation tells the user whether elevated commands will prompt for a password.
func (a *App) announceElevation(ctx context.Context, cmds []domain.Command) {
	needs := slices.ContainsFunc(cmds, func(c domain.Command) bool {
		return c.NeedsElevation && !c.DryRun
	})
	if !needs || len(a.elevation) == 0 {
		return
	}
	if a.probe(ctx, a.elevation) {
		a.logger.Info(a.elevation[0] + " credentials are cached")
		return
	}
	a.renderer.Status(a.elevation[0] + " will ask for your password")
}

// serve runs the engine and its services for the duration of drive. drive
// receives the caller context and the engine context; intents are sent on the
// latter so they still arrive while drive reacts to a cancelled caller.
func (a *App) serve(ctx context.Context, drive func(ctx, engine context.Context) error) error {
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()
	g, engine := errgroup.WithContext(runCtx)

	spawn(engine, g, "dispatcher", a.engine)
	for name, svc := range a.services {
		spawn(engine, g, name, svc)
	}
	if a.watcher != nil {
		spawn(engine, g, "watcher", tolerant{svc: a.watcher, logger: a.logger})
	}

	driveErr := drive(ctx, engine)
	stop()

	if err := errors.Join(g.Wait(), a.shutdown(ctx)); err != nil {
		if driveErr == nil {
			return err
		}
		a.logger.Error(err)
	}
	return driveErr
}

func spawn(ctx context.Context, g *errgroup.Group, name string, svc Service) {
	g.Go(func() (err error) {
		defer zerr.Defer(func(recovered error) {
			err = zerr.With(zerr.Wrap(recovered, "component panicked"), "component", name)
		})
		return svc.Run(ctx)
	})
}

// shutdown persists state that outlives the process.
func (a *App) shutdown(ctx context.Context) error {
	var errs error
	if err := a.cache.Persist(); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to persist preflight cache"))
	}
	if err := a.metrics.Flush(); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to flush metrics"))
	}
	if err := a.tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		errs = errors.Join(errs, zerr.Wrap(err, "failed to shut down tracer"))
	}
	return errs
}

// resolve selects targets and waits for the assembled plan.
func (a *App) resolve(
	ctx, engine context.Context, action domain.Action, targets []domain.Target,
) (domain.Plan, error) {
	ctx, span := a.tracer.Start(ctx, "resolve plan")
	defer span.End()
	span.SetAttribute("action", action.String())

	if err := a.engine.Send(engine, dispatcher.Select{Action: action, Targets: targets}); err != nil {
		return domain.Plan{}, err
	}
	for {
		n, err := a.next(ctx, engine)
		if err != nil {
			span.RecordError(err)
			return domain.Plan{}, err
		}
		switch n := n.(type) {
		case dispatcher.PlanReady:
			return n.Plan, nil
		case dispatcher.SessionRejected:
			span.RecordError(n.Err)
			return domain.Plan{}, n.Err
		case dispatcher.StatusChanged:
			a.status(n)
		}
	}
}

// session sends in and relays notifications until the session it starts has finished.
// Cancelling ctx aborts the session; a command that cannot be aborted runs to completion.
func (a *App) session(ctx, engine context.Context, in dispatcher.Intent) error {
	if err := a.engine.Send(engine, in); err != nil {
		return err
	}

	aborting := false
	for {
		n, err := a.next(ctx, engine)
		if err != nil {
			if aborting || !domain.IsKind(err, domain.KindCancelled) || engine.Err() != nil {
				return err
			}
			aborting = true
			ctx = engine
			a.renderer.Status("aborting...")
			if err := a.engine.Send(engine, dispatcher.Abort{}); err != nil {
				return err
			}
			continue
		}

		switch n := n.(type) {
		case dispatcher.SessionStarted:
			a.renderer.SessionStarted(n.Record)
		case dispatcher.SessionOutput:
			a.renderer.SessionOutput(n.Line, n.Replace)
		case dispatcher.CredentialRequested:
			a.credential(ctx, engine, n.Request)
		case dispatcher.SessionFinished:
			a.renderer.SessionFinished(n.Record)
			if err := n.Record.Err; err != nil {
				if !domain.IsKind(err, domain.KindCancelled) {
					a.logger.Error(err)
				}
				return errors.Join(domain.ErrExecutionFailed, err)
			}
			return nil
		case dispatcher.SessionRejected:
			switch {
			case aborting && errors.Is(n.Err, domain.ErrAbortNotAllowed):
				a.renderer.Status("command cannot be aborted, waiting for it to finish")
			case errors.Is(n.Err, domain.ErrNoPlan):
				// The package database changed and the plan is being resolved again.
				if err := a.replan(ctx, engine); err != nil {
					return err
				}
				if err := a.engine.Send(engine, in); err != nil {
					return err
				}
			default:
				return n.Err
			}
		case dispatcher.StatusChanged:
			a.status(n)
		}
	}
}

func (a *App) replan(ctx, engine context.Context) error {
	for {
		n, err := a.next(ctx, engine)
		if err != nil {
			return err
		}
		switch n := n.(type) {
		case dispatcher.PlanReady:
			return nil
		case dispatcher.SessionRejected:
			return n.Err
		}
	}
}

func (a *App) credential(ctx, engine context.Context, req domain.CredentialRequest) {
	resp, err := a.prompter.Credential(ctx, req)
	if err != nil {
		resp = domain.CredentialResponse{Cancelled: true}
	}
	if err := a.engine.Send(engine, dispatcher.SupplyCredential{Response: resp}); err != nil {
		resp.Destroy()
	}
}

// next waits for the following notification.
func (a *App) next(ctx, engine context.Context) (dispatcher.Notification, error) {
	select {
	case n := <-a.engine.Notifications():
		return n, nil
	case <-ctx.Done():
		return nil, domain.Classify(domain.KindCancelled, ctx.Err())
	case <-engine.Done():
		return nil, domain.Classify(domain.KindFatal, zerr.Wrap(engine.Err(), "engine stopped"))
	}
}

func (a *App) status(n dispatcher.StatusChanged) {
	if n.Status == nil || n.Status.Level == dispatcher.StatusInfo {
		return
	}
	a.renderer.Status(n.Status.Text)
}

// tolerant keeps a failing watcher from stopping the engine.
type tolerant struct {
	svc    Service
	logger ports.Logger
}

func (t tolerant) Run(ctx context.Context) error {
	if err := t.svc.Run(ctx); err != nil && ctx.Err() == nil {
		t.logger.Warn(fmt.Sprintf("package database watcher stopped: %v", err))
	}
	return nil
}
