// Package dispatcher owns the application state. It turns UI intents into work
// for the worker pool and the process executor, and folds their answers back in.
package dispatcher

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/engine/executor"
	"go.trai.ch/pkgdeck/internal/engine/preflight"
	"go.trai.ch/pkgdeck/internal/engine/workers"
	"go.trai.ch/zerr"
)

const (
	intentBuffer       = 16
	notificationBuffer = 64
	statusTick         = time.Second
)

// StatusTTL is how long a status message stays visible.
const StatusTTL = 5 * time.Second

// Pool is the worker pool as seen by the dispatcher.
type Pool interface {
	Submit(item domain.WorkItem) error
	Enqueue(ctx context.Context, item domain.WorkItem) error
	Results(kind domain.WorkKind) <-chan workers.Result
}

// Sessions is the process executor as seen by the dispatcher.
type Sessions interface {
	Requests() chan<- executor.Request
	Events() <-chan executor.Event
}

// Dispatcher is the single owner of State. Everything it touches is reached
// through channels from Run.
type Dispatcher struct {
	pool     Pool
	sessions Sessions
	cache    ports.CacheStore
	tracer   ports.Tracer
	metrics  ports.Metrics
	logger   ports.Logger
	rules    preflight.Rules

	appliers map[domain.WorkKind]Applier
	results  map[domain.WorkKind]<-chan workers.Result
	events   <-chan executor.Event
	changes  <-chan string

	intents       chan Intent
	notifications chan Notification
	outbox        []Notification

	state       *State
	correlation uint64
	now         func() time.Time
}

// New creates a Dispatcher. A nil watcher disables external change tracking.
func New(
	pool Pool,
	sessions Sessions,
	watcher ports.DatabaseWatcher,
	cache ports.CacheStore,
	tracer ports.Tracer,
	metrics ports.Metrics,
	logger ports.Logger,
	rules preflight.Rules,
) *Dispatcher {
	d := &Dispatcher{
		pool:          pool,
		sessions:      sessions,
		cache:         cache,
		tracer:        tracer,
		metrics:       metrics,
		logger:        logger,
		rules:         rules,
		appliers:      defaultAppliers(),
		results:       make(map[domain.WorkKind]<-chan workers.Result, len(domain.AllWorkKinds)),
		events:        sessions.Events(),
		intents:       make(chan Intent, intentBuffer),
		notifications: make(chan Notification, notificationBuffer),
		now:           time.Now,
	}
	for _, kind := range domain.AllWorkKinds {
		d.results[kind] = pool.Results(kind)
	}

	version := ""
	if watcher != nil {
		version = watcher.Version()
		d.changes = watcher.Changes()
	}
	d.state = newState(version)
	return d
}

// Send queues an intent, waiting for buffer space.
func (d *Dispatcher) Send(ctx context.Context, in Intent) error {
	select {
	case d.intents <- in:
		return nil
	case <-ctx.Done():
		return domain.Classify(domain.KindCancelled, ctx.Err())
	}
}

// Notifications publishes what observers need to render.
func (d *Dispatcher) Notifications() <-chan Notification {
	return d.notifications
}

// Snapshot returns a deep copy of the state as of the time the request is served.
func (d *Dispatcher) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := d.Send(ctx, snapshot{reply: reply}); err != nil {
		return State{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return State{}, domain.Classify(domain.KindCancelled, ctx.Err())
	}
}

// Run serves every source until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(statusTick)
	defer ticker.Stop()

	for {
		var out chan<- Notification
		var next Notification
		if len(d.outbox) > 0 {
			out, next = d.notifications, d.outbox[0]
		}

		select {
		case <-ctx.Done():
			return nil

		case in := <-d.intents:
			d.intent(ctx, in)

		case res, ok := <-d.results[domain.WorkDependencies]:
			d.result(ctx, domain.WorkDependencies, res, ok)
		case res, ok := <-d.results[domain.WorkFiles]:
			d.result(ctx, domain.WorkFiles, res, ok)
		case res, ok := <-d.results[domain.WorkServices]:
			d.result(ctx, domain.WorkServices, res, ok)
		case res, ok := <-d.results[domain.WorkSandbox]:
			d.result(ctx, domain.WorkSandbox, res, ok)
		case res, ok := <-d.results[domain.WorkMetadata]:
			d.result(ctx, domain.WorkMetadata, res, ok)

		case ev, ok := <-d.events:
			d.event(ev, ok)

		case version, ok := <-d.changes:
			d.external(ctx, version, ok)

		case now := <-ticker.C:
			d.expire(now)

		case out <- next:
			d.outbox[0] = nil
			d.outbox = d.outbox[1:]
		}
	}
}

func (d *Dispatcher) intent(ctx context.Context, in Intent) {
	switch in := in.(type) {
	case Select:
		d.selectTargets(ctx, in.Action, in.Targets)
	case Refresh:
		d.refresh(ctx)
	case FetchDetails:
		d.fetchDetails(ctx, in.Targets)
	case ExecutePlan:
		d.executePlan(ctx, in)
	case RunCommand:
		d.forward(ctx, executor.StartRequest{Command: in.Command})
	case SupplyCredential:
		d.supplyCredential(ctx, in.Response)
	case Abort:
		d.abort(ctx)
	case snapshot:
		in.reply <- d.state.Clone()
	}
}

func (d *Dispatcher) selectTargets(ctx context.Context, action domain.Action, targets []domain.Target) {
	if len(targets) == 0 && action != domain.ActionUpdate {
		d.reject("", zerr.With(domain.ErrNoTargetsSpecified, "action", action.String()))
		return
	}
	d.state.Selection = &Selection{Action: action, Targets: slices.Clone(targets)}
	d.preflight(ctx)
}

// preflight submits every section of the current selection and forgets the old plan.
func (d *Dispatcher) preflight(ctx context.Context) {
	sel := d.state.Selection
	sel.Input = preflight.Input{Action: sel.Action, Targets: slices.Clone(sel.Targets), Rules: d.rules}
	d.state.Plan = nil

	for _, kind := range domain.PreflightKinds {
		if err, off := d.state.Disabled[kind]; off {
			*sel.Input.Section(kind) = preflight.SectionResult{Err: err}
			continue
		}
		d.submit(ctx, domain.WorkItem{Kind: kind, Action: sel.Action, Targets: sel.Targets})
	}

	what := "full upgrade"
	if len(sel.Targets) > 0 {
		what = strings.Join(domain.TargetNames(sel.Targets), ", ")
	}
	d.status(StatusInfo, fmt.Sprintf("resolving %s plan for %s", sel.Action, what))
	d.assemble(ctx)
}

func (d *Dispatcher) refresh(ctx context.Context) {
	gen := d.cache.Advance()
	d.logger.Info(fmt.Sprintf("cache generation advanced to %d", gen))
	if d.state.Selection == nil {
		d.status(StatusInfo, "cache invalidated")
		return
	}
	d.preflight(ctx)
}

func (d *Dispatcher) fetchDetails(ctx context.Context, targets []domain.Target) {
	if err, off := d.state.Disabled[domain.WorkMetadata]; off {
		d.status(StatusError, preflight.Reason(err))
		d.notify(DetailsReady{Err: err})
		return
	}
	if len(targets) == 0 {
		return
	}
	d.submit(ctx, domain.WorkItem{Kind: domain.WorkMetadata, Targets: slices.Clone(targets)})
}

// submit stamps item and hands it to the pool without waiting for the worker.
func (d *Dispatcher) submit(ctx context.Context, item domain.WorkItem) {
	d.correlation++
	item.Correlation = d.correlation
	item.IssuedAt = d.now()
	item.StateVersion = d.state.StateVersion
	item.Slot = item.SlotKey()
	d.state.latest[item.Slot] = item.Correlation

	err := d.pool.Submit(item)
	switch {
	case err == nil:
	case domain.IsKind(err, domain.KindTimeout):
		// The queue is full. Hand the send to a goroutine so the loop keeps running.
		go func() {
			if err := d.pool.Enqueue(ctx, item); err != nil && !domain.IsKind(err, domain.KindCancelled) {
				d.logger.Error(err)
			}
		}()
	default:
		d.logger.Error(err)
		if sel := d.state.Selection; sel != nil {
			if sec := sel.Input.Section(item.Kind); sec != nil {
				*sec = preflight.SectionResult{Err: err}
			}
		}
	}
}

func (d *Dispatcher) result(ctx context.Context, kind domain.WorkKind, res workers.Result, ok bool) {
	if !ok {
		d.disable(ctx, kind, domain.Classify(domain.KindFatal,
			zerr.With(domain.ErrWorkerChannelClosed, "worker", kind.String())))
		return
	}

	applier, found := d.appliers[kind]
	if !found || !applier.Relevant(d.state, res) {
		d.metrics.StaleDiscarded(kind.String())
		return
	}
	applier.Apply(d.state, res)

	if res.Err != nil {
		switch domain.KindOf(res.Err) {
		case domain.KindFatal:
			d.disable(ctx, kind, res.Err)
		case domain.KindCancelled:
		default:
			d.logger.Warn(fmt.Sprintf("%s: %v", kind, res.Err))
			d.status(StatusWarn, fmt.Sprintf("%s unavailable: %s", kind, preflight.Reason(res.Err)))
		}
	}

	if kind == domain.WorkMetadata {
		details := DetailsReady{Err: res.Err}
		if report, isMeta := res.Payload.(*domain.MetadataReport); isMeta {
			details.Packages, details.Missing = report.Packages, report.Missing
		}
		d.notify(details)
		return
	}
	d.assemble(ctx)
}

// disable stops listening to a worker for the rest of the process lifetime.
func (d *Dispatcher) disable(ctx context.Context, kind domain.WorkKind, err error) {
	if _, off := d.state.Disabled[kind]; off {
		return
	}
	d.results[kind] = nil
	d.state.Disabled[kind] = err
	d.state.Errors = append(d.state.Errors, err)
	d.logger.Error(err)
	d.status(StatusError, fmt.Sprintf("%s disabled: %s", kind, preflight.Reason(err)))

	if sel := d.state.Selection; sel != nil {
		if sec := sel.Input.Section(kind); sec != nil && !sec.Resolved() {
			*sec = preflight.SectionResult{Err: err}
			d.assemble(ctx)
		}
	}
}

// assemble builds the plan once every section of the selection has answered.
func (d *Dispatcher) assemble(ctx context.Context) {
	sel := d.state.Selection
	if sel == nil || d.state.Plan != nil || !sel.Input.Complete() {
		return
	}

	_, span := d.tracer.Start(ctx, "assemble plan")
	plan := preflight.Assemble(sel.Input)
	span.SetAttribute("plan.signature", string(plan.Signature))
	span.SetAttribute("plan.risk", plan.Risk.Level.String())
	span.SetAttribute("plan.blocking", plan.Blocking)
	span.End()

	d.state.Plan = &plan
	d.status(StatusInfo, fmt.Sprintf("plan ready, risk %s", plan.Risk.Level))
	d.notify(PlanReady{Plan: plan})
}

func (d *Dispatcher) executePlan(ctx context.Context, in ExecutePlan) {
	if d.state.Plan == nil {
		d.reject("", domain.ErrNoPlan)
		return
	}
	plan := *d.state.Plan
	d.forward(ctx, executor.StartRequest{Command: in.Command, Plan: &plan, Override: in.Override})
}

func (d *Dispatcher) supplyCredential(ctx context.Context, resp domain.CredentialResponse) {
	req := d.state.Credential
	if req == nil {
		resp.Destroy()
		d.reject("", domain.ErrSessionNotWaiting)
		return
	}
	d.state.Credential = nil
	d.forward(ctx, executor.SupplyCredential{SessionID: req.SessionID, Response: resp})
}

func (d *Dispatcher) abort(ctx context.Context) {
	if d.state.Session == nil {
		d.reject("", domain.ErrSessionNotFound)
		return
	}
	d.forward(ctx, executor.AbortRequest{SessionID: d.state.Session.ID})
}

// forward sends req to the executor without blocking the loop.
func (d *Dispatcher) forward(ctx context.Context, req executor.Request) {
	requests := d.sessions.Requests()
	select {
	case requests <- req:
		return
	default:
	}
	go func() {
		select {
		case requests <- req:
		case <-ctx.Done():
			if sc, ok := req.(executor.SupplyCredential); ok {
				sc.Response.Destroy()
			}
		}
	}()
}

func (d *Dispatcher) event(ev executor.Event, ok bool) {
	if !ok {
		d.events = nil
		err := domain.Classify(domain.KindFatal, zerr.With(domain.ErrWorkerChannelClosed, "worker", "executor"))
		d.state.Errors = append(d.state.Errors, err)
		d.logger.Error(err)
		d.status(StatusError, "executor stopped")
		return
	}

	switch ev := ev.(type) {
	case executor.Started:
		rec := ev.Record.Clone()
		d.state.Session = &rec
		d.notify(SessionStarted{Record: ev.Record})

	case executor.Output:
		if s := d.state.Session; s != nil && s.ID == ev.SessionID {
			line := domain.LogLine{Text: ev.Line, At: d.now()}
			if ev.Replace && len(s.Log) > 0 {
				s.Log[len(s.Log)-1] = line
			} else {
				s.Log = append(s.Log, line)
			}
		}
		d.notify(SessionOutput{SessionID: ev.SessionID, Line: ev.Line, Replace: ev.Replace})

	case executor.StateChanged:
		if s := d.state.Session; s != nil && s.ID == ev.SessionID {
			s.State = ev.To
		}
		if ev.To != domain.SessionWaitingForCredential {
			d.state.Credential = nil
		}

	case executor.CredentialRequested:
		req := ev.Request
		d.state.Credential = &req
		d.status(StatusInfo, "credential required")
		d.notify(CredentialRequested{Request: req})

	case executor.Finished:
		rec := ev.Record
		d.state.Session = nil
		d.state.Credential = nil
		d.state.LastSession = &rec
		switch {
		case rec.Err == nil:
			d.status(StatusInfo, "session "+rec.State.String())
		case domain.IsKind(rec.Err, domain.KindCancelled):
			d.status(StatusWarn, "session "+rec.State.String())
		default:
			d.state.Errors = append(d.state.Errors, rec.Err)
			d.status(StatusError, fmt.Sprintf("session %s: %s", rec.State, preflight.Reason(rec.Err)))
		}
		d.notify(SessionFinished{Record: rec})

	case executor.Rejected:
		d.reject(ev.SessionID, ev.Err)
	}
}

// external handles a change of the local package database.
func (d *Dispatcher) external(ctx context.Context, version string, ok bool) {
	if !ok {
		d.changes = nil
		d.logger.Warn("package database watcher stopped")
		return
	}
	if version == d.state.StateVersion {
		return
	}
	d.state.StateVersion = version
	d.cache.Advance()
	d.logger.Info("package database changed, state version " + version)

	if d.state.Selection != nil {
		d.preflight(ctx)
		return
	}
	d.status(StatusInfo, "package database changed")
}

func (d *Dispatcher) reject(sessionID string, err error) {
	if !domain.IsKind(err, domain.KindCancelled) {
		d.logger.Error(err)
	}
	d.status(StatusError, preflight.Reason(err))
	d.notify(SessionRejected{SessionID: sessionID, Err: err})
}

func (d *Dispatcher) status(level StatusLevel, text string) {
	st := Status{Text: text, Level: level, Until: d.now().Add(StatusTTL)}
	d.state.Status = &st
	d.notify(StatusChanged{Status: &st})
}

func (d *Dispatcher) expire(now time.Time) {
	if d.state.Status == nil || now.Before(d.state.Status.Until) {
		return
	}
	d.state.Status = nil
	d.notify(StatusChanged{})
}

func (d *Dispatcher) notify(n Notification) {
	d.outbox = append(d.outbox, n)
}
