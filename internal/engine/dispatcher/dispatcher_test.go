package dispatcher_test

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/awnumar/memguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/metrics"
	"go.trai.ch/pkgdeck/internal/adapters/telemetry"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/core/ports/mocks"
	"go.trai.ch/pkgdeck/internal/engine/dispatcher"
	"go.trai.ch/pkgdeck/internal/engine/executor"
	"go.trai.ch/pkgdeck/internal/engine/preflight"
	"go.trai.ch/pkgdeck/internal/engine/workers"
	"go.uber.org/mock/gomock"
)

type fakePool struct {
	submitted chan domain.WorkItem
	results   map[domain.WorkKind]chan workers.Result
}

func newFakePool() *fakePool {
	p := &fakePool{
		submitted: make(chan domain.WorkItem, 64),
		results:   make(map[domain.WorkKind]chan workers.Result),
	}
	for _, kind := range domain.AllWorkKinds {
		// Unbuffered, so a completed send means the dispatcher has applied the result.
		p.results[kind] = make(chan workers.Result)
	}
	return p
}

func (p *fakePool) Submit(item domain.WorkItem) error {
	p.submitted <- item
	return nil
}

func (p *fakePool) Enqueue(_ context.Context, item domain.WorkItem) error {
	return p.Submit(item)
}

func (p *fakePool) Results(kind domain.WorkKind) <-chan workers.Result {
	return p.results[kind]
}

type fakeSessions struct {
	requests chan executor.Request
	events   chan executor.Event
}

func (s *fakeSessions) Requests() chan<- executor.Request { return s.requests }
func (s *fakeSessions) Events() <-chan executor.Event    { return s.events }

type harness struct {
	t        *testing.T
	d        *dispatcher.Dispatcher
	pool     *fakePool
	sessions *fakeSessions
	changes  chan string
	cache    *mocks.MockCacheStore
}

func newHarness(t *testing.T, m ports.Metrics) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	h := &harness{
		t:        t,
		pool:     newFakePool(),
		sessions: &fakeSessions{requests: make(chan executor.Request, 8), events: make(chan executor.Event)},
		changes:  make(chan string),
		cache:    mocks.NewMockCacheStore(ctrl),
	}

	w := mocks.NewMockDatabaseWatcher(ctrl)
	w.EXPECT().Version().Return("v1")
	w.EXPECT().Changes().Return(h.changes)

	h.d = dispatcher.New(h.pool, h.sessions, w, h.cache, telemetry.NewNoOpTracer(), m, log,
		preflight.DefaultRules(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return h
}

func (h *harness) send(in dispatcher.Intent) {
	h.t.Helper()
	require.NoError(h.t, h.d.Send(context.Background(), in))
}

func (h *harness) snapshot() dispatcher.State {
	h.t.Helper()
	s, err := h.d.Snapshot(context.Background())
	require.NoError(h.t, err)
	return s
}

// preflight reads the four items submitted for one selection.
func (h *harness) preflight() map[domain.WorkKind]domain.WorkItem {
	h.t.Helper()
	items := make(map[domain.WorkKind]domain.WorkItem)
	for range domain.PreflightKinds {
		select {
		case item := <-h.pool.submitted:
			items[item.Kind] = item
		case <-time.After(5 * time.Second):
			require.FailNow(h.t, "timed out waiting for submitted work")
		}
	}
	return items
}

func (h *harness) deliver(item domain.WorkItem, payload domain.Fragment, err error) {
	h.t.Helper()
	res := workers.Result{
		Kind:        item.Kind,
		Correlation: item.Correlation,
		Slot:        item.SlotKey(),
		Signature:   item.Signature(),
		Payload:     payload,
		Err:         err,
	}
	select {
	case h.pool.results[item.Kind] <- res:
	case <-time.After(5 * time.Second):
		require.FailNow(h.t, "dispatcher did not accept result")
	}
}

func (h *harness) emit(ev executor.Event) {
	h.t.Helper()
	select {
	case h.sessions.events <- ev:
	case <-time.After(5 * time.Second):
		require.FailNow(h.t, "dispatcher did not accept event")
	}
}

func (h *harness) request() executor.Request {
	h.t.Helper()
	select {
	case req := <-h.sessions.requests:
		return req
	case <-time.After(5 * time.Second):
		require.FailNow(h.t, "no executor request")
		return nil
	}
}

// expect skips notifications until one of type T arrives.
func expect[T dispatcher.Notification](h *harness) T {
	h.t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case n := <-h.d.Notifications():
			if v, ok := n.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			require.FailNow(h.t, "timed out waiting for notification")
			return zero
		}
	}
}

func installOf(name string) *domain.DependencyReport {
	return &domain.DependencyReport{
		Action: domain.ActionInstall,
		Items:  []domain.PlanItem{{Action: domain.ActionInstall, Name: name, ToVersion: "1.0-1"}},
		Nodes:  []domain.DependencyNode{{Name: name, Version: "1.0-1", Status: domain.DependencyToInstall, Depth: 0}},
	}
}

func answerAll(h *harness, items map[domain.WorkKind]domain.WorkItem, name string) {
	h.deliver(items[domain.WorkDependencies], installOf(name), nil)
	h.deliver(items[domain.WorkFiles], &domain.FileReport{}, nil)
	h.deliver(items[domain.WorkServices], &domain.ServiceReport{}, nil)
	h.deliver(items[domain.WorkSandbox], &domain.SandboxReport{Skipped: []string{name}}, nil)
}

func TestDispatcher_SelectAssemblesPlan(t *testing.T) {
	h := newHarness(t, metrics.Noop{})
	targets := []domain.Target{{Name: "foo"}}

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: targets})
	items := h.preflight()

	seen := map[uint64]bool{}
	for kind, item := range items {
		assert.Equal(t, "v1", item.StateVersion)
		assert.Equal(t, kind.String(), item.Slot)
		assert.Equal(t, targets, item.Targets)
		assert.False(t, seen[item.Correlation], "correlation ids are unique")
		seen[item.Correlation] = true
	}

	answerAll(h, items, "foo")

	ready := expect[dispatcher.PlanReady](h)
	assert.Equal(t, domain.CombineSignatures(
		items[domain.WorkDependencies].Signature(),
		items[domain.WorkFiles].Signature(),
		items[domain.WorkServices].Signature(),
		items[domain.WorkSandbox].Signature(),
	), ready.Plan.Signature)
	require.Len(t, ready.Plan.Items, 1)
	assert.Equal(t, "foo", ready.Plan.Items[0].Name)
	assert.Equal(t, domain.RiskLow, ready.Plan.Risk.Level)
	assert.False(t, ready.Plan.Blocking)

	state := h.snapshot()
	require.NotNil(t, state.Plan)
	assert.Equal(t, ready.Plan.Signature, state.Plan.Signature)
}

func TestDispatcher_StaleResultsAreDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockMetrics(ctrl)
	for _, kind := range domain.PreflightKinds {
		m.EXPECT().StaleDiscarded(kind.String()).Times(1)
	}
	h := newHarness(t, m)

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "foo"}}})
	first := h.preflight()
	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "bar"}}})
	second := h.preflight()

	answerAll(h, first, "foo")
	state := h.snapshot()
	assert.Nil(t, state.Plan, "answers to a superseded selection never build a plan")
	assert.Equal(t, second[domain.WorkFiles].Correlation, state.Latest(domain.WorkFiles.String()))

	answerAll(h, second, "bar")
	ready := expect[dispatcher.PlanReady](h)
	require.Len(t, ready.Plan.Items, 1)
	assert.Equal(t, "bar", ready.Plan.Items[0].Name)
}

func TestDispatcher_ClosedResultChannelDisablesCategory(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	close(h.pool.results[domain.WorkFiles])
	require.Eventually(t, func() bool {
		s, err := h.d.Snapshot(context.Background())
		return err == nil && len(s.Disabled) > 0
	}, 5*time.Second, 10*time.Millisecond)

	state := h.snapshot()
	require.Contains(t, state.Disabled, domain.WorkFiles)
	require.Len(t, state.Errors, 1)
	assert.True(t, domain.IsKind(state.Errors[0], domain.KindFatal))

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "foo"}}})
	items := make(map[domain.WorkKind]domain.WorkItem)
	for range 3 {
		item := <-h.pool.submitted
		items[item.Kind] = item
	}
	assert.NotContains(t, items, domain.WorkFiles, "disabled categories get no work")

	h.deliver(items[domain.WorkDependencies], installOf("foo"), nil)
	h.deliver(items[domain.WorkServices], &domain.ServiceReport{}, nil)
	h.deliver(items[domain.WorkSandbox], &domain.SandboxReport{}, nil)

	ready := expect[dispatcher.PlanReady](h)
	assert.True(t, ready.Plan.IsUnavailable(domain.SectionFiles))
	assert.Equal(t, domain.ErrWorkerChannelClosed.Error(), ready.Plan.Unavailable[domain.SectionFiles])
}

func TestDispatcher_FatalResultDisablesCategory(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "foo"}}})
	items := h.preflight()

	fatal := domain.Classify(domain.KindFatal, domain.ErrWorkerPanicked)
	h.deliver(items[domain.WorkSandbox], nil, fatal)
	h.deliver(items[domain.WorkDependencies], installOf("foo"), nil)
	h.deliver(items[domain.WorkFiles], &domain.FileReport{}, nil)
	h.deliver(items[domain.WorkServices], &domain.ServiceReport{}, nil)

	ready := expect[dispatcher.PlanReady](h)
	assert.True(t, ready.Plan.IsUnavailable(domain.SectionSandbox))

	state := h.snapshot()
	assert.Contains(t, state.Disabled, domain.WorkSandbox)
}

func TestDispatcher_RecoverableErrorKeepsCategory(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "foo"}}})
	items := h.preflight()

	timeout := domain.Classify(domain.KindTimeout, domain.ErrComputationTimeout)
	h.deliver(items[domain.WorkServices], nil, timeout)
	h.deliver(items[domain.WorkDependencies], installOf("foo"), nil)
	h.deliver(items[domain.WorkFiles], &domain.FileReport{}, nil)
	h.deliver(items[domain.WorkSandbox], &domain.SandboxReport{}, nil)

	ready := expect[dispatcher.PlanReady](h)
	assert.Equal(t, domain.ErrComputationTimeout.Error(), ready.Plan.Unavailable[domain.SectionServices])

	state := h.snapshot()
	assert.Empty(t, state.Disabled)
	assert.Empty(t, state.Errors)
}

func TestDispatcher_DatabaseChangeResubmits(t *testing.T) {
	h := newHarness(t, metrics.Noop{})
	h.cache.EXPECT().Advance().Return(uint64(2))

	h.send(dispatcher.Select{Action: domain.ActionRemove, Targets: []domain.Target{{Name: "foo"}}})
	before := h.preflight()

	h.changes <- "v2"
	after := h.preflight()

	for kind, item := range after {
		assert.Equal(t, "v2", item.StateVersion)
		assert.NotEqual(t, before[kind].Signature(), item.Signature())
		assert.Greater(t, item.Correlation, before[kind].Correlation)
	}
	assert.Equal(t, "v2", h.snapshot().StateVersion)
}

func TestDispatcher_RefreshAdvancesGeneration(t *testing.T) {
	h := newHarness(t, metrics.Noop{})
	h.cache.EXPECT().Advance().Return(uint64(2)).Times(2)

	h.send(dispatcher.Refresh{})
	assert.Nil(t, h.snapshot().Selection)

	h.send(dispatcher.Select{Action: domain.ActionUpdate})
	first := h.preflight()
	h.send(dispatcher.Refresh{})
	second := h.preflight()

	assert.Equal(t, first[domain.WorkDependencies].Signature(), second[domain.WorkDependencies].Signature())
	assert.NotEqual(t, first[domain.WorkDependencies].Correlation, second[domain.WorkDependencies].Correlation)
}

func TestDispatcher_SelectWithoutTargets(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	h.send(dispatcher.Select{Action: domain.ActionInstall})
	rejected := expect[dispatcher.SessionRejected](h)
	assert.Contains(t, rejected.Err.Error(), domain.ErrNoTargetsSpecified.Error())
	assert.Empty(t, h.pool.submitted)
}

func TestDispatcher_FetchDetails(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	h.send(dispatcher.FetchDetails{Targets: []domain.Target{{Name: "foo"}, {Name: "nope"}}})
	item := <-h.pool.submitted
	assert.Equal(t, domain.WorkMetadata, item.Kind)

	h.deliver(item, &domain.MetadataReport{
		Packages: []domain.Package{{Name: "foo", Version: "1.0-1", Description: "a foo"}},
		Missing:  []string{"nope"},
	}, nil)

	details := expect[dispatcher.DetailsReady](h)
	assert.Equal(t, []string{"nope"}, details.Missing)
	require.Len(t, details.Packages, 1)

	state := h.snapshot()
	assert.Equal(t, "a foo", state.Details["foo"].Description)
}

func TestDispatcher_ExecutePlan(t *testing.T) {
	h := newHarness(t, metrics.Noop{})
	cmd := domain.Command{Argv: []string{"pacman", "-S", "foo"}, NeedsElevation: true}

	h.send(dispatcher.ExecutePlan{Command: cmd})
	rejected := expect[dispatcher.SessionRejected](h)
	assert.Equal(t, domain.ErrNoPlan, rejected.Err)

	h.send(dispatcher.Select{Action: domain.ActionInstall, Targets: []domain.Target{{Name: "foo"}}})
	answerAll(h, h.preflight(), "foo")
	ready := expect[dispatcher.PlanReady](h)

	h.send(dispatcher.ExecutePlan{Command: cmd, Override: true})
	start, ok := h.request().(executor.StartRequest)
	require.True(t, ok)
	assert.Equal(t, cmd, start.Command)
	assert.True(t, start.Override)
	require.NotNil(t, start.Plan)
	assert.Equal(t, ready.Plan.Signature, start.Plan.Signature)
}

func TestDispatcher_SessionRelay(t *testing.T) {
	h := newHarness(t, metrics.Noop{})

	h.send(dispatcher.RunCommand{Command: domain.Command{Argv: []string{"true"}}})
	_, ok := h.request().(executor.StartRequest)
	require.True(t, ok)

	h.emit(executor.Started{Record: domain.SessionRecord{ID: "s1"}})
	h.emit(executor.StateChanged{SessionID: "s1", From: domain.SessionIdle, To: domain.SessionRunning})
	h.emit(executor.Output{SessionID: "s1", Line: "working"})
	h.emit(executor.StateChanged{SessionID: "s1", From: domain.SessionRunning, To: domain.SessionWaitingForCredential})
	h.emit(executor.CredentialRequested{Request: domain.CredentialRequest{SessionID: "s1", Attempt: 1}})

	asked := expect[dispatcher.CredentialRequested](h)
	assert.Equal(t, "s1", asked.Request.SessionID)

	state := h.snapshot()
	require.NotNil(t, state.Session)
	assert.Equal(t, domain.SessionWaitingForCredential, state.Session.State)
	assert.Equal(t, []string{"working"}, state.Session.Lines())
	require.NotNil(t, state.Credential)

	secret := memguard.NewBufferFromBytes([]byte("hunter2"))
	h.send(dispatcher.SupplyCredential{Response: domain.CredentialResponse{Secret: secret}})
	supply, ok := h.request().(executor.SupplyCredential)
	require.True(t, ok)
	assert.Equal(t, "s1", supply.SessionID)
	supply.Response.Destroy()

	late := memguard.NewBufferFromBytes([]byte("again"))
	h.send(dispatcher.SupplyCredential{Response: domain.CredentialResponse{Secret: late}})
	rejected := expect[dispatcher.SessionRejected](h)
	assert.Equal(t, domain.ErrSessionNotWaiting, rejected.Err)
	assert.False(t, late.IsAlive(), "an unrouted secret is destroyed")

	h.send(dispatcher.Abort{})
	abort, ok := h.request().(executor.AbortRequest)
	require.True(t, ok)
	assert.Equal(t, "s1", abort.SessionID)

	code := 0
	h.emit(executor.Finished{Record: domain.SessionRecord{ID: "s1", State: domain.SessionCompleted, ExitStatus: &code}})
	finished := expect[dispatcher.SessionFinished](h)
	assert.Equal(t, domain.SessionCompleted, finished.Record.State)

	state = h.snapshot()
	assert.Nil(t, state.Session)
	require.NotNil(t, state.LastSession)
	assert.Equal(t, "s1", state.LastSession.ID)
}

func TestDispatcher_StatusExpires(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, metrics.Noop{})

		h.cache.EXPECT().Advance().Return(uint64(2))
		h.send(dispatcher.Refresh{})

		state := h.snapshot()
		require.NotNil(t, state.Status)
		assert.Equal(t, "cache invalidated", state.Status.Text)

		time.Sleep(dispatcher.StatusTTL + 2*time.Second)
		synctest.Wait()
		assert.Nil(t, h.snapshot().Status)
	})
}
