package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/cache"
	"go.trai.ch/pkgdeck/internal/adapters/metrics"
	"go.trai.ch/pkgdeck/internal/adapters/telemetry"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/pkgdeck/internal/core/ports/mocks"
	"go.trai.ch/pkgdeck/internal/engine/workers"
	"go.uber.org/mock/gomock"
)

// fakeComputation counts calls and runs fn for each of them.
type fakeComputation struct {
	calls atomic.Int32
	fn    func(ctx context.Context, item domain.WorkItem) (domain.Fragment, error)
}

func (*fakeComputation) Kind() domain.WorkKind { return domain.WorkDependencies }

func (f *fakeComputation) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	f.calls.Add(1)
	return f.fn(ctx, item)
}

func newWorker(comp workers.Computation, timeout time.Duration) *workers.Worker {
	return workers.NewWorker(comp, cache.NewStore(""), telemetry.NewNoOpTracer(), metrics.Noop{}, timeout, 8)
}

// start runs w until the test ends.
func start(t *testing.T, w *workers.Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func depsItem(correlation uint64, names ...string) domain.WorkItem {
	return domain.WorkItem{
		Kind:         domain.WorkDependencies,
		Action:       domain.ActionInstall,
		Targets:      domain.ParseTargets(names),
		Correlation:  correlation,
		StateVersion: "v1",
	}
}

func TestWorker_CoalescesConcurrentRequests(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		release := make(chan struct{})
		comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
			<-release
			return &domain.DependencyReport{Action: domain.ActionInstall}, nil
		}}
		w := newWorker(comp, time.Minute)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.NoError(t, w.Submit(depsItem(1, "foo", "baz")))
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, w.Submit(depsItem(2, "baz", "foo")))
		synctest.Wait()
		close(release)

		first := <-w.Results()
		second := <-w.Results()

		assert.Equal(t, int32(1), comp.calls.Load())
		assert.ElementsMatch(t, []uint64{1, 2}, []uint64{first.Correlation, second.Correlation})
		assert.Equal(t, first.Signature, second.Signature)
		require.NoError(t, first.Err)
		require.NoError(t, second.Err)
		assert.Same(t, first.Payload, second.Payload)
		assert.True(t, first.Shared)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestWorker_CacheHitSkipsComputation(t *testing.T) {
	comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		return &domain.DependencyReport{}, nil
	}}
	w := newWorker(comp, time.Minute)
	start(t, w)

	require.NoError(t, w.Submit(depsItem(1, "foo")))
	first := <-w.Results()
	require.NoError(t, w.Submit(depsItem(2, "foo")))
	second := <-w.Results()

	assert.Equal(t, int32(1), comp.calls.Load())
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, uint64(2), second.Correlation)
	assert.Same(t, first.Payload, second.Payload)
}

func TestWorker_StateVersionChangesSignature(t *testing.T) {
	comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		return &domain.DependencyReport{}, nil
	}}
	w := newWorker(comp, time.Minute)
	start(t, w)

	item := depsItem(1, "foo")
	require.NoError(t, w.Submit(item))
	<-w.Results()

	item.StateVersion = "v2"
	item.Correlation = 2
	require.NoError(t, w.Submit(item))
	res := <-w.Results()

	assert.False(t, res.Cached)
	assert.Equal(t, int32(2), comp.calls.Load())
}

func TestWorker_ErrorsAreNotCached(t *testing.T) {
	comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		return nil, domain.Classify(domain.KindNotFound, domain.ErrToolNotFound)
	}}
	w := newWorker(comp, time.Minute)
	start(t, w)

	for i := range 2 {
		require.NoError(t, w.Submit(depsItem(uint64(i), "foo")))
		res := <-w.Results()
		assert.True(t, domain.IsKind(res.Err, domain.KindNotFound))
		assert.Nil(t, res.Payload)
	}
	assert.Equal(t, int32(2), comp.calls.Load())
}

func TestWorker_TimeoutBecomesTimeoutResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		comp := &fakeComputation{fn: func(ctx context.Context, _ domain.WorkItem) (domain.Fragment, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		w := newWorker(comp, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.NoError(t, w.Submit(depsItem(7, "foo")))
		res := <-w.Results()

		assert.Equal(t, uint64(7), res.Correlation)
		assert.True(t, domain.IsKind(res.Err, domain.KindTimeout), "got %v", res.Err)
		assert.True(t, errors.Is(res.Err, context.DeadlineExceeded))

		cancel()
		require.NoError(t, <-done)
	})
}

func TestWorker_PanicBecomesFatalResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	m := mocks.NewMockMetrics(ctrl)

	tracer.EXPECT().Start(gomock.Any(), "compute dependencies").DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Span) { return ctx, span },
	)
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().RecordError(gomock.Any())
	span.EXPECT().End()
	m.EXPECT().CacheLookup("dependencies", false)
	m.EXPECT().Computation("dependencies", "fatal")

	comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		panic("boom")
	}}
	w := workers.NewWorker(comp, cache.NewStore(""), tracer, m, time.Minute, 1)
	start(t, w)

	require.NoError(t, w.Submit(depsItem(3, "foo")))
	res := <-w.Results()

	require.Error(t, res.Err)
	assert.True(t, domain.IsKind(res.Err, domain.KindFatal))
	assert.Contains(t, res.Err.Error(), domain.ErrWorkerPanicked.Error())
	assert.Nil(t, res.Payload)
}

func TestWorker_SubmitFullQueueIsTimeout(t *testing.T) {
	comp := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		return &domain.DependencyReport{}, nil
	}}
	w := workers.NewWorker(comp, cache.NewStore(""), telemetry.NewNoOpTracer(), metrics.Noop{}, time.Minute, 1)

	require.NoError(t, w.Submit(depsItem(1, "foo")))
	err := w.Submit(depsItem(2, "foo"))
	assert.True(t, domain.IsKind(err, domain.KindTimeout))
}

func TestPool_RoutesByKind(t *testing.T) {
	deps := &fakeComputation{fn: func(context.Context, domain.WorkItem) (domain.Fragment, error) {
		return &domain.DependencyReport{}, nil
	}}
	pool := workers.NewPool(newWorker(deps, time.Minute))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.NoError(t, pool.Submit(depsItem(1, "foo")))
	res := <-pool.Results(domain.WorkDependencies)
	assert.Equal(t, domain.WorkDependencies, res.Kind)
	assert.Nil(t, pool.Results(domain.WorkFiles))

	err := pool.Submit(domain.WorkItem{Kind: domain.WorkFiles})
	assert.Error(t, err)

	cancel()
	require.NoError(t, <-done)
}
