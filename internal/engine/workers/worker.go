// Package workers runs the long-lived background computations that feed a plan.
// Every worker consumes WorkItems, answers from the cache when it can, and
// coalesces concurrent requests for one signature into a single computation.
package workers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Computation is the work one worker category performs on a cache miss.
type Computation interface {
	Kind() domain.WorkKind
	Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error)
}

// Result is the typed answer of a worker. Exactly one of Payload and Err is set.
type Result struct {
	Kind        domain.WorkKind
	Correlation uint64
	Slot        string
	Signature   domain.Signature
	Payload     domain.Fragment
	Err         error
	Cached      bool
	Shared      bool
}

// Worker runs one Computation behind a request channel and a result channel.
type Worker struct {
	comp    Computation
	cache   ports.CacheStore
	tracer  ports.Tracer
	metrics ports.Metrics
	timeout time.Duration

	requests chan domain.WorkItem
	results  chan Result
	flights  singleflight.Group
}

// NewWorker creates a worker. Computations exceeding timeout fail with a Timeout error.
func NewWorker(
	comp Computation,
	cache ports.CacheStore,
	tracer ports.Tracer,
	metrics ports.Metrics,
	timeout time.Duration,
	queueSize int,
) *Worker {
	return &Worker{
		comp:     comp,
		cache:    cache,
		tracer:   tracer,
		metrics:  metrics,
		timeout:  timeout,
		requests: make(chan domain.WorkItem, queueSize),
		results:  make(chan Result, queueSize),
	}
}

// Kind returns the worker category.
func (w *Worker) Kind() domain.WorkKind {
	return w.comp.Kind()
}

// Submit enqueues item without waiting for its result. A full queue is reported
// as a Timeout so the caller can retry.
func (w *Worker) Submit(item domain.WorkItem) error {
	select {
	case w.requests <- item:
		return nil
	default:
		full := zerr.With(domain.ErrComputationTimeout, "worker", w.Kind().String())
		return domain.Classify(domain.KindTimeout, zerr.With(full, "reason", "queue full"))
	}
}

// Enqueue blocks until item is accepted or ctx is done.
func (w *Worker) Enqueue(ctx context.Context, item domain.WorkItem) error {
	select {
	case w.requests <- item:
		return nil
	case <-ctx.Done():
		return domain.Classify(domain.KindCancelled, ctx.Err())
	}
}

// Results delivers one Result per submitted item.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Run handles requests until ctx is done and in-flight requests have finished.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case item := <-w.requests:
			wg.Go(func() {
				w.handle(ctx, item)
			})
		}
	}
}

func (w *Worker) handle(ctx context.Context, item domain.WorkItem) {
	kind := w.Kind().String()
	sig := item.Signature()
	res := Result{
		Kind:        w.Kind(),
		Correlation: item.Correlation,
		Slot:        item.SlotKey(),
		Signature:   sig,
	}

	if entry, ok := w.cache.Get(sig); ok {
		w.metrics.CacheLookup(kind, true)
		res.Payload = entry.Payload
		res.Cached = true
		w.deliver(ctx, res)
		return
	}
	w.metrics.CacheLookup(kind, false)

	flight := w.flights.DoChan(string(sig), func() (any, error) {
		// A flight that finished just before this one started may have filled the cache.
		if entry, ok := w.cache.Get(sig); ok {
			return entry.Payload, nil
		}
		payload, err := w.compute(ctx, item)
		if err != nil {
			w.metrics.Computation(kind, domain.KindOf(err).String())
			return nil, err
		}
		w.metrics.Computation(kind, "ok")
		w.cache.Put(sig, payload)
		return payload, nil
	})

	var out singleflight.Result
	select {
	case out = <-flight:
	case <-ctx.Done():
		return
	}

	if out.Shared {
		w.metrics.Coalesced(kind)
	}
	res.Shared = out.Shared
	res.Err = out.Err
	if out.Err == nil {
		res.Payload, _ = out.Val.(domain.Fragment)
	}
	w.deliver(ctx, res)
}

func (w *Worker) deliver(ctx context.Context, res Result) {
	select {
	case w.results <- res:
	case <-ctx.Done():
	}
}

type outcome struct {
	payload domain.Fragment
	err     error
}

// compute runs the computation under the worker deadline. A panic becomes a
// Fatal result and a computation that ignores its context is abandoned.
func (w *Worker) compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	kind := w.Kind().String()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ctx, span := w.tracer.Start(ctx, "compute "+kind)
	defer span.End()
	span.SetAttribute("work.kind", kind)
	span.SetAttribute("work.action", item.Action.String())
	span.SetAttribute("work.targets", strings.Join(domain.TargetNames(item.Targets), ","))
	span.SetAttribute("work.correlation", item.Correlation)

	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() { done <- out }()
		defer zerr.Defer(func(err error) {
			panicked := zerr.With(zerr.Wrap(err, domain.ErrWorkerPanicked.Error()), "worker", kind)
			out = outcome{err: domain.Classify(domain.KindFatal, panicked)}
		})
		out.payload, out.err = w.comp.Compute(ctx, item)
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		default:
			out = outcome{err: ctx.Err()}
		}
	}

	if out.err != nil {
		out.err = classifyDeadline(ctx, out.err, kind)
		span.RecordError(out.err)
		return nil, out.err
	}
	return out.payload, nil
}

// classifyDeadline tags unclassified context errors as Timeout or Cancelled.
func classifyDeadline(ctx context.Context, err error, kind string) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		timeout := zerr.With(zerr.Wrap(err, domain.ErrComputationTimeout.Error()), "worker", kind)
		return domain.Classify(domain.KindTimeout, timeout)
	case errors.Is(err, context.Canceled):
		return domain.Classify(domain.KindCancelled, zerr.With(err, "worker", kind))
	default:
		return err
	}
}
