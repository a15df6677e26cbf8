package workers

import (
	"context"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Pool owns one Worker per work kind.
type Pool struct {
	workers map[domain.WorkKind]*Worker
	order   []domain.WorkKind
}

// NewPool groups workers by kind. A later worker replaces an earlier one of the same kind.
func NewPool(workers ...*Worker) *Pool {
	p := &Pool{workers: make(map[domain.WorkKind]*Worker, len(workers))}
	for _, w := range workers {
		if _, dup := p.workers[w.Kind()]; !dup {
			p.order = append(p.order, w.Kind())
		}
		p.workers[w.Kind()] = w
	}
	return p
}

// Run runs every worker until ctx is done.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range p.order {
		w := p.workers[kind]
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

// Submit hands item to the worker of its kind.
func (p *Pool) Submit(item domain.WorkItem) error {
	w, ok := p.workers[item.Kind]
	if !ok {
		return zerr.With(domain.ErrUnknownWorkKind, "kind", item.Kind.String())
	}
	return w.Submit(item)
}

// Worker returns the worker of kind.
func (p *Pool) Worker(kind domain.WorkKind) (*Worker, bool) {
	w, ok := p.workers[kind]
	return w, ok
}

// Results returns the result channel of kind, or nil when no such worker exists.
func (p *Pool) Results(kind domain.WorkKind) <-chan Result {
	if w, ok := p.workers[kind]; ok {
		return w.Results()
	}
	return nil
}

// Kinds returns the registered kinds in registration order.
func (p *Pool) Kinds() []domain.WorkKind {
	return append([]domain.WorkKind(nil), p.order...)
}

// Enqueue hands item to the worker of its kind, waiting for queue space.
func (p *Pool) Enqueue(ctx context.Context, item domain.WorkItem) error {
	w, ok := p.workers[item.Kind]
	if !ok {
		return zerr.With(domain.ErrUnknownWorkKind, "kind", item.Kind.String())
	}
	return w.Enqueue(ctx, item)
}
