// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// Prometheus records engine counters in a private registry.
type Prometheus struct {
	registry *prometheus.Registry
	textfile string

	cacheLookups *prometheus.CounterVec
	computations *prometheus.CounterVec
	coalesced    *prometheus.CounterVec
	stale        *prometheus.CounterVec
	sessions     *prometheus.CounterVec
}

// NewPrometheus creates collectors. A non-empty textfile enables Flush.
func NewPrometheus(textfile string) *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		textfile: textfile,
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgdeck",
			Name:      "cache_lookups_total",
			Help:      "Fragment cache lookups by worker and result.",
		}, []string{"worker", "result"}),
		computations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgdeck",
			Name:      "worker_computations_total",
			Help:      "Worker computations by worker and outcome.",
		}, []string{"worker", "outcome"}),
		coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgdeck",
			Name:      "worker_coalesced_requests_total",
			Help:      "Requests attached to an in-flight computation.",
		}, []string{"worker"}),
		stale: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgdeck",
			Name:      "dispatcher_stale_results_total",
			Help:      "Worker results discarded because a newer request was issued.",
		}, []string{"worker"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgdeck",
			Name:      "execution_sessions_total",
			Help:      "Finished execution sessions by terminal state.",
		}, []string{"state"}),
	}
}

// CacheLookup counts a cache hit or miss.
func (p *Prometheus) CacheLookup(kind string, hit bool) {
	p.cacheLookups.WithLabelValues(kind, hitLabel(hit)).Inc()
}

// Computation counts a finished computation.
func (p *Prometheus) Computation(kind, outcome string) {
	p.computations.WithLabelValues(kind, outcome).Inc()
}

// Coalesced counts a request that joined an in-flight computation.
func (p *Prometheus) Coalesced(kind string) {
	p.coalesced.WithLabelValues(kind).Inc()
}

// StaleDiscarded counts a discarded result.
func (p *Prometheus) StaleDiscarded(kind string) {
	p.stale.WithLabelValues(kind).Inc()
}

// SessionFinished counts a terminal session.
func (p *Prometheus) SessionFinished(state string) {
	p.sessions.WithLabelValues(state).Inc()
}

// Gatherer exposes the registry.
func (p *Prometheus) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Flush writes the registry in text format to the configured file.
func (p *Prometheus) Flush() error {
	if p.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.textfile), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create metrics directory"), "path", p.textfile)
	}
	if err := prometheus.WriteToTextfile(p.textfile, p.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics"), "path", p.textfile)
	}
	return nil
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// Noop discards every metric.
type Noop struct{}

// CacheLookup does nothing.
func (Noop) CacheLookup(string, bool) {}

// Computation does nothing.
func (Noop) Computation(string, string) {}

// Coalesced does nothing.
func (Noop) Coalesced(string) {}

// StaleDiscarded does nothing.
func (Noop) StaleDiscarded(string) {}

// SessionFinished does nothing.
func (Noop) SessionFinished(string) {}

// Flush does nothing.
func (Noop) Flush() error { return nil }

