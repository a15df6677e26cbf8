package ports

// Metrics records engine counters.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	CacheLookup(kind string, hit bool)
	Computation(kind string, outcome string)
	Coalesced(kind string)
	StaleDiscarded(kind string)
	SessionFinished(state string)

	// Flush writes the collected metrics to their sink, if any.
	Flush() error
}
