// Package watcher reports changes of the local package database.
package watcher

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Debouncer turns a burst of database file events into one callback carrying
// the sorted set of touched paths. The callback runs once the burst has been
// quiet for the window.
type Debouncer struct {
	window time.Duration
	notify func(paths []string)

	mu      sync.Mutex
	touched map[string]struct{}
	epoch   uint64
	closed  bool
}

// NewDebouncer creates a Debouncer calling notify after window of quiet.
func NewDebouncer(window time.Duration, notify func(paths []string)) *Debouncer {
	return &Debouncer{
		window:  window,
		notify:  notify,
		touched: map[string]struct{}{},
	}
}

// Add records path and restarts the quiet window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.touched[path] = struct{}{}
	d.epoch++
	epoch := d.epoch
	time.AfterFunc(d.window, func() { d.settle(epoch) })
}

// settle delivers the burst unless a later Add or Stop superseded epoch.
func (d *Debouncer) settle(epoch uint64) {
	d.mu.Lock()
	if d.closed || epoch != d.epoch || len(d.touched) == 0 {
		d.mu.Unlock()
		return
	}
	paths := slices.Sorted(maps.Keys(d.touched))
	clear(d.touched)
	d.mu.Unlock()

	if d.notify != nil {
		d.notify(paths)
	}
}

// Stop discards the current burst and ignores later Adds.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.epoch++
	clear(d.touched)
}
