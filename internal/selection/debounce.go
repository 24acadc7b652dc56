package selection

import (
	"sync"
	"time"
)

// Debouncer suppresses redundant catalog fetches while a search query is
// still being typed: each call schedules the fetch after the delay, and
// any newer call silently discards the older one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	gen   uint64
}

// NewDebouncer creates a Debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule runs fetch(query) after the delay unless a newer Schedule
// call supersedes it first.
func (d *Debouncer) Schedule(query string, fetch func(query string)) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		live := gen == d.gen
		d.mu.Unlock()
		if live {
			fetch(query)
		}
	})
}
