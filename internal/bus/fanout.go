// Package bus broadcasts merged-view snapshots to in-process subscribers.
package bus

import (
	"log"
	"sync"

	"fivecoin/internal/model"
)

// FanOut broadcasts snapshots to N subscriber channels. If a subscriber
// channel is full the snapshot is dropped for that subscriber so a slow
// consumer cannot block a selection mutation.
type FanOut struct {
	mu      sync.RWMutex
	outputs []chan model.Snapshot
	bufSize int

	// OnDrop is called when a snapshot is dropped for a subscriber.
	OnDrop func(subscriberIdx int)
}

// New creates a FanOut with the given buffer size for subscriber channels.
func New(outputBufferSize int) *FanOut {
	return &FanOut{bufSize: outputBufferSize}
}

// Subscribe creates and returns a new subscriber channel.
func (f *FanOut) Subscribe() <-chan model.Snapshot {
	ch := make(chan model.Snapshot, f.bufSize)
	f.mu.Lock()
	f.outputs = append(f.outputs, ch)
	f.mu.Unlock()
	return ch
}

// Publish sends snap to every subscriber without blocking.
func (f *FanOut) Publish(snap model.Snapshot) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i, ch := range f.outputs {
		select {
		case ch <- snap:
		default:
			if f.OnDrop != nil {
				f.OnDrop(i)
			} else {
				log.Printf("[bus] subscriber %d full, dropping snapshot of %d items", i, len(snap.Items))
			}
		}
	}
}

// Close closes all subscriber channels.
func (f *FanOut) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.outputs {
		close(ch)
	}
	f.outputs = nil
}
