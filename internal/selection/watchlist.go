package selection

import (
	"context"
	"sync"
	"time"

	"fivecoin/internal/bus"
	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
)

// MaxSelected is the global selection cap spanning both sources.
const MaxSelected = 5

// Watchlist is the single mutation entry point for both selection
// states. It recomputes the combined count from both live sets at the
// moment of each add, and publishes a fresh merged snapshot after every
// change.
type Watchlist struct {
	mu    sync.Mutex
	Coins *CoinState
	Pairs *PairState

	fan  *bus.FanOut
	prom *metrics.Metrics
}

// NewWatchlist wires the two states to a snapshot fanout.
func NewWatchlist(coins *CoinState, pairs *PairState, fan *bus.FanOut, prom *metrics.Metrics) *Watchlist {
	return &Watchlist{Coins: coins, Pairs: pairs, fan: fan, prom: prom}
}

// Restore loads both persisted selections and publishes the initial
// merged view.
func (w *Watchlist) Restore(ctx context.Context) {
	w.Coins.Restore(ctx)
	w.Pairs.Restore(ctx)
	w.publish()
}

// TotalSelected returns the live combined selection size.
func (w *Watchlist) TotalSelected() int {
	return w.Coins.SelectedCount() + w.Pairs.SelectedCount()
}

// AddCoin adds a coin against the live combined count. Reports whether
// the selection changed.
func (w *Watchlist) AddCoin(ctx context.Context, coin model.Coin) bool {
	w.mu.Lock()
	changed := w.Coins.Add(ctx, coin, w.TotalSelected())
	w.mu.Unlock()
	if changed {
		w.publish()
	}
	return changed
}

// RemoveCoin removes a coin by identifier. Removals are always permitted.
func (w *Watchlist) RemoveCoin(ctx context.Context, id string) bool {
	w.mu.Lock()
	changed := w.Coins.Remove(ctx, id)
	w.mu.Unlock()
	if changed {
		w.publish()
	}
	return changed
}

// AddPair adds a pair against the live combined count. Reports whether
// the selection changed.
func (w *Watchlist) AddPair(ctx context.Context, pair model.Pair) bool {
	w.mu.Lock()
	changed := w.Pairs.Add(ctx, pair, w.TotalSelected())
	w.mu.Unlock()
	if changed {
		w.publish()
	}
	return changed
}

// RemovePair removes a pair by identifier.
func (w *Watchlist) RemovePair(ctx context.Context, id string) bool {
	w.mu.Lock()
	changed := w.Pairs.Remove(ctx, id)
	w.mu.Unlock()
	if changed {
		w.publish()
	}
	return changed
}

// Merged recomputes the unified selected-items list from both live sets.
func (w *Watchlist) Merged() []model.SelectedItem {
	return Merge(w.Coins.Selected(), w.Pairs.Selected())
}

func (w *Watchlist) publish() {
	items := w.Merged()
	if w.prom != nil {
		w.prom.SelectedItems.Set(float64(len(items)))
	}
	if w.fan != nil {
		w.fan.Publish(model.Snapshot{Items: items, GeneratedAt: time.Now().UTC()})
	}
}
