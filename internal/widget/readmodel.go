// Package widget renders a read-only view of the shared selection blobs
// from a separate process. It never writes; it tolerates absent keys,
// undecodable blobs, and partial data by rendering whatever decodes.
package widget

import (
	"context"
	"log/slog"
	"time"

	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
	"fivecoin/internal/selection"
)

// SelectionReader reads the two selection blobs from shared storage.
type SelectionReader interface {
	LoadCoins(ctx context.Context) ([]model.Coin, error)
	LoadPairs(ctx context.Context) ([]model.Pair, error)
}

// Snapshot is one widget render plus the scheduling hint for the host.
type Snapshot struct {
	Items        []model.SelectedItem `json:"-"`
	GeneratedAt  time.Time            `json:"generated_at"`
	RefreshAfter time.Duration        `json:"refresh_after"`
}

// ReadModel polls the shared storage on a fixed interval and rebuilds
// the merged view with the same rules as the main app.
type ReadModel struct {
	reader   SelectionReader
	interval time.Duration
	logger   *slog.Logger
	prom     *metrics.Metrics
}

// New creates a ReadModel. prom may be nil.
func New(reader SelectionReader, interval time.Duration, logger *slog.Logger, prom *metrics.Metrics) *ReadModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadModel{reader: reader, interval: interval, logger: logger, prom: prom}
}

// Snapshot reads both selection keys and merges what decodes. Either key
// failing independently degrades that source to empty.
func (r *ReadModel) Snapshot(ctx context.Context) Snapshot {
	coins, err := r.reader.LoadCoins(ctx)
	if err != nil {
		r.logger.Warn("coin selection unreadable, rendering without it", "err", err)
		coins = nil
	}
	pairs, err := r.reader.LoadPairs(ctx)
	if err != nil {
		r.logger.Warn("pair selection unreadable, rendering without it", "err", err)
		pairs = nil
	}

	if r.prom != nil {
		r.prom.WidgetRefreshes.Inc()
	}
	return Snapshot{
		Items:        selection.Merge(coins, pairs),
		GeneratedAt:  time.Now().UTC(),
		RefreshAfter: r.interval,
	}
}

// Run renders immediately and then on every tick until ctx is cancelled.
func (r *ReadModel) Run(ctx context.Context, render func(Snapshot)) {
	render(r.Snapshot(ctx))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(r.Snapshot(ctx))
		}
	}
}
