// The widget process renders a read-only snapshot of the shared
// selection on a fixed schedule. It holds no state of its own and never
// writes to the shared storage: everything it shows must be decodable
// from the blobs alone.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fivecoin/config"
	"fivecoin/internal/logger"
	"fivecoin/internal/metrics"
	"fivecoin/internal/widget"

	redisstore "fivecoin/internal/store/redis"
)

// renderItem is the rendered line for one selected instrument.
type renderItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	LogoURL  *string  `json:"logo_url,omitempty"`
	PriceUSD *float64 `json:"price_usd,omitempty"`
}

func main() {
	cfg := config.Load()
	slogger := logger.Init("widget", logger.ParseLevel(cfg.LogLevel))

	registry := prometheus.NewRegistry()
	prom := metrics.NewMetrics(registry)
	health := metrics.NewHealthStatus()
	metrics.NewServer(cfg.WidgetMetricsAddr, health, registry).Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Read-only: an unreachable store renders empty rather than failing.
	store := redisstore.NewReadOnly(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer store.Close()
	health.StartLivenessChecker(ctx, store.Client(), 30*time.Second)

	rm := widget.New(store, cfg.WidgetRefresh, slogger, prom)

	enc := json.NewEncoder(os.Stdout)
	rm.Run(ctx, func(snap widget.Snapshot) {
		items := make([]renderItem, len(snap.Items))
		for i, it := range snap.Items {
			items[i] = renderItem{ID: it.ID, Name: it.Name(), Symbol: it.Symbol()}
			if url, ok := it.LogoURL(); ok {
				items[i].LogoURL = &url
			}
			if price, ok := it.PriceUSD(); ok {
				items[i].PriceUSD = &price
			}
		}
		enc.Encode(struct {
			Items        []renderItem `json:"items"`
			GeneratedAt  string       `json:"generated_at"`
			RefreshAfter float64      `json:"refresh_after_seconds"`
		}{
			Items:        items,
			GeneratedAt:  snap.GeneratedAt.Format(time.RFC3339),
			RefreshAfter: snap.RefreshAfter.Seconds(),
		})
	})

	slogger.Info("widget stopped")
}
