package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fivecoin/config"
	"fivecoin/internal/bus"
	"fivecoin/internal/gateway"
	"fivecoin/internal/ledger"
	"fivecoin/internal/metrics"
	"fivecoin/internal/provider"
	"fivecoin/internal/selection"
	redisstore "fivecoin/internal/store/redis"
	sqlitestore "fivecoin/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[app] starting...")

	cfg := config.Load()

	// ---- Metrics & health ----
	registry := prometheus.NewRegistry()
	prom := metrics.NewMetrics(registry)
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health, registry)
	metricsSrv.Start()

	// ---- Graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Shared storage ----
	store, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatalf("[app] redis init failed: %v", err)
	}
	defer store.Close()
	health.SetRedisConnected(true)
	health.StartLivenessChecker(ctx, store.Client(), 30*time.Second)

	// ---- Order journal (durable local mirror, optional) ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	var journal ledger.Journal
	if j, err := sqlitestore.NewJournal(cfg.SQLitePath); err != nil {
		log.Printf("[app] WARNING: order journal unavailable: %v (continuing without it)", err)
	} else {
		journal = j
		defer j.Close()
		health.SetSQLiteOK(true)
	}

	// ---- Ledger ----
	led := ledger.New(store, journal, prom)
	led.Restore(ctx)

	// ---- Providers ----
	coinClient := provider.NewCoinClient(cfg.CoinGeckoURL, cfg.Currency, cfg.FetchTimeout)
	pairClient := provider.NewPairClient(cfg.DexScreenerURL, cfg.FetchTimeout)

	// ---- Selection states, merger fanout, watchlist ----
	fan := bus.New(16)
	coins := selection.NewCoinState(coinClient, store, cfg.CatalogPages, prom)
	pairs := selection.NewPairState(pairClient, store, prom)
	wl := selection.NewWatchlist(coins, pairs, fan, prom)

	// Gateway subscribes before the restore publish so the first
	// snapshot is not lost.
	hub := gateway.NewHub(prom)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx, fan.Subscribe())
	}()

	wl.Restore(ctx)

	// ---- Initial catalog fetches, both legs concurrent ----
	var fetchWG sync.WaitGroup
	fetchWG.Add(2)
	go func() {
		defer fetchWG.Done()
		coins.FetchCatalog(ctx, "")
	}()
	go func() {
		defer fetchWG.Done()
		pairs.FetchCatalog(ctx, cfg.DefaultPairQuery)
	}()
	go func() {
		fetchWG.Wait()
		health.SetLastFetchTime(time.Now())
		log.Printf("[app] initial catalogs: %d coins, %d pairs",
			len(coins.Catalog()), len(pairs.Catalog()))
	}()

	// ---- Gateway HTTP server ----
	deb := selection.NewDebouncer(cfg.SearchDebounce)
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, wl, led, deb, ctx)

	srv := &http.Server{Addr: cfg.GatewayAddr, Handler: mux}
	go func() {
		log.Printf("[app] gateway serving on %s", cfg.GatewayAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[app] gateway server error: %v", err)
		}
	}()

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[app] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	fan.Close()
	wg.Wait()
	log.Println("[app] bye")
}
