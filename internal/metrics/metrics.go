package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the watchlist service.
type Metrics struct {
	CatalogFetches *prometheus.CounterVec // labels: source, result
	SelectionAdds  *prometheus.CounterVec // labels: source
	SelectionDrops *prometheus.CounterVec // labels: source

	CapRejections       prometheus.Counter
	DuplicateRejections prometheus.Counter
	PersistErrors       prometheus.Counter
	SelectedItems       prometheus.Gauge

	WidgetRefreshes prometheus.Counter
	WSClients       prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics on the given
// registry. Pass a fresh registry in tests to avoid duplicate
// registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CatalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_catalog_fetches_total",
			Help: "Catalog fetches by source and result (ok|empty|error)",
		}, []string{"source", "result"}),
		SelectionAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_selection_adds_total",
			Help: "Instruments added to the selection by source",
		}, []string{"source"}),
		SelectionDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_selection_removes_total",
			Help: "Instruments removed from the selection by source",
		}, []string{"source"}),
		CapRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_cap_rejections_total",
			Help: "Adds rejected because the 5-item cap was reached",
		}),
		DuplicateRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_duplicate_rejections_total",
			Help: "Adds rejected because the identifier was already selected",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_persist_errors_total",
			Help: "Selection or ledger writes that failed",
		}),
		SelectedItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "watchlist_selected_items",
			Help: "Current combined selection size across both sources",
		}),
		WidgetRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "widget_refreshes_total",
			Help: "Widget snapshot renders",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_ws_clients",
			Help: "Connected WebSocket clients",
		}),
	}
	reg.MustRegister(
		m.CatalogFetches, m.SelectionAdds, m.SelectionDrops,
		m.CapRejections, m.DuplicateRejections, m.PersistErrors,
		m.SelectedItems, m.WidgetRefreshes, m.WSClients,
	)
	return m
}

// HealthStatus represents the service health.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt      time.Time
	RedisConnected bool
	RedisLatencyMs float64
	SQLiteOK       bool
	LastFetchTime  time.Time
	LastCheckAt    time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastFetchTime(t time.Time) {
	h.mu.Lock()
	h.LastFetchTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic Redis checks until ctx is cancelled.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rdb == nil {
					continue
				}
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				h.CheckRedis(probeCtx, rdb)
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected {
		status = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	lastFetch := ""
	if !h.LastFetchTime.IsZero() {
		lastFetch = h.LastFetchTime.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	json.NewEncoder(w).Encode(struct {
		Status         string  `json:"status"`
		Uptime         string  `json:"uptime"`
		RedisConnected bool    `json:"redis_connected"`
		RedisLatencyMs float64 `json:"redis_latency_ms"`
		SQLiteOK       bool    `json:"sqlite_ok"`
		LastFetch      string  `json:"last_fetch"`
	}{
		Status:         status,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected: h.RedisConnected,
		RedisLatencyMs: h.RedisLatencyMs,
		SQLiteOK:       h.SQLiteOK,
		LastFetch:      lastFetch,
	})
}

// Server exposes /metrics and /healthz on its own listener.
type Server struct {
	addr   string
	health *HealthStatus
	reg    *prometheus.Registry
}

// NewServer creates a metrics server bound to addr.
func NewServer(addr string, health *HealthStatus, reg *prometheus.Registry) *Server {
	return &Server{addr: addr, health: health, reg: reg}
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", s.health)

	go func() {
		log.Printf("[metrics] serving on %s", s.addr)
		if err := http.ListenAndServe(s.addr, mux); err != nil {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}
