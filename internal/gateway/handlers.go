package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"fivecoin/internal/ledger"
	"fivecoin/internal/model"
	"fivecoin/internal/selection"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes registers the WebSocket endpoint and the REST surface
// for catalog search, selection mutation, and the order ledger. appCtx
// outlives individual requests; debounced fetches run on it after the
// request that scheduled them has already returned.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, wl *selection.Watchlist, led *ledger.Ledger, deb *selection.Debouncer, appCtx context.Context) {
	// WebSocket: pushed merged-view snapshots
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWS(conn)
	})

	// REST: current merged view
	mux.HandleFunc("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		items := wl.Merged()
		views := make([]itemView, len(items))
		for i, item := range items {
			views[i] = viewOf(item)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": views,
			"total": wl.TotalSelected(),
			"cap":   selection.MaxSelected,
		})
	})

	// REST: filtered coin catalog (pure read over the last fetch)
	mux.HandleFunc("/api/coins", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, wl.Coins.FilteredCatalog(r.URL.Query().Get("query")))
	})

	// REST: filtered pair catalog
	mux.HandleFunc("/api/pairs", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, wl.Pairs.FilteredCatalog(r.URL.Query().Get("query")))
	})

	// REST: debounced catalog refresh, called on every keystroke.
	// Superseded queries are discarded before they hit the provider.
	mux.HandleFunc("/api/catalog/refresh", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
			return
		}
		source := r.URL.Query().Get("source")
		query := r.URL.Query().Get("query")
		switch source {
		case "coins":
			deb.Schedule(query, func(q string) {
				wl.Coins.FetchCatalog(appCtx, q)
			})
		case "pairs":
			deb.Schedule(query, func(q string) {
				wl.Pairs.FetchCatalog(appCtx, q)
			})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source must be coins or pairs"})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	})

	// REST: selection mutation. Add resolves the instrument from the
	// current catalog; a cap or duplicate rejection is not an error,
	// the item just does not appear.
	mux.HandleFunc("/api/selection/coins", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		handleSelection(w, r,
			func(id string) bool {
				for _, c := range wl.Coins.Catalog() {
					if c.ID == id {
						return wl.AddCoin(r.Context(), c)
					}
				}
				return false
			},
			func(id string) bool { return wl.RemoveCoin(r.Context(), id) },
		)
	})

	mux.HandleFunc("/api/selection/pairs", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		handleSelection(w, r,
			func(id string) bool {
				for _, p := range wl.Pairs.Catalog() {
					if p.Identifier() == id {
						return wl.AddPair(r.Context(), p)
					}
				}
				return false
			},
			func(id string) bool { return wl.RemovePair(r.Context(), id) },
		)
	})

	// REST: order ledger
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			item := r.URL.Query().Get("item")
			if item == "" {
				writeJSON(w, http.StatusOK, led.All())
				return
			}
			writeJSON(w, http.StatusOK, led.OrdersFor(item))
		case http.MethodPost:
			var req struct {
				ItemID string  `json:"item_id"`
				Price  float64 `json:"price"`
				Note   *string `json:"note"`
				Side   string  `json:"side"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
				return
			}
			side := model.Side(strings.ToLower(req.Side))
			if side != model.SideBuy && side != model.SideSell {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "side must be buy or sell"})
				return
			}
			order := model.NewOrder(req.ItemID, req.Price, req.Note, side)
			led.Add(r.Context(), order)
			writeJSON(w, http.StatusCreated, order)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "unsupported method"})
		}
	})

	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodDelete {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "DELETE only"})
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/orders/")
		if led.Delete(r.Context(), id) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		} else {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown order"})
		}
	})
}

// handleSelection dispatches add/remove for one selection source.
// Body: {"id": "..."} for POST; ?id= for DELETE.
func handleSelection(w http.ResponseWriter, r *http.Request, add, remove func(id string) bool) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"changed": add(req.ID)})
	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"changed": remove(id)})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "unsupported method"})
	}
}
