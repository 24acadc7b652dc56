// Package gateway pushes merged watchlist snapshots to UI clients over
// WebSocket and exposes the REST surface for selection and order
// mutations.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
)

// itemView is the client-facing projection of one selected item.
type itemView struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"` // "coin" | "pair"
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	LogoURL  *string  `json:"logo_url,omitempty"`
	PriceUSD *float64 `json:"price_usd,omitempty"`
}

func viewOf(item model.SelectedItem) itemView {
	v := itemView{ID: item.ID, Name: item.Name(), Symbol: item.Symbol()}
	switch item.Kind {
	case model.KindCoin:
		v.Kind = "coin"
	case model.KindPair:
		v.Kind = "pair"
	}
	if url, ok := item.LogoURL(); ok {
		v.LogoURL = &url
	}
	if price, ok := item.PriceUSD(); ok {
		v.PriceUSD = &price
	}
	return v
}

// Hub manages WebSocket clients and fans merged snapshots out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  []byte

	prom *metrics.Metrics
}

// NewHub creates an empty Hub. prom may be nil.
func NewHub(prom *metrics.Metrics) *Hub {
	return &Hub{clients: make(map[*Client]bool), prom: prom}
}

// Run consumes merged snapshots until ctx is cancelled or the channel
// closes, broadcasting each one to every connected client.
func (h *Hub) Run(ctx context.Context, snaps <-chan model.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) broadcast(snap model.Snapshot) {
	views := make([]itemView, len(snap.Items))
	for i, item := range snap.Items {
		views[i] = viewOf(item)
	}
	envelope, err := json.Marshal(map[string]interface{}{
		"type":  "watchlist",
		"items": views,
		"ts":    snap.GeneratedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("[gateway] envelope marshal error: %v", err)
		return
	}

	h.mu.Lock()
	h.latest = envelope
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			// slow client, drop this frame for it
		}
	}
	h.mu.Unlock()
}

// HandleWS registers a new WebSocket peer and starts its pumps. The
// latest snapshot is replayed immediately so a fresh client does not
// wait for the next mutation.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	client := &Client{conn: conn, send: make(chan []byte, 16), hub: h}

	h.mu.Lock()
	h.clients[client] = true
	if h.latest != nil {
		client.send <- h.latest
	}
	n := len(h.clients)
	h.mu.Unlock()

	if h.prom != nil {
		h.prom.WSClients.Set(float64(n))
	}
	log.Printf("[gateway] client connected (%d total)", n)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if h.prom != nil {
		h.prom.WSClients.Set(float64(n))
	}
}
