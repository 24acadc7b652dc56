// Package ledger holds the flat list of manual paper orders. It is an
// explicitly constructed component owned by the composition root and has
// no interaction with the selection cap.
package ledger

import (
	"context"
	"log"
	"sync"

	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
)

// Store persists the ledger as one flat blob under its own key.
type Store interface {
	SaveOrders(ctx context.Context, orders []model.Order) error
	LoadOrders(ctx context.Context) ([]model.Order, error)
}

// Journal mirrors ledger changes to durable local storage. Optional.
type Journal interface {
	RecordOrder(o model.Order) error
	RecordDeletion(orderID string) error
}

// Ledger is the append-mostly order list, filtered by item at read time.
type Ledger struct {
	mu      sync.RWMutex
	orders  []model.Order
	store   Store
	journal Journal
	prom    *metrics.Metrics
}

// New creates a Ledger. journal may be nil.
func New(store Store, journal Journal, prom *metrics.Metrics) *Ledger {
	return &Ledger{store: store, journal: journal, prom: prom}
}

// Restore loads the persisted ledger; missing or undecodable data yields
// an empty ledger.
func (l *Ledger) Restore(ctx context.Context) {
	orders, err := l.store.LoadOrders(ctx)
	if err != nil {
		log.Printf("[ledger] restore failed, starting empty: %v", err)
		return
	}
	l.mu.Lock()
	l.orders = orders
	l.mu.Unlock()
	log.Printf("[ledger] restored %d orders", len(orders))
}

// Add appends the order and persists the whole list.
func (l *Ledger) Add(ctx context.Context, o model.Order) {
	l.mu.Lock()
	l.orders = append(l.orders, o)
	snapshot := append([]model.Order(nil), l.orders...)
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	if l.journal != nil {
		if err := l.journal.RecordOrder(o); err != nil {
			log.Printf("[ledger] journal record failed for %s: %v", o.ID, err)
		}
	}
}

// Delete removes the order with the given identifier. Reports whether
// anything was removed; deleting twice is a no-op the second time.
func (l *Ledger) Delete(ctx context.Context, orderID string) bool {
	l.mu.Lock()
	idx := -1
	for i := range l.orders {
		if l.orders[i].ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return false
	}
	l.orders = append(l.orders[:idx], l.orders[idx+1:]...)
	snapshot := append([]model.Order(nil), l.orders...)
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	if l.journal != nil {
		if err := l.journal.RecordDeletion(orderID); err != nil {
			log.Printf("[ledger] journal deletion failed for %s: %v", orderID, err)
		}
	}
	return true
}

// OrdersFor returns the orders referencing itemID, in insertion order.
// No cap applies.
func (l *Ledger) OrdersFor(itemID string) []model.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []model.Order
	for i := range l.orders {
		if l.orders[i].ItemID == itemID {
			out = append(out, l.orders[i])
		}
	}
	return out
}

// DeleteAt deletes by offsets into the item-filtered view, mirroring the
// swipe-to-delete gesture over a filtered list.
func (l *Ledger) DeleteAt(ctx context.Context, itemID string, offsets []int) {
	filtered := l.OrdersFor(itemID)
	for _, off := range offsets {
		if off < 0 || off >= len(filtered) {
			continue
		}
		l.Delete(ctx, filtered[off].ID)
	}
}

// All returns a copy of the full ledger.
func (l *Ledger) All() []model.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Order(nil), l.orders...)
}

func (l *Ledger) persist(ctx context.Context, orders []model.Order) {
	if err := l.store.SaveOrders(ctx, orders); err != nil {
		log.Printf("[ledger] persist failed: %v", err)
		if l.prom != nil {
			l.prom.PersistErrors.Inc()
		}
	}
}
