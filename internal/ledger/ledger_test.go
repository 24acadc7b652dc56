package ledger

import (
	"context"
	"sync"
	"testing"

	"fivecoin/internal/model"
)

type memOrderStore struct {
	mu     sync.Mutex
	orders []model.Order
}

func (m *memOrderStore) SaveOrders(_ context.Context, orders []model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append([]model.Order(nil), orders...)
	return nil
}

func (m *memOrderStore) LoadOrders(_ context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Order(nil), m.orders...), nil
}

func TestLedger_AddAndFilterByItem(t *testing.T) {
	ctx := context.Background()
	led := New(&memOrderStore{}, nil, nil)

	o1 := model.NewOrder("bitcoin", 67000, nil, model.SideBuy)
	o2 := model.NewOrder("ethereum", 3500, nil, model.SideSell)
	o3 := model.NewOrder("bitcoin", 68000, nil, model.SideSell)
	led.Add(ctx, o1)
	led.Add(ctx, o2)
	led.Add(ctx, o3)

	got := led.OrdersFor("bitcoin")
	if len(got) != 2 {
		t.Fatalf("expected 2 bitcoin orders, got %d", len(got))
	}
	// Insertion order preserved.
	if got[0].ID != o1.ID || got[1].ID != o3.ID {
		t.Error("orders not in insertion order")
	}
	if len(led.OrdersFor("unknown")) != 0 {
		t.Error("unknown item must yield no orders")
	}
}

func TestLedger_DeleteTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	led := New(&memOrderStore{}, nil, nil)

	o := model.NewOrder("bitcoin", 67000, nil, model.SideBuy)
	led.Add(ctx, o)

	if !led.Delete(ctx, o.ID) {
		t.Fatal("first delete should succeed")
	}
	if led.Delete(ctx, o.ID) {
		t.Error("second delete must be a no-op")
	}
	if len(led.All()) != 0 {
		t.Error("expected empty ledger")
	}
}

func TestLedger_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memOrderStore{}

	led := New(store, nil, nil)
	note := "paper entry"
	led.Add(ctx, model.NewOrder("bitcoin", 67000, &note, model.SideBuy))
	led.Add(ctx, model.NewOrder("0xabc", 0.0042, nil, model.SideSell))

	restored := New(store, nil, nil)
	restored.Restore(ctx)

	got := restored.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 restored orders, got %d", len(got))
	}
	if got[0].ItemID != "bitcoin" || got[1].ItemID != "0xabc" {
		t.Errorf("restored order mismatch: %+v", got)
	}
	if got[0].Note == nil || *got[0].Note != note {
		t.Error("note lost in round-trip")
	}
}

func TestLedger_DeleteAtOffsetsWithinItemView(t *testing.T) {
	ctx := context.Background()
	led := New(&memOrderStore{}, nil, nil)

	o1 := model.NewOrder("bitcoin", 1, nil, model.SideBuy)
	o2 := model.NewOrder("ethereum", 2, nil, model.SideBuy)
	o3 := model.NewOrder("bitcoin", 3, nil, model.SideSell)
	led.Add(ctx, o1)
	led.Add(ctx, o2)
	led.Add(ctx, o3)

	// Offset 1 within the bitcoin view is o3, not o2.
	led.DeleteAt(ctx, "bitcoin", []int{1})

	if len(led.OrdersFor("bitcoin")) != 1 {
		t.Fatal("expected one bitcoin order left")
	}
	if len(led.OrdersFor("ethereum")) != 1 {
		t.Error("ethereum order must be untouched")
	}
	if led.OrdersFor("bitcoin")[0].ID != o1.ID {
		t.Error("wrong bitcoin order deleted")
	}
}
