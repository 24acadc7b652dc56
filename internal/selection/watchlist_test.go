package selection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fivecoin/internal/bus"
	"fivecoin/internal/model"
)

func newTestWatchlist() (*Watchlist, *bus.FanOut) {
	fan := bus.New(32)
	coins := NewCoinState(stubCoinProvider{}, &memStore{}, 1, nil)
	pairs := NewPairState(stubPairProvider{}, &memStore{}, nil)
	return NewWatchlist(coins, pairs, fan, nil), fan
}

func TestWatchlist_EmptyStartup(t *testing.T) {
	wl, _ := newTestWatchlist()
	wl.Restore(context.Background())

	if wl.TotalSelected() != 0 {
		t.Errorf("expected empty selections, got %d", wl.TotalSelected())
	}
	if got := wl.Merged(); len(got) != 0 {
		t.Errorf("expected empty merged list, got %d items", len(got))
	}
}

func TestWatchlist_GlobalCapSpansBothSources(t *testing.T) {
	ctx := context.Background()
	wl, _ := newTestWatchlist()

	for i := 0; i < 3; i++ {
		if !wl.AddCoin(ctx, coin(fmt.Sprintf("c%d", i))) {
			t.Fatalf("coin %d should fit", i)
		}
	}
	for i := 0; i < 2; i++ {
		if !wl.AddPair(ctx, pair(fmt.Sprintf("0x%d", i))) {
			t.Fatalf("pair %d should fit", i)
		}
	}
	if wl.TotalSelected() != MaxSelected {
		t.Fatalf("expected %d selected, got %d", MaxSelected, wl.TotalSelected())
	}

	// Full: neither a new coin nor a new pair fits.
	if wl.AddCoin(ctx, coin("c9")) {
		t.Error("6th coin must be rejected")
	}
	if wl.AddPair(ctx, pair("0x9")) {
		t.Error("6th pair must be rejected")
	}
	if wl.TotalSelected() != MaxSelected {
		t.Errorf("selection changed despite cap, got %d", wl.TotalSelected())
	}

	// Removing one coin frees a slot for a pair.
	if !wl.RemoveCoin(ctx, "c0") {
		t.Fatal("remove should succeed")
	}
	if !wl.AddPair(ctx, pair("0x9")) {
		t.Error("pair should fit after freeing a slot")
	}
}

func TestWatchlist_CapInvariantUnderMixedSequences(t *testing.T) {
	ctx := context.Background()
	wl, _ := newTestWatchlist()

	check := func(step string) {
		t.Helper()
		if total := wl.TotalSelected(); total > MaxSelected {
			t.Fatalf("invariant violated after %s: total=%d", step, total)
		}
	}

	for i := 0; i < 10; i++ {
		wl.AddCoin(ctx, coin(fmt.Sprintf("c%d", i)))
		check(fmt.Sprintf("add coin %d", i))
		wl.AddPair(ctx, pair(fmt.Sprintf("0x%d", i)))
		check(fmt.Sprintf("add pair %d", i))
		if i%3 == 0 {
			wl.RemoveCoin(ctx, fmt.Sprintf("c%d", i/3))
			check("remove coin")
		}
	}
}

func TestWatchlist_MergedOrderIsCoinsThenPairs(t *testing.T) {
	ctx := context.Background()
	wl, _ := newTestWatchlist()

	wl.AddCoin(ctx, coin("A"))
	wl.AddCoin(ctx, coin("B"))
	wl.AddPair(ctx, pair("C"))

	ids := func() []string {
		items := wl.Merged()
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.ID
		}
		return out
	}

	got := ids()
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// Removal keeps the survivors' relative order.
	wl.RemoveCoin(ctx, "A")
	got = ids()
	want = []string{"B", "C"}
	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Fatalf("expected %v after removal, got %v", want, got)
	}
}

func TestWatchlist_PublishesSnapshotOnChange(t *testing.T) {
	ctx := context.Background()
	wl, fan := newTestWatchlist()
	sub := fan.Subscribe()

	wl.AddCoin(ctx, coin("A"))

	select {
	case snap := <-sub:
		if len(snap.Items) != 1 || snap.Items[0].ID != "A" {
			t.Errorf("unexpected snapshot: %+v", snap.Items)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	// A rejected add publishes nothing.
	wl.AddCoin(ctx, coin("A"))
	select {
	case snap := <-sub:
		t.Fatalf("no-op add must not publish, got %d items", len(snap.Items))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMerge_CrossVariantIdentifiersDoNotCollide(t *testing.T) {
	// A coin and a pair may share an identifier string; they live in
	// separate lists and both appear in the merged view.
	items := Merge(
		[]model.Coin{coin("same")},
		[]model.Pair{pair("same")},
	)
	if len(items) != 2 {
		t.Fatalf("expected both variants, got %d", len(items))
	}
	if items[0].Kind != model.KindCoin || items[1].Kind != model.KindPair {
		t.Error("expected coin first, pair second")
	}
}
