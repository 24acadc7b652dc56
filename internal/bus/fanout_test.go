package bus

import (
	"testing"
	"time"

	"fivecoin/internal/model"
)

func snap(ids ...string) model.Snapshot {
	items := make([]model.SelectedItem, len(ids))
	for i, id := range ids {
		items[i] = model.NewCoinItem(model.Coin{ID: id, Symbol: id, Name: id})
	}
	return model.Snapshot{Items: items, GeneratedAt: time.Now()}
}

func TestFanOut_BroadcastsToAll(t *testing.T) {
	fo := New(10)
	out1 := fo.Subscribe()
	out2 := fo.Subscribe()

	fo.Publish(snap("bitcoin"))

	for i, out := range []<-chan model.Snapshot{out1, out2} {
		select {
		case s := <-out:
			if len(s.Items) != 1 || s.Items[0].ID != "bitcoin" {
				t.Errorf("out%d: unexpected snapshot %+v", i+1, s.Items)
			}
		case <-time.After(time.Second):
			t.Fatalf("out%d: timed out waiting for snapshot", i+1)
		}
	}
}

func TestFanOut_DropsForSlowSubscriber(t *testing.T) {
	fo := New(1)
	slow := fo.Subscribe()

	dropped := make(chan int, 1)
	fo.OnDrop = func(idx int) {
		select {
		case dropped <- idx:
		default:
		}
	}

	fo.Publish(snap("a")) // fills the buffer
	fo.Publish(snap("b")) // must drop, not block

	select {
	case idx := <-dropped:
		if idx != 0 {
			t.Errorf("expected drop for subscriber 0, got %d", idx)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a drop callback")
	}

	// The first snapshot is still deliverable.
	select {
	case s := <-slow:
		if s.Items[0].ID != "a" {
			t.Errorf("expected first snapshot, got %s", s.Items[0].ID)
		}
	default:
		t.Fatal("buffered snapshot missing")
	}
}

func TestFanOut_CloseClosesSubscribers(t *testing.T) {
	fo := New(1)
	out := fo.Subscribe()
	fo.Close()

	if _, ok := <-out; ok {
		t.Fatal("expected closed subscriber channel")
	}
}
