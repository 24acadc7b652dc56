// Package selection owns the per-source catalogs and selection lists,
// the 5-item cap spanning both sources, and the merged view recomputed
// on every selection change.
package selection

import (
	"context"
	"log"
	"strings"
	"sync"

	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
)

// CoinProvider is the coin market feed as consumed by CoinState.
type CoinProvider interface {
	FetchMarketPages(ctx context.Context, ids []string, pages int) []model.Coin
}

// CoinStore persists the coin selection list.
type CoinStore interface {
	SaveCoins(ctx context.Context, coins []model.Coin) error
	LoadCoins(ctx context.Context) ([]model.Coin, error)
}

// CoinState owns the coin catalog (replaced wholesale on each fetch) and
// the selected subset (persisted on every mutation). Mutation happens
// behind the state's mutex; the Watchlist is the only caller of Add and
// Remove so the global cap is checked against live counts.
type CoinState struct {
	mu       sync.RWMutex
	catalog  []model.Coin
	selected []model.Coin

	provider CoinProvider
	store    CoinStore
	pages    int
	prom     *metrics.Metrics
}

// NewCoinState creates a CoinState with an empty catalog and selection.
func NewCoinState(provider CoinProvider, store CoinStore, pages int, prom *metrics.Metrics) *CoinState {
	if pages < 1 {
		pages = 1
	}
	return &CoinState{provider: provider, store: store, pages: pages, prom: prom}
}

// Restore loads the persisted selection. A missing key or undecodable
// blob yields an empty selection, never an error.
func (s *CoinState) Restore(ctx context.Context) {
	coins, err := s.store.LoadCoins(ctx)
	if err != nil {
		log.Printf("[coins] restore failed, starting empty: %v", err)
		return
	}
	s.mu.Lock()
	s.selected = coins
	s.mu.Unlock()
	log.Printf("[coins] restored %d selected coins", len(coins))
}

// FetchCatalog replaces the catalog with the latest fetch result. Any
// provider failure leaves an explicit empty catalog, never stale data.
// The filter restricts results to the given identifiers when non-empty.
func (s *CoinState) FetchCatalog(ctx context.Context, filter string) {
	var ids []string
	if filter = strings.TrimSpace(filter); filter != "" {
		ids = strings.Split(strings.ToLower(filter), ",")
	}

	coins := s.provider.FetchMarketPages(ctx, ids, s.pages)
	if s.prom != nil {
		result := "ok"
		if len(coins) == 0 {
			result = "empty"
		}
		s.prom.CatalogFetches.WithLabelValues("coins", result).Inc()
	}

	s.mu.Lock()
	s.catalog = coins
	s.mu.Unlock()
}

// Catalog returns a copy of the last fetch result.
func (s *CoinState) Catalog() []model.Coin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Coin(nil), s.catalog...)
}

// Selected returns a copy of the selection in insertion order.
func (s *CoinState) Selected() []model.Coin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Coin(nil), s.selected...)
}

// SelectedCount returns the current selection size.
func (s *CoinState) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Add appends coin to the selection and persists it. It is a silent
// no-op when totalSelected (across both sources) has reached the cap or
// the identifier is already selected. Reports whether the selection
// changed.
func (s *CoinState) Add(ctx context.Context, coin model.Coin, totalSelected int) bool {
	s.mu.Lock()
	if totalSelected >= MaxSelected {
		s.mu.Unlock()
		if s.prom != nil {
			s.prom.CapRejections.Inc()
		}
		return false
	}
	for i := range s.selected {
		if s.selected[i].ID == coin.ID {
			s.mu.Unlock()
			if s.prom != nil {
				s.prom.DuplicateRejections.Inc()
			}
			return false
		}
	}
	s.selected = append(s.selected, coin)
	snapshot := append([]model.Coin(nil), s.selected...)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if s.prom != nil {
		s.prom.SelectionAdds.WithLabelValues("coins").Inc()
	}
	return true
}

// Remove deletes the coin with the given identifier, if selected.
// Reports whether the selection changed.
func (s *CoinState) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.selected {
		if s.selected[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.selected = append(s.selected[:idx], s.selected[idx+1:]...)
	snapshot := append([]model.Coin(nil), s.selected...)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if s.prom != nil {
		s.prom.SelectionDrops.WithLabelValues("coins").Inc()
	}
	return true
}

// FilteredCatalog returns the catalog entries whose name, symbol, or
// visible numeric fields contain query, case-insensitively. An empty
// query returns the full catalog. Pure, no side effects.
func (s *CoinState) FilteredCatalog(query string) []model.Coin {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Catalog()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Coin
	for i := range s.catalog {
		if strings.Contains(s.catalog[i].SearchText(), query) {
			out = append(out, s.catalog[i])
		}
	}
	return out
}

// persist writes the full selection blob. A write failure is logged and
// the in-memory state stays as mutated.
func (s *CoinState) persist(ctx context.Context, selected []model.Coin) {
	if err := s.store.SaveCoins(ctx, selected); err != nil {
		log.Printf("[coins] persist failed: %v", err)
		if s.prom != nil {
			s.prom.PersistErrors.Inc()
		}
	}
}
