package selection

import (
	"context"
	"log"
	"strings"
	"sync"

	"fivecoin/internal/metrics"
	"fivecoin/internal/model"
)

// PairProvider is the pair-search feed as consumed by PairState.
type PairProvider interface {
	Search(ctx context.Context, query string) ([]model.Pair, error)
}

// PairStore persists the pair selection list.
type PairStore interface {
	SavePairs(ctx context.Context, pairs []model.Pair) error
	LoadPairs(ctx context.Context) ([]model.Pair, error)
}

// PairState mirrors CoinState for the pair-search source. Pair
// identifiers come from Pair.Identifier, which substitutes a
// deterministic fallback for address-less pairs.
type PairState struct {
	mu       sync.RWMutex
	catalog  []model.Pair
	selected []model.Pair

	provider PairProvider
	store    PairStore
	prom     *metrics.Metrics
}

// NewPairState creates a PairState with an empty catalog and selection.
func NewPairState(provider PairProvider, store PairStore, prom *metrics.Metrics) *PairState {
	return &PairState{provider: provider, store: store, prom: prom}
}

// Restore loads the persisted selection. A missing key or undecodable
// blob yields an empty selection, never an error.
func (s *PairState) Restore(ctx context.Context) {
	pairs, err := s.store.LoadPairs(ctx)
	if err != nil {
		log.Printf("[pairs] restore failed, starting empty: %v", err)
		return
	}
	s.mu.Lock()
	s.selected = pairs
	s.mu.Unlock()
	log.Printf("[pairs] restored %d selected pairs", len(pairs))
}

// FetchCatalog replaces the catalog with the pairs matching query. Any
// provider failure leaves an explicit empty catalog.
func (s *PairState) FetchCatalog(ctx context.Context, query string) {
	pairs, err := s.provider.Search(ctx, query)
	result := "ok"
	if err != nil {
		log.Printf("[pairs] search %q failed: %v", query, err)
		pairs = nil
		result = "error"
	} else if len(pairs) == 0 {
		result = "empty"
	}
	if s.prom != nil {
		s.prom.CatalogFetches.WithLabelValues("pairs", result).Inc()
	}

	s.mu.Lock()
	s.catalog = pairs
	s.mu.Unlock()
}

// Catalog returns a copy of the last search result.
func (s *PairState) Catalog() []model.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Pair(nil), s.catalog...)
}

// Selected returns a copy of the selection in insertion order.
func (s *PairState) Selected() []model.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Pair(nil), s.selected...)
}

// SelectedCount returns the current selection size.
func (s *PairState) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Add appends pair to the selection and persists it. Silent no-op at the
// cap or for an already-selected identifier. Reports whether the
// selection changed.
func (s *PairState) Add(ctx context.Context, pair model.Pair, totalSelected int) bool {
	id := pair.Identifier()

	s.mu.Lock()
	if totalSelected >= MaxSelected {
		s.mu.Unlock()
		if s.prom != nil {
			s.prom.CapRejections.Inc()
		}
		return false
	}
	for i := range s.selected {
		if s.selected[i].Identifier() == id {
			s.mu.Unlock()
			if s.prom != nil {
				s.prom.DuplicateRejections.Inc()
			}
			return false
		}
	}
	s.selected = append(s.selected, pair)
	snapshot := append([]model.Pair(nil), s.selected...)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if s.prom != nil {
		s.prom.SelectionAdds.WithLabelValues("pairs").Inc()
	}
	return true
}

// Remove deletes the pair with the given identifier, if selected.
// Reports whether the selection changed.
func (s *PairState) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.selected {
		if s.selected[i].Identifier() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.selected = append(s.selected[:idx], s.selected[idx+1:]...)
	snapshot := append([]model.Pair(nil), s.selected...)
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if s.prom != nil {
		s.prom.SelectionDrops.WithLabelValues("pairs").Inc()
	}
	return true
}

// FilteredCatalog returns catalog entries whose token descriptors or
// visible numeric fields contain query, case-insensitively. An empty
// query returns the full catalog. Pure, no side effects.
func (s *PairState) FilteredCatalog(query string) []model.Pair {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.Catalog()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Pair
	for i := range s.catalog {
		if strings.Contains(s.catalog[i].SearchText(), query) {
			out = append(out, s.catalog[i])
		}
	}
	return out
}

func (s *PairState) persist(ctx context.Context, selected []model.Pair) {
	if err := s.store.SavePairs(ctx, selected); err != nil {
		log.Printf("[pairs] persist failed: %v", err)
		if s.prom != nil {
			s.prom.PersistErrors.Inc()
		}
	}
}
