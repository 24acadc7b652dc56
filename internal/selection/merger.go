package selection

import "fivecoin/internal/model"

// Merge builds the unified selected-items list: all selected coins in
// their selection order, then all selected pairs in theirs. Plain
// concatenation, no interleaving; survivors keep their relative order
// after any removal.
func Merge(coins []model.Coin, pairs []model.Pair) []model.SelectedItem {
	items := make([]model.SelectedItem, 0, len(coins)+len(pairs))
	for _, c := range coins {
		items = append(items, model.NewCoinItem(c))
	}
	for _, p := range pairs {
		items = append(items, model.NewPairItem(p))
	}
	return items
}
