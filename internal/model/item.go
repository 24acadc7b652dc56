package model

import (
	"strings"
	"time"
)

// ItemKind discriminates the two SelectedItem variants.
type ItemKind int

const (
	KindCoin ItemKind = iota
	KindPair
)

// SelectedItem is the merged view of one selected instrument: a closed
// tagged union over Coin and Pair. Exactly one payload pointer is set,
// matching Kind. It is derived from the two selection lists and never
// persisted itself.
type SelectedItem struct {
	ID   string
	Kind ItemKind
	Coin *Coin
	Pair *Pair
}

// NewCoinItem wraps a selected coin.
func NewCoinItem(c Coin) SelectedItem {
	return SelectedItem{ID: c.ID, Kind: KindCoin, Coin: &c}
}

// NewPairItem wraps a selected pair.
func NewPairItem(p Pair) SelectedItem {
	return SelectedItem{ID: p.Identifier(), Kind: KindPair, Pair: &p}
}

// Name returns the display name for the item.
func (s SelectedItem) Name() string {
	switch s.Kind {
	case KindCoin:
		return s.Coin.Name
	case KindPair:
		return s.Pair.BaseSymbol()
	}
	return ""
}

// Symbol returns the uppercased display symbol.
func (s SelectedItem) Symbol() string {
	switch s.Kind {
	case KindCoin:
		return strings.ToUpper(s.Coin.Symbol)
	case KindPair:
		return strings.ToUpper(s.Pair.BaseSymbol())
	}
	return ""
}

// LogoURL returns the logo URL for coins. Pairs have no logo in this
// projection.
func (s SelectedItem) LogoURL() (string, bool) {
	if s.Kind == KindCoin && s.Coin.LogoURL != nil {
		return *s.Coin.LogoURL, true
	}
	return "", false
}

// PriceUSD returns the USD price. For pairs an unparsable or absent
// decimal string yields ok=false, not zero.
func (s SelectedItem) PriceUSD() (float64, bool) {
	switch s.Kind {
	case KindCoin:
		if s.Coin.CurrentPrice != nil {
			return *s.Coin.CurrentPrice, true
		}
		return 0, false
	case KindPair:
		return s.Pair.ParsePriceUSD()
	}
	return 0, false
}

// Snapshot is one recomputation of the merged view, published whenever
// either selection list changes.
type Snapshot struct {
	Items       []SelectedItem
	GeneratedAt time.Time
}
