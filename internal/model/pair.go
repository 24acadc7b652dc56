package model

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// TokenInfo describes one side of a trading pair. All fields may be
// absent from the provider response.
type TokenInfo struct {
	Address *string `json:"address,omitempty"`
	Name    *string `json:"name,omitempty"`
	Symbol  *string `json:"symbol,omitempty"`
}

// PairVolume holds rolling volume figures in USD.
type PairVolume struct {
	H24 *float64 `json:"h24,omitempty"`
	H6  *float64 `json:"h6,omitempty"`
	H1  *float64 `json:"h1,omitempty"`
	M5  *float64 `json:"m5,omitempty"`
}

// PairLiquidity holds pool liquidity figures.
type PairLiquidity struct {
	USD   *float64 `json:"usd,omitempty"`
	Base  *float64 `json:"base,omitempty"`
	Quote *float64 `json:"quote,omitempty"`
}

// Pair is one record from the pair-search feed. Prices arrive as decimal
// strings that may not parse; pairAddress may be missing.
type Pair struct {
	ChainID       *string            `json:"chainId,omitempty"`
	DexID         *string            `json:"dexId,omitempty"`
	URL           *string            `json:"url,omitempty"`
	PairAddress   *string            `json:"pairAddress,omitempty"`
	Labels        []string           `json:"labels,omitempty"`
	BaseToken     *TokenInfo         `json:"baseToken,omitempty"`
	QuoteToken    *TokenInfo         `json:"quoteToken,omitempty"`
	PriceNative   *string            `json:"priceNative,omitempty"`
	PriceUSD      *string            `json:"priceUsd,omitempty"`
	Volume        *PairVolume        `json:"volume,omitempty"`
	PriceChange   map[string]float64 `json:"priceChange,omitempty"`
	Liquidity     *PairLiquidity     `json:"liquidity,omitempty"`
	FDV           *float64           `json:"fdv,omitempty"`
	MarketCap     *float64           `json:"marketCap,omitempty"`
	PairCreatedAt *int64             `json:"pairCreatedAt,omitempty"`
}

// Identifier returns the pair address when present, otherwise a
// deterministic fallback derived from chain, dex and token descriptors.
// The fallback is stable across restarts so a selected address-less pair
// survives a persistence round-trip.
func (p *Pair) Identifier() string {
	if p.PairAddress != nil && *p.PairAddress != "" {
		return *p.PairAddress
	}
	h := fnv.New64a()
	for _, s := range []*string{p.ChainID, p.DexID} {
		if s != nil {
			h.Write([]byte(*s))
		}
		h.Write([]byte{0})
	}
	for _, t := range []*TokenInfo{p.BaseToken, p.QuoteToken} {
		if t != nil {
			for _, s := range []*string{t.Address, t.Name, t.Symbol} {
				if s != nil {
					h.Write([]byte(*s))
				}
				h.Write([]byte{0})
			}
		}
		h.Write([]byte{1})
	}
	return fmt.Sprintf("pair-%016x", h.Sum64())
}

// ParsePriceUSD parses the priceUsd decimal string. Returns ok=false when
// the field is absent or not a valid decimal, never zero-by-default.
func (p *Pair) ParsePriceUSD() (float64, bool) {
	if p.PriceUSD == nil {
		return 0, false
	}
	d, err := decimal.Parse(strings.TrimSpace(*p.PriceUSD))
	if err != nil {
		return 0, false
	}
	f, ok := d.Float64()
	if !ok {
		return 0, false
	}
	return f, true
}

// BaseSymbol returns the base token symbol or "N/A" when unknown.
func (p *Pair) BaseSymbol() string {
	if p.BaseToken != nil && p.BaseToken.Symbol != nil && *p.BaseToken.Symbol != "" {
		return *p.BaseToken.Symbol
	}
	return "N/A"
}

// SearchText returns the lowercased haystack used for catalog substring
// search over both token descriptors and the visible numeric fields.
func (p *Pair) SearchText() string {
	var b strings.Builder
	for _, t := range []*TokenInfo{p.BaseToken, p.QuoteToken} {
		if t == nil {
			continue
		}
		for _, s := range []*string{t.Name, t.Symbol} {
			if s != nil {
				b.WriteString(strings.ToLower(*s))
				b.WriteByte(' ')
			}
		}
	}
	if p.PriceUSD != nil {
		b.WriteString(*p.PriceUSD)
		b.WriteByte(' ')
	}
	for _, f := range []*float64{p.FDV, p.MarketCap} {
		if f != nil {
			b.WriteString(strconv.FormatFloat(*f, 'f', -1, 64))
			b.WriteByte(' ')
		}
	}
	if p.Liquidity != nil && p.Liquidity.USD != nil {
		b.WriteString(strconv.FormatFloat(*p.Liquidity.USD, 'f', -1, 64))
	}
	return b.String()
}
