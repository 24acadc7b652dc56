package model

import (
	"strconv"
	"strings"
)

// Coin is one record from the coin market feed, ranked by market cap.
// JSON field names follow the provider wire format so a persisted selection
// can be decoded by any process without shared code.
// Every numeric field is a pointer because the provider may omit it.
type Coin struct {
	ID                    string   `json:"id"`
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	LogoURL               *string  `json:"image,omitempty"`
	CurrentPrice          *float64 `json:"current_price,omitempty"`
	MarketCap             *float64 `json:"market_cap,omitempty"`
	MarketCapRank         *int     `json:"market_cap_rank,omitempty"`
	FullyDilutedValuation *float64 `json:"fully_diluted_valuation,omitempty"`
	TotalVolume           *float64 `json:"total_volume,omitempty"`
	High24h               *float64 `json:"high_24h,omitempty"`
	Low24h                *float64 `json:"low_24h,omitempty"`
	PriceChange24h        *float64 `json:"price_change_24h,omitempty"`
	PriceChangePct24h     *float64 `json:"price_change_percentage_24h,omitempty"`
	MarketCapChange24h    *float64 `json:"market_cap_change_24h,omitempty"`
	MarketCapChangePct24h *float64 `json:"market_cap_change_percentage_24h,omitempty"`
	CirculatingSupply     *float64 `json:"circulating_supply,omitempty"`
	TotalSupply           *float64 `json:"total_supply,omitempty"`
	MaxSupply             *float64 `json:"max_supply,omitempty"`
}

// SearchText returns the lowercased haystack used for catalog substring
// search: display name, symbol, and every visible numeric field.
func (c *Coin) SearchText() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(c.Name))
	b.WriteByte(' ')
	b.WriteString(strings.ToLower(c.Symbol))
	for _, f := range []*float64{
		c.CurrentPrice, c.MarketCap, c.TotalVolume,
		c.High24h, c.Low24h, c.PriceChange24h, c.PriceChangePct24h,
	} {
		if f != nil {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	if c.MarketCapRank != nil {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(*c.MarketCapRank))
	}
	return b.String()
}
