package strategy

import "quoteforge/market"

// MarketMakingParams controls the quote engine's spread, skew and size
// policy for a single instrument.
type MarketMakingParams struct {
	BaseSpreadBP        float64
	MinSpreadBP         float64
	MaxSpreadBP         float64
	VolatilityCoeff     float64
	InventoryCoeff      float64
	SizeBase            float64
	SizeInventoryScale  float64
	QuoteRefreshMs      float64
	MaxPosition         float64
}

// DefaultParams mirrors the reference engine's built-in defaults, used to
// fill in any field left unset by configuration.
func DefaultParams() MarketMakingParams {
	return MarketMakingParams{
		BaseSpreadBP:       10.0,
		MinSpreadBP:        2.0,
		MaxSpreadBP:        50.0,
		VolatilityCoeff:    1.0,
		InventoryCoeff:     0.5,
		SizeBase:           1.0,
		SizeInventoryScale: 0.5,
		QuoteRefreshMs:     100.0,
		MaxPosition:        100.0,
	}
}

// Quote is a two-sided quote decision for one instrument.
type Quote struct {
	Instrument market.InstrumentID
	Venue      market.VenueID
	BidPrice   float64
	AskPrice   float64
	BidSize    float64
	AskSize    float64
	Timestamp  uint64
}

// IsActionable reports whether the controller should act on this quote.
func (q Quote) IsActionable() bool {
	return q.BidPrice > 0 && q.AskPrice > 0
}
