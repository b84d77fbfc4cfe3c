package risk

import "quoteforge/market"

// ViewSource exposes the aggregator's fused per-instrument view.
// *market.Aggregator satisfies it.
type ViewSource interface {
	GetView(id market.InstrumentID) market.InstrumentMarketView
}

// SpreadGuard denies quoting when the aggregator's fused spread has widened
// past a fraction of mid, adapted from the teacher's VWAPGuard
// (risk/vwap_spread.go), which made the same check against a single
// venue's raw order book; here it reads the cross-venue fused view instead
// since that is what the quote engine itself prices from.
type SpreadGuard struct {
	MaxSpreadRatio float64
	Views          ViewSource
}

// Allow implements Guard.
func (g *SpreadGuard) Allow(id market.InstrumentID) error {
	if g == nil || g.Views == nil || g.MaxSpreadRatio <= 0 {
		return nil
	}
	view := g.Views.GetView(id)
	if view.MidPrice <= 0 {
		return nil
	}
	if view.Spread/view.MidPrice > g.MaxSpreadRatio {
		return ErrSpreadTooWide
	}
	return nil
}
