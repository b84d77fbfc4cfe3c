package strategy

import (
	"testing"

	"quoteforge/market"
)

func flatParams() MarketMakingParams {
	return MarketMakingParams{
		BaseSpreadBP:       10,
		MinSpreadBP:        2,
		MaxSpreadBP:        50,
		InventoryCoeff:     0.5,
		SizeBase:           5,
		SizeInventoryScale: 0.5,
		MaxPosition:        100,
	}
}

func TestComputeQuote_UnknownInstrumentIsZero(t *testing.T) {
	e := NewEngine(nil)
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 100}, 0, 1)
	if q.IsActionable() {
		t.Fatalf("expected zero quote for unconfigured instrument, got %+v", q)
	}
}

func TestComputeQuote_ZeroMidIsZero(t *testing.T) {
	e := NewEngine(nil)
	e.Configure(1, flatParams())
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 0}, 0, 1)
	if q.IsActionable() {
		t.Fatalf("expected zero quote for zero mid, got %+v", q)
	}
}

func TestComputeQuote_AtFlat(t *testing.T) {
	e := NewEngine(nil)
	e.Configure(1, flatParams())
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 100, Volatility: 0}, 0, 1)
	if !approx(q.BidPrice, 99.95) || !approx(q.AskPrice, 100.05) {
		t.Fatalf("expected bid=99.95 ask=100.05, got bid=%.4f ask=%.4f", q.BidPrice, q.AskPrice)
	}
	if !approx(q.BidSize, 5.0) || !approx(q.AskSize, 5.0) {
		t.Fatalf("expected symmetric size 5.0, got bid=%.4f ask=%.4f", q.BidSize, q.AskSize)
	}
}

func TestComputeQuote_AtLong50(t *testing.T) {
	e := NewEngine(nil)
	e.Configure(1, flatParams())
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 100, Volatility: 0}, 50, 1)
	if !approx(q.BidPrice, 99.925) || !approx(q.AskPrice, 100.025) {
		t.Fatalf("expected bid=99.925 ask=100.025, got bid=%.4f ask=%.4f", q.BidPrice, q.AskPrice)
	}
	if !approx(q.BidSize, 3.75) {
		t.Fatalf("expected attenuated bid size 3.75, got %.4f", q.BidSize)
	}
	if !approx(q.AskSize, 3.75) {
		t.Fatalf("expected untouched ask size to keep base size 3.75, got %.4f", q.AskSize)
	}
}

func TestComputeQuote_SpreadBounds(t *testing.T) {
	e := NewEngine(nil)
	p := flatParams()
	p.VolatilityCoeff = 1.0
	e.Configure(1, p)
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 100, Volatility: 1.0}, 0, 1)
	spread := q.AskPrice - q.BidPrice
	minAbs := p.MinSpreadBP * 100 / 10000
	maxAbs := p.MaxSpreadBP * 100 / 10000
	if spread < minAbs-1e-9 || spread > maxAbs+1e-9 {
		t.Fatalf("spread %.6f out of bounds [%.6f, %.6f]", spread, minAbs, maxAbs)
	}
}

func TestComputeQuote_ShortAttenuatesAsk(t *testing.T) {
	e := NewEngine(nil)
	e.Configure(1, flatParams())
	q := e.ComputeQuote(market.InstrumentMarketView{ID: 1, MidPrice: 100}, -90, 1)
	if q.AskSize >= q.BidSize {
		t.Fatalf("expected ask size attenuated below bid size when short, got bid=%.4f ask=%.4f", q.BidSize, q.AskSize)
	}
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
