package risk

import (
	"testing"

	"quoteforge/market"
	"quoteforge/strategy"
)

func paramsFor(id market.InstrumentID, maxPos float64) map[market.InstrumentID]strategy.MarketMakingParams {
	return map[market.InstrumentID]strategy.MarketMakingParams{
		id: {MaxPosition: maxPos},
	}
}

func TestOnFill_RoundTripRealizesPnL(t *testing.T) {
	m := NewManager(paramsFor(1, 100))
	m.OnFill(1, 100, 10)
	m.OnFill(1, 105, -10)
	pos := m.Position(1)
	if pos.Quantity != 0 {
		t.Fatalf("expected flat position, got %v", pos.Quantity)
	}
	if pos.RealizedPnL != 50.0 {
		t.Fatalf("expected realized pnl 50.0, got %v", pos.RealizedPnL)
	}
}

func TestOnFill_ShortRoundTrip(t *testing.T) {
	m := NewManager(paramsFor(1, 100))
	m.OnFill(1, 100, -10)
	m.OnFill(1, 95, 10)
	pos := m.Position(1)
	if pos.RealizedPnL != 50.0 {
		t.Fatalf("expected realized pnl 50.0 for short round trip, got %v", pos.RealizedPnL)
	}
}

func TestWithinLimits_Gate(t *testing.T) {
	m := NewManager(paramsFor(1, 5))
	m.OnFill(1, 100, 4)
	if m.WithinLimits(1, 10) {
		t.Fatalf("expected within_limits(+10) to be false at max_position 5")
	}
	if !m.WithinLimits(1, 1) {
		t.Fatalf("expected within_limits(+1) to be true")
	}
}

func TestWithinLimits_UnknownInstrumentIsFalse(t *testing.T) {
	m := NewManager(nil)
	if m.WithinLimits(99, 0) {
		t.Fatalf("expected false for unconfigured instrument")
	}
}

func TestCanQuote_AtLeastOneSide(t *testing.T) {
	m := NewManager(paramsFor(1, 10))
	m.OnFill(1, 100, 9)
	if !m.CanQuote(1, 0.1, 0.1) {
		t.Fatalf("expected can_quote true: sell side stays within limits even though buy side would breach")
	}
}

func TestAvgPriceInvariant_SameSignFills(t *testing.T) {
	m := NewManager(paramsFor(1, 1000))
	m.OnFill(1, 100, 4)
	m.OnFill(1, 110, 6)
	pos := m.Position(1)
	want := (100.0*4 + 110.0*6) / 10.0
	if diffAbs(pos.AvgPrice, want) > 1e-9 {
		t.Fatalf("expected avg price %.6f, got %.6f", want, pos.AvgPrice)
	}
}

func TestUpdateUnrealized_FlatIsZero(t *testing.T) {
	m := NewManager(paramsFor(1, 100))
	m.UpdateUnrealized(map[market.InstrumentID]float64{1: 100})
	if m.Position(1).UnrealizedPnL != 0 {
		t.Fatalf("expected zero unrealized pnl when flat")
	}
}

func TestUpdateUnrealized_Long(t *testing.T) {
	m := NewManager(paramsFor(1, 100))
	m.OnFill(1, 100, 10)
	m.UpdateUnrealized(map[market.InstrumentID]float64{1: 110})
	if m.Position(1).UnrealizedPnL != 100.0 {
		t.Fatalf("expected unrealized pnl 100.0, got %v", m.Position(1).UnrealizedPnL)
	}
}

func TestPosition_UnknownInstrumentReturnsSentinel(t *testing.T) {
	m := NewManager(nil)
	pos := m.Position(7)
	if pos.Instrument != 7 || pos.Quantity != 0 {
		t.Fatalf("expected empty sentinel position for id 7, got %+v", pos)
	}
}

func diffAbs(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
