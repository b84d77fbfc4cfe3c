package market

import (
	"math"
	"testing"
)

func TestAggregatorMid(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	agg.OnBookUpdate(VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Bids:       []BookLevel{{Price: 99, Qty: 10}},
		Asks:       []BookLevel{{Price: 101, Qty: 10}},
	})
	view := agg.GetView(1)
	if view.MidPrice != 100.0 {
		t.Fatalf("expected mid 100.0 got %v", view.MidPrice)
	}
	if view.Spread != 2.0 {
		t.Fatalf("expected spread 2.0 got %v", view.Spread)
	}
}

func TestAggregatorCrossVenueBest(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	agg.OnBookUpdate(VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Bids:       []BookLevel{{Price: 99, Qty: 10}},
		Asks:       []BookLevel{{Price: 101, Qty: 10}},
	})
	agg.OnBookUpdate(VenueBookSnapshot{
		Instrument: 1,
		Venue:      2,
		Bids:       []BookLevel{{Price: 99.5, Qty: 15}},
		Asks:       []BookLevel{{Price: 100.5, Qty: 15}},
	})
	view := agg.GetView(1)
	if view.MidPrice != 100.0 {
		t.Fatalf("expected mid 100.0 got %v", view.MidPrice)
	}
	if view.Spread != 1.0 {
		t.Fatalf("expected spread 1.0 got %v", view.Spread)
	}
	if len(view.Venues) != 2 {
		t.Fatalf("expected 2 venues got %d", len(view.Venues))
	}
}

func TestAggregatorUpsertReplacesVenueSnapshot(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	agg.OnBookUpdate(VenueBookSnapshot{Instrument: 1, Venue: 1, Bids: []BookLevel{{Price: 99, Qty: 1}}, Asks: []BookLevel{{Price: 101, Qty: 1}}})
	agg.OnBookUpdate(VenueBookSnapshot{Instrument: 1, Venue: 1, Bids: []BookLevel{{Price: 98, Qty: 1}}, Asks: []BookLevel{{Price: 102, Qty: 1}}})
	view := agg.GetView(1)
	if len(view.Venues) != 1 {
		t.Fatalf("expected single snapshot per venue, got %d", len(view.Venues))
	}
	if view.MidPrice != 100.0 {
		t.Fatalf("expected mid to reflect latest snapshot, got %v", view.MidPrice)
	}
}

func TestAggregatorWeightedDepthTopThree(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	agg.OnBookUpdate(VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Bids: []BookLevel{
			{Price: 99, Qty: 1}, {Price: 98, Qty: 2}, {Price: 97, Qty: 3}, {Price: 96, Qty: 100},
		},
		Asks: []BookLevel{{Price: 101, Qty: 1}},
	})
	view := agg.GetView(1)
	// top-3 bid levels (1+2+3) + single ask level (1) = 7; the 4th bid level is excluded.
	if view.WeightedDepth != 7 {
		t.Fatalf("expected weighted depth 7 got %v", view.WeightedDepth)
	}
}

func TestAggregatorEmptySideDoesNotUpdateMid(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	agg.OnBookUpdate(VenueBookSnapshot{Instrument: 1, Venue: 1, Bids: []BookLevel{{Price: 99, Qty: 1}}})
	view := agg.GetView(1)
	if view.MidPrice != 0 {
		t.Fatalf("expected mid 0 with one-sided book, got %v", view.MidPrice)
	}
}

func TestAggregatorUnknownInstrumentReturnsSentinel(t *testing.T) {
	agg := NewAggregator(DefaultEWMAAlpha)
	if agg.HasView(42) {
		t.Fatal("did not expect a view for an unseen instrument")
	}
	view := agg.GetView(42)
	if view.ID != 42 || view.MidPrice != 0 {
		t.Fatalf("expected empty sentinel view, got %+v", view)
	}
}

func TestAggregatorVolatilityEWMA(t *testing.T) {
	agg := NewAggregator(0.5)
	mids := []float64{100, 101, 99, 102}
	for i, m := range mids {
		agg.OnBookUpdate(VenueBookSnapshot{
			Instrument: 1,
			Venue:      1,
			Bids:       []BookLevel{{Price: m - 0.5, Qty: 1}},
			Asks:       []BookLevel{{Price: m + 0.5, Qty: 1}},
			Timestamp:  uint64(i),
		})
	}
	view := agg.GetView(1)
	if view.Volatility <= 0 {
		t.Fatalf("expected positive volatility after price moves, got %v", view.Volatility)
	}

	// Manually replicate the EWMA to confirm the exact recursion.
	var variance float64
	initialized := false
	prev := 0.0
	for i, m := range mids {
		if i == 0 {
			prev = m
			continue
		}
		r := math.Log(m / prev)
		if !initialized {
			variance = r * r
			initialized = true
		} else {
			variance = 0.5*(r*r) + 0.5*variance
		}
		prev = m
	}
	want := math.Sqrt(variance)
	if math.Abs(view.Volatility-want) > 1e-9 {
		t.Fatalf("expected volatility %.9f got %.9f", want, view.Volatility)
	}
}
