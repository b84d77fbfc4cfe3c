package execution

import (
	"testing"

	"quoteforge/market"
)

func TestSimGateway_OrderIdsIncreaseFromOne(t *testing.T) {
	g := NewSimGateway(nil)
	id1 := g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideBuy, Price: 100, Size: 1})
	id2 := g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideSell, Price: 101, Size: 1})
	if id1 != 1 || id2 != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", id1, id2)
	}
	g.CancelOrder(id1)
	id3 := g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideBuy, Price: 99, Size: 1})
	if id3 <= id2 {
		t.Fatalf("expected id after cancel to be strictly larger, got %d", id3)
	}
}

func TestSimGateway_BuyFillsAtRestingPrice(t *testing.T) {
	var got []float64
	g := NewSimGateway(func(instrument market.InstrumentID, venue market.VenueID, price, signedQty float64) {
		got = append(got, price, signedQty)
	})
	g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideBuy, Price: 100, Size: 5})
	g.CheckFills(market.VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Asks:       []market.BookLevel{{Price: 99.5, Qty: 10}},
	})
	if len(got) != 2 || got[0] != 100.0 || got[1] != 5.0 {
		t.Fatalf("expected fill callback (100.0, +5.0), got %v", got)
	}
	if g.ActiveOrderCount() != 0 {
		t.Fatalf("expected order removed after fill")
	}
}

func TestSimGateway_SellDoesNotFillWhenBidBelowLimit(t *testing.T) {
	var called bool
	g := NewSimGateway(func(market.InstrumentID, market.VenueID, float64, float64) { called = true })
	g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideSell, Price: 100, Size: 5})
	g.CheckFills(market.VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Bids:       []market.BookLevel{{Price: 99, Qty: 10}},
	})
	if called {
		t.Fatalf("did not expect a fill when bid stays below the resting sell price")
	}
	if g.ActiveOrderCount() != 1 {
		t.Fatalf("expected order to remain resting")
	}
}

func TestSimGateway_MultipleFillsSameTick(t *testing.T) {
	count := 0
	g := NewSimGateway(func(market.InstrumentID, market.VenueID, float64, float64) { count++ })
	g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideBuy, Price: 100, Size: 1})
	g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideSell, Price: 99, Size: 1})
	g.CheckFills(market.VenueBookSnapshot{
		Instrument: 1,
		Venue:      1,
		Bids:       []market.BookLevel{{Price: 99.5, Qty: 10}},
		Asks:       []market.BookLevel{{Price: 99.5, Qty: 10}},
	})
	if count != 2 {
		t.Fatalf("expected both resting orders to fill in the same tick, got %d", count)
	}
	if g.ActiveOrderCount() != 0 {
		t.Fatalf("expected both orders removed")
	}
}

func TestNullGateway_NeverFills(t *testing.T) {
	g := NewNullGateway()
	id := g.SendLimitOrder(LiveOrder{Instrument: 1, Venue: 1, Side: market.SideBuy, Price: 100, Size: 1})
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	g.CancelOrder(id)
	if g.OrdersSent() != 1 || g.CancelsSent() != 1 {
		t.Fatalf("expected counters to track submissions/cancels, got sent=%d cancels=%d", g.OrdersSent(), g.CancelsSent())
	}
}
