package execution

import (
	"sync"

	"quoteforge/market"
)

// FillCallback is invoked synchronously from CheckFills for each matched
// order: (instrument, venue, fill price, signed fill quantity).
type FillCallback func(instrument market.InstrumentID, venue market.VenueID, price, signedQty float64)

// CancelCallback is invoked synchronously from CancelOrder when a resting
// order is actually removed (never for an already-gone id).
type CancelCallback func(instrument market.InstrumentID, venue market.VenueID)

// Gateway is the capability set the controller needs from an execution
// backend: submit and cancel limit orders. SimGateway and NullGateway are
// the two implementations; the controller depends only on this interface.
type Gateway interface {
	SendLimitOrder(order LiveOrder) OrderID
	CancelOrder(id OrderID)
}

// SimGateway simulates a resting limit order book: orders rest until
// canceled or until CheckFills observes the opposite side of the book
// crossing the order's limit price. Fills are all-or-nothing at the
// resting price, never partial.
type SimGateway struct {
	mu          sync.Mutex
	nextOrderID OrderID
	orders      map[OrderID]LiveOrder
	onFill      FillCallback
	onCancel    CancelCallback
}

// NewSimGateway builds a SimGateway. onFill may be nil, in which case fills
// are still removed from the book but no callback is invoked.
func NewSimGateway(onFill FillCallback) *SimGateway {
	return &SimGateway{
		nextOrderID: 1,
		orders:      make(map[OrderID]LiveOrder),
		onFill:      onFill,
	}
}

// SetCancelCallback registers a callback invoked whenever CancelOrder
// actually removes a resting order. Passing nil disables it.
func (g *SimGateway) SetCancelCallback(cb CancelCallback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onCancel = cb
}

// SetFillCallback registers the callback invoked from CheckFills for each
// matched order. Passing nil disables it.
func (g *SimGateway) SetFillCallback(cb FillCallback) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onFill = cb
}

// SendLimitOrder assigns a strictly increasing id, stores the order, and
// returns the id. Never fails.
func (g *SimGateway) SendLimitOrder(order LiveOrder) OrderID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextOrderID
	g.nextOrderID++
	order.ID = id
	g.orders[id] = order
	return id
}

// CancelOrder removes the order if present. Idempotent; never fails.
func (g *SimGateway) CancelOrder(id OrderID) {
	g.mu.Lock()
	order, ok := g.orders[id]
	if ok {
		delete(g.orders, id)
	}
	cb := g.onCancel
	g.mu.Unlock()

	if ok && cb != nil {
		cb(order.Instrument, order.Venue)
	}
}

// ActiveOrderCount returns the number of resting orders.
func (g *SimGateway) ActiveOrderCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.orders)
}

// CheckFills matches resting orders for (instrument, venue) against the
// given snapshot. Matches are collected before any order is removed, so
// removal never disturbs the scan and every crossed order fills in the
// same call.
func (g *SimGateway) CheckFills(snapshot market.VenueBookSnapshot) {
	g.mu.Lock()

	type fill struct {
		id        OrderID
		order     LiveOrder
		price     float64
		signedQty float64
	}
	var fills []fill

	for id, order := range g.orders {
		if order.Instrument != snapshot.Instrument || order.Venue != snapshot.Venue {
			continue
		}

		switch order.Side {
		case market.SideBuy:
			if len(snapshot.Asks) > 0 && snapshot.Asks[0].Price <= order.Price {
				fills = append(fills, fill{id, order, order.Price, order.Size})
			}
		case market.SideSell:
			if len(snapshot.Bids) > 0 && snapshot.Bids[0].Price >= order.Price {
				fills = append(fills, fill{id, order, order.Price, -order.Size})
			}
		}
	}

	for _, f := range fills {
		delete(g.orders, f.id)
	}
	cb := g.onFill
	g.mu.Unlock()

	for _, f := range fills {
		if cb != nil {
			cb(f.order.Instrument, f.order.Venue, f.price, f.signedQty)
		}
	}
}

// NullGateway accepts submissions and cancels but never fills; used in
// tests that need a gateway without simulated execution.
type NullGateway struct {
	mu          sync.Mutex
	nextOrderID OrderID
	ordersSent  uint64
	cancelsSent uint64
}

// NewNullGateway builds a NullGateway.
func NewNullGateway() *NullGateway {
	return &NullGateway{nextOrderID: 1}
}

func (g *NullGateway) SendLimitOrder(order LiveOrder) OrderID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextOrderID
	g.nextOrderID++
	g.ordersSent++
	return id
}

func (g *NullGateway) CancelOrder(id OrderID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelsSent++
}

// OrdersSent returns the number of orders submitted so far.
func (g *NullGateway) OrdersSent() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ordersSent
}

// CancelsSent returns the number of cancels submitted so far.
func (g *NullGateway) CancelsSent() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelsSent
}
