package controller

import (
	"quoteforge/execution"
	"quoteforge/market"
	"quoteforge/risk"
	"quoteforge/strategy"
)

// InstrumentState is the controller's per-instrument bookkeeping: which
// orders are currently resting and when the instrument was last requoted.
type InstrumentState struct {
	LastBidOrderID execution.OrderID
	LastAskOrderID execution.OrderID
	LastQuoteTs    uint64
}

// Controller is the event loop that composes the aggregator, risk manager,
// quote engine, router and gateway into a single tick-driven decision: on
// each snapshot, fold it into the aggregate view and attempt to requote the
// affected instrument. It holds no market data or position state of its
// own — that lives in the aggregator and risk manager it wraps.
type Controller struct {
	aggregator *market.Aggregator
	risk       *risk.Manager
	engine     *strategy.Engine
	router     *execution.Router
	gateway    execution.Gateway
	guard      risk.Guard // optional; nil means no additional gating

	instruments map[market.InstrumentID]*InstrumentState
}

// New builds a Controller scoped to the given configured instrument list.
// Instruments not in this list are silently skipped by OnMarketData, per
// the "instrument not configured" branch of try_requote.
func New(
	instruments []market.InstrumentID,
	aggregator *market.Aggregator,
	riskManager *risk.Manager,
	engine *strategy.Engine,
	router *execution.Router,
	gateway execution.Gateway,
	guard risk.Guard,
) *Controller {
	states := make(map[market.InstrumentID]*InstrumentState, len(instruments))
	for _, id := range instruments {
		states[id] = &InstrumentState{}
	}
	return &Controller{
		aggregator:  aggregator,
		risk:        riskManager,
		engine:      engine,
		router:      router,
		gateway:     gateway,
		guard:       guard,
		instruments: states,
	}
}

// State returns the current per-instrument bookkeeping, if configured.
func (c *Controller) State(id market.InstrumentID) (InstrumentState, bool) {
	s, ok := c.instruments[id]
	if !ok {
		return InstrumentState{}, false
	}
	return *s, true
}

// OnMarketData forwards the snapshot to the aggregator, then attempts to
// requote the affected instrument.
func (c *Controller) OnMarketData(snapshot market.VenueBookSnapshot, now uint64) {
	c.aggregator.OnBookUpdate(snapshot)
	if obs, ok := c.guard.(risk.TickObserver); ok {
		obs.OnTick(snapshot.Instrument, now, c.aggregator.GetView(snapshot.Instrument).MidPrice)
	}
	c.tryRequote(snapshot.Instrument, now)
}

// OnFill forwards a fill to the risk manager. In the wired-up backtest
// loop the gateway's fill callback typically calls risk.OnFill directly
// alongside metrics bookkeeping; this method exists so the controller's
// contract matches the reference event set for direct testing.
func (c *Controller) OnFill(instrument market.InstrumentID, price, signedQty float64) {
	c.risk.OnFill(instrument, price, signedQty)
}

func (c *Controller) tryRequote(id market.InstrumentID, now uint64) {
	state, configured := c.instruments[id]
	if !configured {
		return
	}

	view := c.aggregator.GetView(id)
	if !view.Valid() {
		return
	}

	position := c.risk.Position(id).Quantity
	venue := c.router.ChooseVenue(view, position)

	if !c.risk.CanQuote(id, 0.1, 0.1) {
		return
	}
	if c.guard != nil && c.guard.Allow(id) != nil {
		return
	}

	quote := c.engine.ComputeQuote(view, position, venue)
	if quote.BidPrice <= 0 || quote.AskPrice <= 0 {
		return
	}
	if quote.BidSize <= 0 && quote.AskSize <= 0 {
		return
	}

	if state.LastBidOrderID != 0 {
		c.gateway.CancelOrder(state.LastBidOrderID)
		state.LastBidOrderID = 0
	}
	if state.LastAskOrderID != 0 {
		c.gateway.CancelOrder(state.LastAskOrderID)
		state.LastAskOrderID = 0
	}

	sizeChecker, _ := c.guard.(risk.OrderSizeChecker)

	if quote.BidSize > 0 && c.risk.WithinLimits(id, quote.BidSize) &&
		(sizeChecker == nil || sizeChecker.CheckOrderSize(quote.BidSize) == nil) {
		state.LastBidOrderID = c.gateway.SendLimitOrder(execution.LiveOrder{
			Instrument: id,
			Venue:      venue,
			Side:       market.SideBuy,
			Price:      quote.BidPrice,
			Size:       quote.BidSize,
		})
	}
	if quote.AskSize > 0 && c.risk.WithinLimits(id, -quote.AskSize) &&
		(sizeChecker == nil || sizeChecker.CheckOrderSize(quote.AskSize) == nil) {
		state.LastAskOrderID = c.gateway.SendLimitOrder(execution.LiveOrder{
			Instrument: id,
			Venue:      venue,
			Side:       market.SideSell,
			Price:      quote.AskPrice,
			Size:       quote.AskSize,
		})
	}

	state.LastQuoteTs = now
}
