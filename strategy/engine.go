package strategy

import (
	"sync"
	"time"

	"quoteforge/market"
)

// Clock returns the current time in milliseconds from a monotonic source.
// Injected so tests get a deterministic, steadily increasing timestamp
// without touching the wall clock.
type Clock func() uint64

// Engine derives two-sided quotes from a market view, current position and
// target venue, parameterized per instrument. It holds no market or
// position state of its own — it is a pure function of its inputs plus the
// configured MarketMakingParams.
type Engine struct {
	mu     sync.RWMutex
	params map[market.InstrumentID]MarketMakingParams
	clock  Clock
}

// NewEngine builds an Engine. clock is called once per ComputeQuote to
// stamp the resulting quote; pass a monotonic counter for deterministic
// backtests. A nil clock stamps milliseconds elapsed since NewEngine,
// read from Go's monotonic clock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		start := time.Now()
		clock = func() uint64 { return uint64(time.Since(start).Milliseconds()) }
	}
	return &Engine{
		params: make(map[market.InstrumentID]MarketMakingParams),
		clock:  clock,
	}
}

// Configure sets or replaces the quoting parameters for an instrument.
func (e *Engine) Configure(id market.InstrumentID, p MarketMakingParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params[id] = p
}

// Params returns the configured parameters for an instrument, if any.
func (e *Engine) Params(id market.InstrumentID) (MarketMakingParams, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.params[id]
	return p, ok
}

// ComputeQuote produces a two-sided quote for the instrument named by
// view.ID, given the current signed position and the venue chosen by the
// router. An unknown instrument or a non-positive mid yields a zero quote,
// which callers must treat as "do not quote".
func (e *Engine) ComputeQuote(view market.InstrumentMarketView, position float64, venue market.VenueID) Quote {
	p, ok := e.Params(view.ID)
	if !ok || view.MidPrice <= 0 {
		return Quote{Instrument: view.ID, Venue: venue}
	}

	spreadBP := clamp(p.BaseSpreadBP+p.VolatilityCoeff*(view.Volatility*10000), p.MinSpreadBP, p.MaxSpreadBP)
	spreadAbs := spreadBP * view.MidPrice / 10000

	var qTilde float64
	if p.MaxPosition > 0 {
		qTilde = position / p.MaxPosition
	}
	skew := p.InventoryCoeff * qTilde * spreadAbs

	bidPrice := view.MidPrice - spreadAbs/2 - skew
	askPrice := view.MidPrice + spreadAbs/2 - skew

	size := p.SizeBase * (1 - p.SizeInventoryScale*absF(qTilde))
	if floor := 0.1 * p.SizeBase; size < floor {
		size = floor
	}

	bidSize := size
	askSize := size
	if qTilde > 0.8 {
		bidSize = size * maxF(0.1, 1-qTilde)
	} else if qTilde < -0.8 {
		askSize = size * maxF(0.1, 1+qTilde)
	}

	return Quote{
		Instrument: view.ID,
		Venue:      venue,
		BidPrice:   bidPrice,
		AskPrice:   askPrice,
		BidSize:    bidSize,
		AskSize:    askSize,
		Timestamp:  e.clock(),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
