package risk

import (
	"sync"

	"quoteforge/market"
)

// DrawdownGuard denies quoting once P&L has fallen by more than the
// deepest crossed drawdown band from its running peak. Adapted from the
// teacher's DrawdownManager (risk/drawdown_manager.go): the teacher
// computed a partial position-reduction target (reduceQty, preferMaker)
// gated by a wall-clock time.Duration cooldown between actions. A Guard's
// Allow can only accept or reject a quote, not resize one, so this keeps
// the tiered-band severity check and the cooldown but simplifies the
// response to "stop quoting the instrument entirely until the drawdown
// recovers". OnTick re-evaluates the bands on every call and clears the
// trip on the first tick the drawdown is back under every band;
// CooldownTicks only spaces out refreshes of the recorded trip tick and
// does not change what OnTick or Allow return. The existing controller's
// cancel-then-requote loop then does the actual position unwind on the
// next tick a quote is allowed again.
type DrawdownGuard struct {
	mu sync.Mutex

	Bands         []float64 // ascending drawdown fractions, e.g. 0.05, 0.08, 0.12
	CooldownTicks uint64
	Source        PnLSource

	peak       map[market.InstrumentID]float64
	tripped    map[market.InstrumentID]bool
	lastTripAt map[market.InstrumentID]uint64
}

// NewDrawdownGuard builds a guard tracking Source's per-instrument P&L.
// bands need not be sorted.
func NewDrawdownGuard(bands []float64, cooldownTicks uint64, source PnLSource) *DrawdownGuard {
	return &DrawdownGuard{
		Bands:         bands,
		CooldownTicks: cooldownTicks,
		Source:        source,
		peak:          make(map[market.InstrumentID]float64),
		tripped:       make(map[market.InstrumentID]bool),
		lastTripAt:    make(map[market.InstrumentID]uint64),
	}
}

// OnTick implements TickObserver: it refreshes the instrument's running
// P&L peak and re-evaluates which band, if any, its drawdown has crossed.
func (d *DrawdownGuard) OnTick(id market.InstrumentID, tick uint64, _ float64) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Source == nil {
		return false, ""
	}
	pnl := d.Source.NetPnL(id)
	if pnl > d.peak[id] {
		d.peak[id] = pnl
	}
	peak := d.peak[id]
	if peak <= 0 {
		d.tripped[id] = false
		return false, ""
	}

	drawdown := (peak - pnl) / peak
	band := d.highestCrossedBand(drawdown)
	if band == 0 {
		d.tripped[id] = false
		return false, ""
	}
	if d.tripped[id] && tick-d.lastTripAt[id] < d.CooldownTicks {
		return true, "drawdown"
	}
	d.tripped[id] = true
	d.lastTripAt[id] = tick
	return true, "drawdown"
}

func (d *DrawdownGuard) highestCrossedBand(drawdown float64) float64 {
	var highest float64
	for _, b := range d.Bands {
		if drawdown >= b && b > highest {
			highest = b
		}
	}
	return highest
}

// Allow implements Guard: it denies quoting while the most recent OnTick
// call left the instrument tripped.
func (d *DrawdownGuard) Allow(id market.InstrumentID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tripped[id] {
		return ErrDrawdownExceeded
	}
	return nil
}
