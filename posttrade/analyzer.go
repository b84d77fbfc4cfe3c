// Package posttrade measures adverse selection: whether the market moved
// against a fill in the ticks immediately following it. Everything here is
// driven by the tick index the backtest driver already advances, not wall
// clock time, so the same input stream always yields the same stats.
package posttrade

import (
	"sync"

	"quoteforge/market"
)

// FillRecord tracks one fill and the mid prices observed at its short and
// long look-ahead horizons, once those ticks have been reached.
type FillRecord struct {
	SeqID      uint64
	Instrument market.InstrumentID
	Side       market.Side
	FillPrice  float64
	FillTick   uint64

	PriceAfterShort float64
	PriceAfterLong  float64
	ShortObserved   bool
	LongObserved    bool
}

// Stats summarizes adverse selection across every fill whose horizons have
// both been observed.
type Stats struct {
	AdverseSelectionRate float64
	AvgPnLShort          float64
	AvgPnLLong           float64
	TotalFills           int
	AnalyzedFills        int
}

// Analyzer accumulates fill records and, as OnTick advances past a
// record's short/long horizon, samples the instrument's mid at that tick.
type Analyzer struct {
	mu sync.Mutex

	shortHorizonTicks uint64
	longHorizonTicks  uint64

	fills map[uint64]*FillRecord
}

// NewAnalyzer builds an Analyzer that looks shortHorizonTicks and
// longHorizonTicks ticks past each fill.
func NewAnalyzer(shortHorizonTicks, longHorizonTicks uint64) *Analyzer {
	return &Analyzer{
		shortHorizonTicks: shortHorizonTicks,
		longHorizonTicks:  longHorizonTicks,
		fills:             make(map[uint64]*FillRecord),
	}
}

// OnFill registers a new fill to track, keyed by its fill sequence id.
func (a *Analyzer) OnFill(id uint64, instrument market.InstrumentID, side market.Side, price float64, tick uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fills[id] = &FillRecord{
		SeqID:      id,
		Instrument: instrument,
		Side:       side,
		FillPrice:  price,
		FillTick:   tick,
	}
}

// OnTick samples mid for instrument into any pending fill record whose
// short or long horizon has just been reached or passed.
func (a *Analyzer) OnTick(instrument market.InstrumentID, tick uint64, mid float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.fills {
		if r.Instrument != instrument {
			continue
		}
		if !r.ShortObserved && tick >= r.FillTick+a.shortHorizonTicks {
			r.PriceAfterShort = mid
			r.ShortObserved = true
		}
		if !r.LongObserved && tick >= r.FillTick+a.longHorizonTicks {
			r.PriceAfterLong = mid
			r.LongObserved = true
		}
	}
}

// Stats computes adverse-selection statistics over every fill whose short
// and long horizons have both been observed. Positive PnL means the
// market moved against the direction the fill took (adverse selection).
func (a *Analyzer) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := Stats{TotalFills: len(a.fills)}
	if len(a.fills) == 0 {
		return stats
	}

	var adverseCount int
	var totalShort, totalLong float64

	for _, r := range a.fills {
		if !r.ShortObserved || !r.LongObserved || r.FillPrice == 0 {
			continue
		}

		var pnlShort, pnlLong float64
		switch r.Side {
		case market.SideBuy:
			pnlShort = (r.FillPrice - r.PriceAfterShort) / r.FillPrice
			pnlLong = (r.FillPrice - r.PriceAfterLong) / r.FillPrice
		case market.SideSell:
			pnlShort = (r.PriceAfterShort - r.FillPrice) / r.FillPrice
			pnlLong = (r.PriceAfterLong - r.FillPrice) / r.FillPrice
		}

		stats.AnalyzedFills++
		totalShort += pnlShort
		totalLong += pnlLong
		if pnlShort > 0 {
			adverseCount++
		}
	}

	if stats.AnalyzedFills > 0 {
		stats.AdverseSelectionRate = float64(adverseCount) / float64(stats.AnalyzedFills)
		stats.AvgPnLShort = totalShort / float64(stats.AnalyzedFills)
		stats.AvgPnLLong = totalLong / float64(stats.AnalyzedFills)
	}

	return stats
}

// Prune drops fill records whose long horizon lies more than
// retentionTicks in the past, bounding memory over a long run.
func (a *Analyzer) Prune(currentTick, retentionTicks uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, r := range a.fills {
		horizon := r.FillTick + a.longHorizonTicks
		if currentTick > horizon && currentTick-horizon > retentionTicks {
			delete(a.fills, id)
		}
	}
}
