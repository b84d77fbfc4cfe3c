// Package metrics collects per-tick and per-fill observations during a
// backtest run and derives the summary statistics and report/CSV artifacts
// described in the run's output contract.
package metrics

import (
	"math"
	"sort"
	"sync"

	"quoteforge/market"
)

// Collector accumulates tick, quote, fill and cancel events for every
// instrument in a run and derives summaries on demand. It is safe for
// concurrent use, though the backtest driver only ever calls it from its
// single tick loop.
type Collector struct {
	mu sync.RWMutex

	ticks           map[market.InstrumentID][]TickMetric
	quoteCounts     map[market.InstrumentID]uint64
	fillCounts      map[market.InstrumentID]uint64
	cancelCounts    map[market.InstrumentID]uint64
	spreadCaptures  map[market.InstrumentID][]float64
	maxExposure     float64
}

// NewCollector builds an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		ticks:          make(map[market.InstrumentID][]TickMetric),
		quoteCounts:    make(map[market.InstrumentID]uint64),
		fillCounts:     make(map[market.InstrumentID]uint64),
		cancelCounts:   make(map[market.InstrumentID]uint64),
		spreadCaptures: make(map[market.InstrumentID][]float64),
	}
}

// RecordTick appends one tick's observed state for its instrument.
func (c *Collector) RecordTick(m TickMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks[m.Instrument] = append(c.ticks[m.Instrument], m)
}

// RecordFill counts a fill and records the spread it captured relative to
// mid at fill time.
func (c *Collector) RecordFill(id market.InstrumentID, spreadCaptured float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fillCounts[id]++
	c.spreadCaptures[id] = append(c.spreadCaptures[id], spreadCaptured)
}

// RecordQuote counts one requote attempt for the instrument, whether or
// not it left a resting order.
func (c *Collector) RecordQuote(id market.InstrumentID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quoteCounts[id]++
}

// RecordCancel counts one order cancellation for the instrument.
func (c *Collector) RecordCancel(id market.InstrumentID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCounts[id]++
}

// RecordExposure folds a portfolio exposure sample into the running maximum
// absolute exposure seen over the run.
func (c *Collector) RecordExposure(exposure float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abs := math.Abs(exposure); abs > c.maxExposure {
		c.maxExposure = abs
	}
}

// InstrumentIDs returns every instrument that has recorded at least one
// tick, sorted ascending so callers get deterministic report ordering.
func (c *Collector) InstrumentIDs() []market.InstrumentID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instrumentIDsLocked()
}

func (c *Collector) instrumentIDsLocked() []market.InstrumentID {
	ids := make([]market.InstrumentID, 0, len(c.ticks))
	for id := range c.ticks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// InstrumentMetrics derives the summary statistics for one instrument from
// its full recorded tick history. An instrument with no ticks yields a
// zero-valued summary carrying its id.
func (c *Collector) InstrumentMetrics(id market.InstrumentID) InstrumentMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instrumentMetricsLocked(id)
}

func (c *Collector) instrumentMetricsLocked(id market.InstrumentID) InstrumentMetrics {
	m := InstrumentMetrics{ID: id}

	ticks := c.ticks[id]
	if len(ticks) == 0 {
		return m
	}

	var peakPnL, maxDD, maxPos, minPos float64
	m.PnLSeries = make([]float64, 0, len(ticks))
	m.InventorySeries = make([]float64, 0, len(ticks))

	for _, t := range ticks {
		total := t.RealizedPnL + t.UnrealizedPnL
		m.PnLSeries = append(m.PnLSeries, total)
		m.InventorySeries = append(m.InventorySeries, t.Position)

		if total > peakPnL {
			peakPnL = total
		}
		if dd := peakPnL - total; dd > maxDD {
			maxDD = dd
		}
		if t.Position > maxPos {
			maxPos = t.Position
		}
		if t.Position < minPos {
			minPos = t.Position
		}
	}

	m.RealizedPnL = ticks[len(ticks)-1].RealizedPnL
	m.MaxDrawdown = maxDD
	m.MaxPosition = maxPos
	m.MinPosition = minPos

	if len(m.PnLSeries) > 1 {
		returns := make([]float64, 0, len(m.PnLSeries)-1)
		for i := 1; i < len(m.PnLSeries); i++ {
			returns = append(returns, m.PnLSeries[i]-m.PnLSeries[i-1])
		}
		var mean float64
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))
		var sqSum float64
		for _, r := range returns {
			d := r - mean
			sqSum += d * d
		}
		stddev := math.Sqrt(sqSum / float64(len(returns)))
		if stddev > 1e-12 {
			m.SharpeApprox = (mean / stddev) * math.Sqrt(252.0)
		}
	}

	if sc := c.spreadCaptures[id]; len(sc) > 0 {
		var sum float64
		for _, v := range sc {
			sum += v
		}
		m.AvgSpreadCaptured = sum / float64(len(sc))
	}

	m.TotalQuotes = c.quoteCounts[id]
	m.TotalFills = c.fillCounts[id]
	m.TotalCancels = c.cancelCounts[id]

	return m
}

// GlobalMetrics rolls up realized P&L, quote/fill/cancel counts across
// every instrument, plus the run's peak absolute exposure.
func (c *Collector) GlobalMetrics() GlobalMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g := GlobalMetrics{MaxExposure: c.maxExposure}
	for _, id := range c.instrumentIDsLocked() {
		m := c.instrumentMetricsLocked(id)
		g.TotalPnL += m.RealizedPnL
		g.TotalQuotes += m.TotalQuotes
		g.TotalFills += m.TotalFills
		g.TotalCancels += m.TotalCancels
	}
	return g
}
