package risk

import (
	"sync"

	"quoteforge/market"
)

// TripLogger receives a message when a CircuitBreaker window trips. Its
// signature matches *slog.Logger's Warn method so the zero value (nil,
// meaning "don't log") and slog.Default() both satisfy it without an
// adapter — the deterministic core still never imports zap.
type TripLogger interface {
	Warn(msg string, args ...any)
}

// tickPrice is one observation in a circuit breaker window.
type tickPrice struct {
	tick  uint64
	price float64
}

// CircuitBreaker trips when an instrument's mid price moves by more than a
// configured fraction within a bounded number of ticks. Unlike the
// wall-clock breakers common in live trading, this one is indexed purely by
// tick count so it stays deterministic across backtest runs: the same
// input stream always trips (or doesn't) at the same tick.
//
// It implements Guard, so the controller can wire it in without any
// special-casing — it can only ever add a rejection on top of what
// CanQuote/WithinLimits already allowed, never bypass them.
type CircuitBreaker struct {
	mu sync.Mutex

	shortWindowTicks int
	shortThreshold   float64
	longWindowTicks  int
	longThreshold    float64

	windows map[market.InstrumentID][]tickPrice
	logger  TripLogger
}

// SetLogger attaches a TripLogger that OnTick warns through on every call
// that finds a window tripped. Passing nil (the default) silences trip
// logging entirely.
func (c *CircuitBreaker) SetLogger(logger TripLogger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// NewCircuitBreaker builds a breaker with a short and a long tick window,
// each with its own trip threshold expressed as a fractional price move
// (0.01 == 1%).
func NewCircuitBreaker(shortWindowTicks int, shortThreshold float64, longWindowTicks int, longThreshold float64) *CircuitBreaker {
	return &CircuitBreaker{
		shortWindowTicks: shortWindowTicks,
		shortThreshold:   shortThreshold,
		longWindowTicks:  longWindowTicks,
		longThreshold:    longThreshold,
		windows:          make(map[market.InstrumentID][]tickPrice),
	}
}

// OnTick records the instrument's mid price at the given tick and reports
// whether either window is currently tripped.
func (c *CircuitBreaker) OnTick(id market.InstrumentID, tick uint64, mid float64) (tripped bool, window string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := append(c.windows[id], tickPrice{tick, mid})
	if extra := len(buf) - c.longWindowTicks; c.longWindowTicks > 0 && extra > 0 {
		buf = buf[extra:]
	}
	c.windows[id] = buf

	if trip := changeExceeds(buf, c.shortWindowTicks, c.shortThreshold); trip {
		c.logTrip(id, tick, "short")
		return true, "short"
	}
	if trip := changeExceeds(buf, c.longWindowTicks, c.longThreshold); trip {
		c.logTrip(id, tick, "long")
		return true, "long"
	}
	return false, ""
}

// logTrip warns through the attached logger, if any. Called with c.mu
// already held.
func (c *CircuitBreaker) logTrip(id market.InstrumentID, tick uint64, window string) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("circuit breaker tripped", "instrument", id, "tick", tick, "window", window)
}

// Allow implements Guard: it denies quoting if the most recent OnTick call
// tripped either window for this instrument.
func (c *CircuitBreaker) Allow(id market.InstrumentID) error {
	c.mu.Lock()
	buf := c.windows[id]
	c.mu.Unlock()

	if changeExceeds(buf, c.shortWindowTicks, c.shortThreshold) ||
		changeExceeds(buf, c.longWindowTicks, c.longThreshold) {
		return ErrCircuitOpen
	}
	return nil
}

func changeExceeds(buf []tickPrice, windowTicks int, threshold float64) bool {
	if threshold <= 0 || windowTicks <= 0 || len(buf) == 0 {
		return false
	}
	start := len(buf) - windowTicks
	if start < 0 {
		start = 0
	}
	first := buf[start].price
	last := buf[len(buf)-1].price
	if first == 0 {
		return false
	}
	change := (last - first) / first
	return change > threshold || change < -threshold
}
