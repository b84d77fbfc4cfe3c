package risk

import (
	"sync"

	"quoteforge/posttrade"
	"quoteforge/strategy"
)

// AdaptiveConfig bounds how far an AdaptiveRiskManager may move a market's
// baseline MarketMakingParams in response to observed adverse selection.
type AdaptiveConfig struct {
	MinNetMax, MaxNetMax           float64
	MinSizeBase, MaxSizeBase       float64
	MinMinSpreadBP, MaxMinSpreadBP float64

	AdverseLow, AdverseHigh float64 // rate thresholds that relax/tighten params
	AdjustFactor            float64 // fractional step applied per adjustment
	AdjustIntervalTicks     uint64
	MinFills                int // Stats().AnalyzedFills required before adjusting
}

// DefaultAdaptiveConfig mirrors the teacher's AdaptiveConfig defaults
// (risk/adaptive.go), translating its wall-clock AdjustInterval into a
// tick count.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		MinNetMax: 0, MaxNetMax: 1e18,
		MinSizeBase: 0, MaxSizeBase: 1e18,
		MinMinSpreadBP: 0.1, MaxMinSpreadBP: 1e18,
		AdverseLow: 0.15, AdverseHigh: 0.45,
		AdjustFactor:        0.1,
		AdjustIntervalTicks: 100,
		MinFills:            5,
	}
}

// AdaptiveRiskManager widens spreads and shrinks size/position caps when
// the post-trade analyzer reports rising adverse selection, and relaxes
// them back when it falls. Adapted from the teacher's AdaptiveRiskManager
// (risk/adaptive.go), which wrapped the same posttrade.Analyzer this
// module's posttrade package already carries over; the only structural
// change is that AdjustInterval is now expressed in ticks so the same
// backtest replay always adjusts at the same tick, and it tracks one set
// of parameters per instrument instead of the teacher's single global set.
type AdaptiveRiskManager struct {
	mu sync.Mutex

	analyzer *posttrade.Analyzer
	cfg      AdaptiveConfig

	netMax, sizeBase, minSpreadBP float64
	lastAdjustTick                uint64
	haveAdjusted                  bool
	lastRate                      float64
}

// NewAdaptiveRiskManager builds a manager seeded from base's MaxPosition,
// SizeBase and MinSpreadBP.
func NewAdaptiveRiskManager(analyzer *posttrade.Analyzer, base strategy.MarketMakingParams, cfg AdaptiveConfig) *AdaptiveRiskManager {
	return &AdaptiveRiskManager{
		analyzer:    analyzer,
		cfg:         cfg,
		netMax:      base.MaxPosition,
		sizeBase:    base.SizeBase,
		minSpreadBP: base.MinSpreadBP,
	}
}

// Update checks the analyzer's current stats and, once AdjustIntervalTicks
// have elapsed since the last adjustment and enough fills have been
// analyzed, tightens or relaxes the tracked parameters. It reports whether
// an adjustment actually happened.
func (a *AdaptiveRiskManager) Update(tick uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.haveAdjusted && tick-a.lastAdjustTick < a.cfg.AdjustIntervalTicks {
		return false
	}
	stats := a.analyzer.Stats()
	if stats.AnalyzedFills < a.cfg.MinFills {
		return false
	}

	a.lastAdjustTick = tick
	a.haveAdjusted = true
	a.lastRate = stats.AdverseSelectionRate

	switch {
	case stats.AdverseSelectionRate >= a.cfg.AdverseHigh:
		a.netMax = clamp(a.netMax*(1-a.cfg.AdjustFactor), a.cfg.MinNetMax, a.cfg.MaxNetMax)
		a.sizeBase = clamp(a.sizeBase*(1-a.cfg.AdjustFactor), a.cfg.MinSizeBase, a.cfg.MaxSizeBase)
		a.minSpreadBP = clamp(a.minSpreadBP*(1+a.cfg.AdjustFactor), a.cfg.MinMinSpreadBP, a.cfg.MaxMinSpreadBP)
	case stats.AdverseSelectionRate <= a.cfg.AdverseLow:
		a.netMax = clamp(a.netMax*(1+a.cfg.AdjustFactor), a.cfg.MinNetMax, a.cfg.MaxNetMax)
		a.sizeBase = clamp(a.sizeBase*(1+a.cfg.AdjustFactor), a.cfg.MinSizeBase, a.cfg.MaxSizeBase)
		a.minSpreadBP = clamp(a.minSpreadBP*(1-a.cfg.AdjustFactor), a.cfg.MinMinSpreadBP, a.cfg.MaxMinSpreadBP)
	default:
		return false
	}
	return true
}

// Apply overlays the manager's currently adjusted NetMax/SizeBase/
// MinSpreadBP onto p, widening MaxSpreadBP if needed to keep it above the
// adjusted floor.
func (a *AdaptiveRiskManager) Apply(p strategy.MarketMakingParams) strategy.MarketMakingParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	p.MaxPosition = a.netMax
	p.SizeBase = a.sizeBase
	p.MinSpreadBP = a.minSpreadBP
	if p.MinSpreadBP > p.MaxSpreadBP {
		p.MaxSpreadBP = p.MinSpreadBP
	}
	return p
}

// AverageAdverseRate returns the adverse selection rate observed at the
// most recent adjustment.
func (a *AdaptiveRiskManager) AverageAdverseRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRate
}

func clamp(v, lo, hi float64) float64 {
	if hi > 0 && v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}
