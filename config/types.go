// Package config loads and validates the JSON run configuration: which
// instruments to quote, on which venues, with what quoting parameters,
// and where to find (or how to synthesize) the input book stream.
package config

import (
	"quoteforge/execution"
	"quoteforge/market"
	"quoteforge/strategy"
)

// ParamsOverride carries an optional per-instrument override of any subset
// of MarketMakingParams. A nil field leaves the corresponding default (or
// the instrument-level base_spread_bp/inventory_limit convenience field)
// untouched.
type ParamsOverride struct {
	BaseSpreadBP       *float64 `json:"base_spread_bp,omitempty"`
	MinSpreadBP        *float64 `json:"min_spread_bp,omitempty"`
	MaxSpreadBP        *float64 `json:"max_spread_bp,omitempty"`
	VolatilityCoeff    *float64 `json:"volatility_coeff,omitempty"`
	InventoryCoeff     *float64 `json:"inventory_coeff,omitempty"`
	SizeBase           *float64 `json:"size_base,omitempty"`
	SizeInventoryScale *float64 `json:"size_inventory_scale,omitempty"`
	QuoteRefreshMs     *float64 `json:"quote_refresh_ms,omitempty"`
	MaxPosition        *float64 `json:"max_position,omitempty"`
}

// instrumentJSON is the on-disk shape of one instruments[] entry.
type instrumentJSON struct {
	ID             uint32          `json:"id"`
	Symbol         string          `json:"symbol"`
	TickSize       float64         `json:"tick_size"`
	LotSize        float64         `json:"lot_size"`
	BaseSpreadBP   float64         `json:"base_spread_bp"`
	InventoryLimit float64         `json:"inventory_limit"`
	Params         *ParamsOverride `json:"params,omitempty"`
}

// venueJSON is the on-disk shape of one venues[] entry.
type venueJSON struct {
	ID              uint8   `json:"id"`
	Name            string  `json:"name"`
	MakerFeeBP      float64 `json:"maker_fee_bp"`
	TakerFeeBP      float64 `json:"taker_fee_bp"`
	LatencyMs       float64 `json:"latency_ms"`
	CancelPenaltyBP float64 `json:"cancel_penalty_bp"`
}

// circuitBreakerJSON is the on-disk shape of the optional circuit_breaker
// block. A nil block leaves the run without a circuit breaker.
type circuitBreakerJSON struct {
	ShortWindowTicks int     `json:"short_window_ticks"`
	ShortThreshold   float64 `json:"short_threshold"`
	LongWindowTicks  int     `json:"long_window_ticks"`
	LongThreshold    float64 `json:"long_threshold"`
}

// volumeLimitJSON is the on-disk shape of the optional volume_limit block,
// grounded on the teacher's LimitChecker (risk/limit.go).
type volumeLimitJSON struct {
	SingleMax   float64 `json:"single_max"`
	WindowMax   float64 `json:"window_max"`
	WindowTicks uint64  `json:"window_ticks"`
	NetMax      float64 `json:"net_max"`
}

// drawdownJSON is the on-disk shape of the optional drawdown block,
// grounded on the teacher's DrawdownManager (risk/drawdown_manager.go).
type drawdownJSON struct {
	Bands         []float64 `json:"bands"`
	CooldownTicks uint64    `json:"cooldown_ticks"`
}

// adaptiveRiskJSON is the on-disk shape of the optional adaptive_risk
// block, grounded on the teacher's AdaptiveRiskManager (risk/adaptive.go).
type adaptiveRiskJSON struct {
	MinNetMax           float64 `json:"min_net_max"`
	MaxNetMax           float64 `json:"max_net_max"`
	MinSizeBase         float64 `json:"min_size_base"`
	MaxSizeBase         float64 `json:"max_size_base"`
	MinMinSpreadBP      float64 `json:"min_min_spread_bp"`
	MaxMinSpreadBP      float64 `json:"max_min_spread_bp"`
	AdverseLow          float64 `json:"adverse_low"`
	AdverseHigh         float64 `json:"adverse_high"`
	AdjustFactor        float64 `json:"adjust_factor"`
	AdjustIntervalTicks uint64  `json:"adjust_interval_ticks"`
	MinFills            int     `json:"min_fills"`
}

// spreadGuardJSON is the on-disk shape of the optional spread_guard block,
// grounded on the teacher's VWAPGuard (risk/vwap_spread.go).
type spreadGuardJSON struct {
	MaxSpreadRatio float64 `json:"max_spread_ratio"`
}

// rootJSON is the on-disk shape of the whole config file.
type rootJSON struct {
	Instruments     []instrumentJSON    `json:"instruments"`
	Venues          []venueJSON         `json:"venues"`
	DataFile        string              `json:"data_file"`
	FillProbability float64             `json:"fill_probability"`
	CircuitBreaker  *circuitBreakerJSON `json:"circuit_breaker,omitempty"`
	VolumeLimit     *volumeLimitJSON    `json:"volume_limit,omitempty"`
	Drawdown        *drawdownJSON       `json:"drawdown,omitempty"`
	AdaptiveRisk    *adaptiveRiskJSON   `json:"adaptive_risk,omitempty"`
	SpreadGuard     *spreadGuardJSON    `json:"spread_guard,omitempty"`
}

// CircuitBreakerConfig parameterizes a risk.CircuitBreaker: a short and a
// long tick window, each with its own trip threshold expressed as a
// fractional mid-price move (0.01 == 1%).
type CircuitBreakerConfig struct {
	ShortWindowTicks int
	ShortThreshold   float64
	LongWindowTicks  int
	LongThreshold    float64
}

// VolumeLimitConfig parameterizes a risk.VolumeLimiter. Any field left at
// zero disables that particular check.
type VolumeLimitConfig struct {
	SingleMax   float64
	WindowMax   float64
	WindowTicks uint64
	NetMax      float64
}

// DrawdownConfig parameterizes a risk.DrawdownGuard.
type DrawdownConfig struct {
	Bands         []float64
	CooldownTicks uint64
}

// AdaptiveRiskConfig parameterizes a risk.AdaptiveRiskManager built per
// instrument from the shared post-trade analyzer.
type AdaptiveRiskConfig struct {
	MinNetMax, MaxNetMax           float64
	MinSizeBase, MaxSizeBase       float64
	MinMinSpreadBP, MaxMinSpreadBP float64
	AdverseLow, AdverseHigh        float64
	AdjustFactor                   float64
	AdjustIntervalTicks            uint64
	MinFills                       int
}

// SpreadGuardConfig parameterizes a risk.SpreadGuard.
type SpreadGuardConfig struct {
	MaxSpreadRatio float64
}

// InstrumentConfig is one instrument's fully-resolved runtime
// configuration: identity, tick/lot size, and its final quoting params
// with defaults and overrides already applied.
type InstrumentConfig struct {
	ID       market.InstrumentID
	Symbol   string
	TickSize float64
	LotSize  float64
	Params   strategy.MarketMakingParams
}

// Config is the fully-resolved run configuration.
type Config struct {
	Instruments     []InstrumentConfig
	Venues          []execution.VenueConfig
	DataFile        string
	FillProbability float64
	CircuitBreaker  *CircuitBreakerConfig
	VolumeLimit     *VolumeLimitConfig
	Drawdown        *DrawdownConfig
	AdaptiveRisk    *AdaptiveRiskConfig
	SpreadGuard     *SpreadGuardConfig
}
