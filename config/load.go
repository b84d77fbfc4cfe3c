package config

import (
	"encoding/json"
	"fmt"
	"os"

	"quoteforge/execution"
	"quoteforge/market"
	"quoteforge/strategy"
)

// Load reads and validates a run configuration from path.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a run configuration from raw JSON bytes.
func Parse(raw []byte) (Config, error) {
	var root rootJSON
	if err := json.Unmarshal(raw, &root); err != nil {
		return Config{}, fmt.Errorf("parse config json: %w", err)
	}

	cfg := Config{
		DataFile:        root.DataFile,
		FillProbability: root.FillProbability,
	}

	if cb := root.CircuitBreaker; cb != nil {
		cfg.CircuitBreaker = &CircuitBreakerConfig{
			ShortWindowTicks: cb.ShortWindowTicks,
			ShortThreshold:   cb.ShortThreshold,
			LongWindowTicks:  cb.LongWindowTicks,
			LongThreshold:    cb.LongThreshold,
		}
	}
	if vl := root.VolumeLimit; vl != nil {
		cfg.VolumeLimit = &VolumeLimitConfig{
			SingleMax:   vl.SingleMax,
			WindowMax:   vl.WindowMax,
			WindowTicks: vl.WindowTicks,
			NetMax:      vl.NetMax,
		}
	}
	if dd := root.Drawdown; dd != nil {
		cfg.Drawdown = &DrawdownConfig{
			Bands:         dd.Bands,
			CooldownTicks: dd.CooldownTicks,
		}
	}
	if ar := root.AdaptiveRisk; ar != nil {
		cfg.AdaptiveRisk = &AdaptiveRiskConfig{
			MinNetMax: ar.MinNetMax, MaxNetMax: ar.MaxNetMax,
			MinSizeBase: ar.MinSizeBase, MaxSizeBase: ar.MaxSizeBase,
			MinMinSpreadBP: ar.MinMinSpreadBP, MaxMinSpreadBP: ar.MaxMinSpreadBP,
			AdverseLow: ar.AdverseLow, AdverseHigh: ar.AdverseHigh,
			AdjustFactor:        ar.AdjustFactor,
			AdjustIntervalTicks: ar.AdjustIntervalTicks,
			MinFills:            ar.MinFills,
		}
	}
	if sg := root.SpreadGuard; sg != nil {
		cfg.SpreadGuard = &SpreadGuardConfig{MaxSpreadRatio: sg.MaxSpreadRatio}
	}

	for _, v := range root.Venues {
		cfg.Venues = append(cfg.Venues, execution.VenueConfig{
			ID:              market.VenueID(v.ID),
			Name:            v.Name,
			MakerFeeBP:      v.MakerFeeBP,
			TakerFeeBP:      v.TakerFeeBP,
			LatencyMs:       v.LatencyMs,
			CancelPenaltyBP: v.CancelPenaltyBP,
		})
	}

	for _, inst := range root.Instruments {
		cfg.Instruments = append(cfg.Instruments, InstrumentConfig{
			ID:       market.InstrumentID(inst.ID),
			Symbol:   inst.Symbol,
			TickSize: inst.TickSize,
			LotSize:  inst.LotSize,
			Params:   resolveParams(inst),
		})
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// resolveParams builds an instrument's MarketMakingParams starting from
// DefaultParams, applying the instrument's own base_spread_bp and
// inventory_limit convenience fields, and finally layering any explicit
// overrides from its params block.
func resolveParams(inst instrumentJSON) strategy.MarketMakingParams {
	p := strategy.DefaultParams()

	if inst.BaseSpreadBP > 0 {
		p.BaseSpreadBP = inst.BaseSpreadBP
	}
	if inst.InventoryLimit > 0 {
		p.MaxPosition = inst.InventoryLimit
	}

	if o := inst.Params; o != nil {
		if o.BaseSpreadBP != nil {
			p.BaseSpreadBP = *o.BaseSpreadBP
		}
		if o.MinSpreadBP != nil {
			p.MinSpreadBP = *o.MinSpreadBP
		}
		if o.MaxSpreadBP != nil {
			p.MaxSpreadBP = *o.MaxSpreadBP
		}
		if o.VolatilityCoeff != nil {
			p.VolatilityCoeff = *o.VolatilityCoeff
		}
		if o.InventoryCoeff != nil {
			p.InventoryCoeff = *o.InventoryCoeff
		}
		if o.SizeBase != nil {
			p.SizeBase = *o.SizeBase
		}
		if o.SizeInventoryScale != nil {
			p.SizeInventoryScale = *o.SizeInventoryScale
		}
		if o.QuoteRefreshMs != nil {
			p.QuoteRefreshMs = *o.QuoteRefreshMs
		}
		if o.MaxPosition != nil {
			p.MaxPosition = *o.MaxPosition
		}
	}

	return p
}

// Validate checks structural invariants Parse can't express through types
// alone: required fields, positive tick/lot sizes, and unique instrument
// ids.
func Validate(cfg Config) error {
	if len(cfg.Instruments) == 0 {
		return fmt.Errorf("config: at least one instrument is required")
	}

	seen := make(map[market.InstrumentID]bool, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		if inst.ID == 0 {
			return fmt.Errorf("config: instrument id 0 is reserved")
		}
		if seen[inst.ID] {
			return fmt.Errorf("config: duplicate instrument id %d", inst.ID)
		}
		seen[inst.ID] = true

		if inst.TickSize <= 0 {
			return fmt.Errorf("config: instrument %d tick_size must be > 0", inst.ID)
		}
		if inst.LotSize <= 0 {
			return fmt.Errorf("config: instrument %d lot_size must be > 0", inst.ID)
		}
		if inst.Params.MaxPosition <= 0 {
			return fmt.Errorf("config: instrument %d inventory_limit/max_position must be > 0", inst.ID)
		}
		if inst.Params.BaseSpreadBP <= 0 {
			return fmt.Errorf("config: instrument %d base_spread_bp must be > 0", inst.ID)
		}
		if inst.Params.MinSpreadBP > inst.Params.MaxSpreadBP {
			return fmt.Errorf("config: instrument %d min_spread_bp exceeds max_spread_bp", inst.ID)
		}
	}

	if cb := cfg.CircuitBreaker; cb != nil {
		if cb.ShortWindowTicks <= 0 && cb.LongWindowTicks <= 0 {
			return fmt.Errorf("config: circuit_breaker needs at least one positive window")
		}
		if cb.ShortWindowTicks > 0 && cb.ShortThreshold <= 0 {
			return fmt.Errorf("config: circuit_breaker short_threshold must be > 0 when short_window_ticks is set")
		}
		if cb.LongWindowTicks > 0 && cb.LongThreshold <= 0 {
			return fmt.Errorf("config: circuit_breaker long_threshold must be > 0 when long_window_ticks is set")
		}
	}

	if vl := cfg.VolumeLimit; vl != nil {
		if vl.SingleMax <= 0 && vl.WindowMax <= 0 && vl.NetMax <= 0 {
			return fmt.Errorf("config: volume_limit needs at least one positive cap")
		}
		if vl.WindowMax > 0 && vl.WindowTicks == 0 {
			return fmt.Errorf("config: volume_limit window_ticks must be > 0 when window_max is set")
		}
	}

	if dd := cfg.Drawdown; dd != nil {
		if len(dd.Bands) == 0 {
			return fmt.Errorf("config: drawdown needs at least one band")
		}
		for _, b := range dd.Bands {
			if b <= 0 || b >= 1 {
				return fmt.Errorf("config: drawdown bands must be fractions in (0, 1)")
			}
		}
	}

	if ar := cfg.AdaptiveRisk; ar != nil {
		if ar.AdjustFactor <= 0 || ar.AdjustFactor >= 1 {
			return fmt.Errorf("config: adaptive_risk adjust_factor must be in (0, 1)")
		}
		if ar.AdverseLow >= ar.AdverseHigh {
			return fmt.Errorf("config: adaptive_risk adverse_low must be < adverse_high")
		}
	}

	if sg := cfg.SpreadGuard; sg != nil && sg.MaxSpreadRatio <= 0 {
		return fmt.Errorf("config: spread_guard max_spread_ratio must be > 0")
	}

	seenVenue := make(map[market.VenueID]bool, len(cfg.Venues))
	for _, v := range cfg.Venues {
		if v.ID == 0 {
			return fmt.Errorf("config: venue id 0 is reserved for \"no venue\"")
		}
		if seenVenue[v.ID] {
			return fmt.Errorf("config: duplicate venue id %d", v.ID)
		}
		seenVenue[v.ID] = true
	}

	return nil
}
