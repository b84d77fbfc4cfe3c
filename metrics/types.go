package metrics

import "quoteforge/market"

// TickMetric is one instrument's recorded state at a single tick.
type TickMetric struct {
	Timestamp      uint64              `json:"timestamp"`
	Instrument     market.InstrumentID `json:"instrument"`
	MidPrice       float64             `json:"mid_price"`
	Position       float64             `json:"position"`
	RealizedPnL    float64             `json:"realized_pnl"`
	UnrealizedPnL  float64             `json:"unrealized_pnl"`
	BidPrice       float64             `json:"bid_price"`
	AskPrice       float64             `json:"ask_price"`
	SpreadCaptured float64             `json:"spread_captured"`
}

// InstrumentMetrics is the derived summary for one instrument, computed
// from its full tick history.
type InstrumentMetrics struct {
	ID                market.InstrumentID
	RealizedPnL       float64
	MaxDrawdown       float64
	SharpeApprox      float64
	AvgSpreadCaptured float64
	TotalQuotes       uint64
	TotalFills        uint64
	TotalCancels      uint64
	MaxPosition       float64
	MinPosition       float64

	// PnLSeries and InventorySeries expose the raw per-tick series the
	// summary above was derived from, for callers that want to chart them.
	PnLSeries       []float64
	InventorySeries []float64
}

// GlobalMetrics is the run-wide rollup across all instruments.
type GlobalMetrics struct {
	TotalPnL     float64
	MaxExposure  float64
	TotalQuotes  uint64
	TotalCancels uint64
	TotalFills   uint64
}
