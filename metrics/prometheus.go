package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quoteforge/market"
)

// Exporter mirrors recorded ticks, fills, quotes and cancels onto
// Prometheus collectors registered against its own registry, so a
// backtest run can be scraped the same way the live trader is. It never
// feeds back into Collector's own state — GenerateReport and WriteCSV
// are computed purely from Collector's internal series regardless of
// whether an Exporter is attached.
type Exporter struct {
	registry *prometheus.Registry

	midPrice     *prometheus.GaugeVec
	position     *prometheus.GaugeVec
	realizedPnL  *prometheus.GaugeVec
	quotesTotal  *prometheus.CounterVec
	fillsTotal   *prometheus.CounterVec
	cancelsTotal *prometheus.CounterVec
}

// NewExporter builds an Exporter with its own registry, so multiple
// backtest runs in the same process (e.g. in tests) never collide on
// global collector registration.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		midPrice: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mm_mid_price",
			Help: "Last observed cross-venue mid price per instrument.",
		}, []string{"instrument"}),
		position: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mm_position",
			Help: "Current net position per instrument.",
		}, []string{"instrument"}),
		realizedPnL: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mm_realized_pnl",
			Help: "Realized P&L per instrument.",
		}, []string{"instrument"}),
		quotesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mm_quotes_total",
			Help: "Total requote attempts, one per processed snapshot.",
		}, []string{"instrument"}),
		fillsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mm_fills_total",
			Help: "Total fills per instrument.",
		}, []string{"instrument"}),
		cancelsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mm_cancels_total",
			Help: "Total order cancellations per instrument.",
		}, []string{"instrument"}),
	}
}

// ObserveTick mirrors one tick metric onto the exporter's gauges.
func (e *Exporter) ObserveTick(t TickMetric) {
	label := instrumentLabel(t.Instrument)
	e.midPrice.WithLabelValues(label).Set(t.MidPrice)
	e.position.WithLabelValues(label).Set(t.Position)
	e.realizedPnL.WithLabelValues(label).Set(t.RealizedPnL)
}

// ObserveQuote increments the requote counter for instrument.
func (e *Exporter) ObserveQuote(instrument market.InstrumentID) {
	e.quotesTotal.WithLabelValues(instrumentLabel(instrument)).Inc()
}

// ObserveFill increments the fill counter for instrument.
func (e *Exporter) ObserveFill(instrument market.InstrumentID) {
	e.fillsTotal.WithLabelValues(instrumentLabel(instrument)).Inc()
}

// ObserveCancel increments the cancel counter for instrument.
func (e *Exporter) ObserveCancel(instrument market.InstrumentID) {
	e.cancelsTotal.WithLabelValues(instrumentLabel(instrument)).Inc()
}

// Handler returns the http.Handler that serves this exporter's registry
// at whatever path the caller mounts it on.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func instrumentLabel(id market.InstrumentID) string {
	return strconv.FormatUint(uint64(id), 10)
}
