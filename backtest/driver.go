// Package backtest wires the market, strategy, execution, risk and
// controller packages into the single-threaded tick loop that replays a
// book stream (loaded or synthetic) and records the resulting metrics.
package backtest

import (
	"fmt"

	"quoteforge/controller"
	"quoteforge/execution"
	"quoteforge/market"
	"quoteforge/metrics"
	"quoteforge/risk"
	"quoteforge/strategy"
)

// InstrumentSpec pairs an instrument id with the quoting parameters it
// should run under for the duration of the backtest.
type InstrumentSpec struct {
	ID     market.InstrumentID
	Params strategy.MarketMakingParams
}

// Config is everything a Driver needs to run: which instruments to quote
// and with what params, which venues are available to route to, and the
// probability an at-the-touch resting order fills on a given tick.
//
// FillProbability is accepted for schema compatibility with the
// reference config format but is not applied by SimGateway, which fills
// deterministically whenever the book crosses a resting order's price;
// introducing a probabilistic skip there would make replays
// non-reproducible for the same input stream.
type Config struct {
	Instruments     []InstrumentSpec
	Venues          []execution.VenueConfig
	FillProbability float64
}

// Driver owns one full pipeline instance: aggregator, risk manager, quote
// engine, router, simulated gateway, controller and metrics collector. It
// replays a snapshot stream through them one tick at a time.
type Driver struct {
	aggregator *market.Aggregator
	risk       *risk.Manager
	engine     *strategy.Engine
	router     *execution.Router
	gateway    *execution.SimGateway
	controller *controller.Controller
	collector  *metrics.Collector

	instrumentIDs []market.InstrumentID
	tick          uint64
	fillSeq       uint64

	tickListeners      []func(metrics.TickMetric)
	fillListeners      []func(seq uint64, instrument market.InstrumentID, side market.Side, price float64, tick uint64)
	sizedFillListeners []func(instrument market.InstrumentID, signedQty float64)
	quoteListeners     []func(instrument market.InstrumentID)
	cancelListeners    []func(instrument market.InstrumentID)
}

// AddTickListener registers a callback invoked with every tick metric
// right after it's recorded, e.g. to stream it out over a websocket.
func (d *Driver) AddTickListener(fn func(metrics.TickMetric)) {
	d.tickListeners = append(d.tickListeners, fn)
}

// AddFillListener registers a callback invoked for every fill, in
// addition to the risk/metrics bookkeeping the driver always does, e.g.
// to feed a post-trade adverse-selection analyzer.
func (d *Driver) AddFillListener(fn func(seq uint64, instrument market.InstrumentID, side market.Side, price float64, tick uint64)) {
	d.fillListeners = append(d.fillListeners, fn)
}

// AddQuoteListener registers a callback invoked every time the controller
// attempts to requote an instrument, e.g. to drive a requote-rate counter.
func (d *Driver) AddQuoteListener(fn func(instrument market.InstrumentID)) {
	d.quoteListeners = append(d.quoteListeners, fn)
}

// AddCancelListener registers a callback invoked every time a resting
// order is canceled, e.g. to drive a cancel-rate counter.
func (d *Driver) AddCancelListener(fn func(instrument market.InstrumentID)) {
	d.cancelListeners = append(d.cancelListeners, fn)
}

// AddSizedFillListener registers a callback invoked with a fill's signed
// quantity, for observers (like a VolumeLimiter) that need the size
// AddFillListener's callback signature has no room for.
func (d *Driver) AddSizedFillListener(fn func(instrument market.InstrumentID, signedQty float64)) {
	d.sizedFillListeners = append(d.sizedFillListeners, fn)
}

// NewDriver builds a Driver from cfg. guardFactory optionally builds an
// additional pre-trade Guard (e.g. a CircuitBreaker, or a MultiGuard
// combining several) once the Driver's own risk.Manager and aggregator
// exist, since guards like VolumeLimiter/DrawdownGuard and SpreadGuard
// need them as a PositionSource/PnLSource/ViewSource. Pass nil for no
// additional guard.
func NewDriver(cfg Config, guardFactory func(*risk.Manager, *market.Aggregator) risk.Guard) *Driver {
	aggregator := market.NewAggregator(market.DefaultEWMAAlpha)

	params := make(map[market.InstrumentID]strategy.MarketMakingParams, len(cfg.Instruments))
	ids := make([]market.InstrumentID, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		params[inst.ID] = inst.Params
		ids = append(ids, inst.ID)
	}

	riskMgr := risk.NewManager(params)

	engine := strategy.NewEngine(nil)
	for _, inst := range cfg.Instruments {
		engine.Configure(inst.ID, inst.Params)
	}

	venues := cfg.Venues
	if len(venues) == 0 {
		venues = []execution.VenueConfig{{
			ID: 1, Name: "SIM", MakerFeeBP: 1.0, TakerFeeBP: 2.0,
			LatencyMs: 1.0, CancelPenaltyBP: 0.1,
		}}
	}
	router := execution.NewRouter(venues)

	collector := metrics.NewCollector()

	gateway := execution.NewSimGateway(nil)

	d := &Driver{
		aggregator:    aggregator,
		risk:          riskMgr,
		engine:        engine,
		router:        router,
		gateway:       gateway,
		collector:     collector,
		instrumentIDs: ids,
	}

	gateway.SetCancelCallback(func(instrument market.InstrumentID, _ market.VenueID) {
		collector.RecordCancel(instrument)
		for _, fn := range d.cancelListeners {
			fn(instrument)
		}
	})

	gateway.SetFillCallback(func(instrument market.InstrumentID, venue market.VenueID, price, signedQty float64) {
		riskMgr.OnFill(instrument, price, signedQty)
		view := aggregator.GetView(instrument)
		var spreadCaptured float64
		if view.MidPrice > 0 {
			if signedQty > 0 {
				spreadCaptured = view.MidPrice - price
			} else {
				spreadCaptured = price - view.MidPrice
			}
		}
		collector.RecordFill(instrument, spreadCaptured)

		for _, fn := range d.sizedFillListeners {
			fn(instrument, signedQty)
		}

		d.fillSeq++
		side := market.SideBuy
		if signedQty < 0 {
			side = market.SideSell
		}
		for _, fn := range d.fillListeners {
			fn(d.fillSeq, instrument, side, price, d.tick)
		}
	})

	var guard risk.Guard
	if guardFactory != nil {
		guard = guardFactory(riskMgr, aggregator)
	}
	d.controller = controller.New(ids, aggregator, riskMgr, engine, router, gateway, guard)
	return d
}

// RiskManager returns the driver's position/P&L ledger, so a caller
// wiring an AdaptiveRiskManager can read positions and P&L the same way
// the controller's guards do.
func (d *Driver) RiskManager() *risk.Manager {
	return d.risk
}

// Metrics returns the collector accumulating this run's observations.
func (d *Driver) Metrics() *metrics.Collector {
	return d.collector
}

// UpdateParams replaces the quoting params an instrument uses starting
// from the next tick. It's how a config hot-reloader feeds a live
// parameter change into an in-progress run without touching the tick
// loop itself.
func (d *Driver) UpdateParams(id market.InstrumentID, params strategy.MarketMakingParams) {
	d.engine.Configure(id, params)
}

// Run replays snapshots through the pipeline one tick at a time.
func (d *Driver) Run(snapshots []market.VenueBookSnapshot) {
	for _, snap := range snapshots {
		d.tick++
		d.controller.OnMarketData(snap, d.tick)
		d.gateway.CheckFills(snap)

		d.collector.RecordQuote(snap.Instrument)
		for _, fn := range d.quoteListeners {
			fn(snap.Instrument)
		}

		view := d.aggregator.GetView(snap.Instrument)
		pos := d.risk.Position(snap.Instrument)

		tm := metrics.TickMetric{
			Timestamp:      d.tick,
			Instrument:     snap.Instrument,
			MidPrice:       view.MidPrice,
			Position:       pos.Quantity,
			RealizedPnL:    pos.RealizedPnL,
			UnrealizedPnL:  pos.UnrealizedPnL,
			BidPrice:       view.MidPrice - view.Spread/2.0,
			AskPrice:       view.MidPrice + view.Spread/2.0,
			SpreadCaptured: 0.0,
		}
		d.collector.RecordTick(tm)
		for _, fn := range d.tickListeners {
			fn(tm)
		}

		mids := make(map[market.InstrumentID]float64, len(d.instrumentIDs))
		for _, id := range d.instrumentIDs {
			if d.aggregator.HasView(id) {
				mids[id] = d.aggregator.GetView(id).MidPrice
			}
		}
		d.risk.UpdateUnrealized(mids)
		d.collector.RecordExposure(d.risk.Portfolio().NetExposure(mids))
	}
}

// RunCSVFile loads a snapshot stream from path and replays it.
func (d *Driver) RunCSVFile(path string) error {
	snapshots, err := LoadCSVFile(path)
	if err != nil {
		return fmt.Errorf("load csv data: %w", err)
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("no data loaded from %s", path)
	}
	d.Run(snapshots)
	return nil
}

// RunSynthetic generates a deterministic synthetic book stream and
// replays it.
func (d *Driver) RunSynthetic(numTicks, numInstruments, numVenues int) {
	d.Run(GenerateSynthetic(numTicks, numInstruments, numVenues))
}
