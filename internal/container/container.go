// Package container wires config, logging, the backtest driver and its
// optional observers (Prometheus exporter, tick streaming, post-trade
// analysis) into one buildable, startable unit, the way the teacher's own
// container staged construction into buildInfrastructure/buildGateway/
// buildCoreServices before registering everything with a
// LifecycleManager.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.uber.org/zap"

	"quoteforge/backtest"
	"quoteforge/config"
	"quoteforge/infrastructure/logger"
	"quoteforge/market"
	"quoteforge/metrics"
	"quoteforge/posttrade"
	"quoteforge/risk"
	"quoteforge/strategy"
	"quoteforge/streaming"
)

// Options configures which optional observers Build attaches. The empty
// value builds a container with none of them, matching the "backtest
// driver runs identically with zero subscribers" contract.
type Options struct {
	ConfigPath  string
	Ticks       int
	DataPath    string
	MetricsAddr string
	StreamAddr  string
	Watch       bool

	AdverseSelectionShortTicks uint64
	AdverseSelectionLongTicks  uint64
}

// Container owns one fully-wired backtest run: its driver, the config it
// was built from, and whichever optional observers were requested.
type Container struct {
	opts Options
	cfg  config.Config
	log  *logger.Logger

	driver   *backtest.Driver
	exporter *metrics.Exporter
	stream   *streaming.Broadcaster
	analyzer *posttrade.Analyzer

	metricsSrv *http.Server
	streamSrv  *http.Server

	watchCancel context.CancelFunc

	lifecycle *LifecycleManager
}

// New creates a Container. Call Build before Start.
func New(opts Options) *Container {
	return &Container{opts: opts, lifecycle: NewLifecycleManager()}
}

// Build loads and validates configuration, constructs the logger, the
// backtest driver, and any observers Options requested, then registers
// their HTTP components with the lifecycle manager.
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}
	if err := c.buildCoreServices(); err != nil {
		return fmt.Errorf("build core services failed: %w", err)
	}
	c.registerLifecycleComponents()
	c.log.Info("container built")
	return nil
}

func (c *Container) buildInfrastructure() error {
	logCfg := logger.DefaultConfig()
	logCfg.Format = "console"

	l, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}
	c.log = l.WithFields(map[string]interface{}{"config_path": c.opts.ConfigPath})

	cfg, err := config.Load(c.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	c.cfg = cfg

	c.log.Info("infrastructure built")
	return nil
}

func (c *Container) buildCoreServices() error {
	driverCfg := backtest.Config{
		Venues:          c.cfg.Venues,
		FillProbability: c.cfg.FillProbability,
	}
	for _, inst := range c.cfg.Instruments {
		driverCfg.Instruments = append(driverCfg.Instruments, backtest.InstrumentSpec{
			ID:     inst.ID,
			Params: inst.Params,
		})
	}

	var volumeLimiter *risk.VolumeLimiter
	c.driver = backtest.NewDriver(driverCfg, func(riskMgr *risk.Manager, aggregator *market.Aggregator) risk.Guard {
		var guards []risk.Guard
		if cb := c.cfg.CircuitBreaker; cb != nil {
			breaker := risk.NewCircuitBreaker(cb.ShortWindowTicks, cb.ShortThreshold, cb.LongWindowTicks, cb.LongThreshold)
			breaker.SetLogger(slog.Default())
			guards = append(guards, breaker)
		}
		if vl := c.cfg.VolumeLimit; vl != nil {
			volumeLimiter = risk.NewVolumeLimiter(vl.SingleMax, vl.WindowMax, vl.WindowTicks, vl.NetMax, riskMgr)
			guards = append(guards, volumeLimiter)
		}
		if dd := c.cfg.Drawdown; dd != nil {
			guards = append(guards, risk.NewDrawdownGuard(dd.Bands, dd.CooldownTicks, riskMgr))
		}
		if sg := c.cfg.SpreadGuard; sg != nil {
			guards = append(guards, &risk.SpreadGuard{MaxSpreadRatio: sg.MaxSpreadRatio, Views: aggregator})
		}
		if len(guards) == 0 {
			return nil
		}
		return risk.MultiGuard{Guards: guards}
	})
	if volumeLimiter != nil {
		c.driver.AddSizedFillListener(volumeLimiter.RecordFill)
	}

	c.driver.AddQuoteListener(func(instrument market.InstrumentID) {
		c.log.LogOrder("quote_sent", fmt.Sprintf("inst-%d", instrument), map[string]interface{}{
			"instrument": instrument,
		})
	})
	c.driver.AddCancelListener(func(instrument market.InstrumentID) {
		c.log.LogOrder("quote_canceled", fmt.Sprintf("inst-%d", instrument), map[string]interface{}{
			"instrument": instrument,
		})
	})
	c.driver.AddFillListener(func(seq uint64, instrument market.InstrumentID, side market.Side, price float64, tick uint64) {
		c.log.LogTrade("fill", map[string]interface{}{
			"seq": seq, "instrument": instrument, "side": side.String(), "price": price, "tick": tick,
		})
	})

	if c.opts.MetricsAddr != "" {
		c.exporter = metrics.NewExporter()
		c.driver.AddTickListener(c.exporter.ObserveTick)
		c.driver.AddQuoteListener(c.exporter.ObserveQuote)
		c.driver.AddCancelListener(c.exporter.ObserveCancel)
		c.driver.AddFillListener(func(_ uint64, instrument market.InstrumentID, _ market.Side, _ float64, _ uint64) {
			c.exporter.ObserveFill(instrument)
		})
	}

	if c.opts.StreamAddr != "" {
		c.stream = streaming.NewBroadcaster()
		c.driver.AddTickListener(c.stream.Publish)
	}

	shortTicks, longTicks := c.opts.AdverseSelectionShortTicks, c.opts.AdverseSelectionLongTicks
	if shortTicks == 0 {
		shortTicks = 1
	}
	if longTicks == 0 {
		longTicks = 5
	}
	c.analyzer = posttrade.NewAnalyzer(shortTicks, longTicks)
	c.driver.AddFillListener(c.analyzer.OnFill)
	c.driver.AddTickListener(func(t metrics.TickMetric) {
		c.analyzer.OnTick(t.Instrument, t.Timestamp, t.MidPrice)
	})

	if ar := c.cfg.AdaptiveRisk; ar != nil {
		cfg := risk.AdaptiveConfig{
			MinNetMax: ar.MinNetMax, MaxNetMax: ar.MaxNetMax,
			MinSizeBase: ar.MinSizeBase, MaxSizeBase: ar.MaxSizeBase,
			MinMinSpreadBP: ar.MinMinSpreadBP, MaxMinSpreadBP: ar.MaxMinSpreadBP,
			AdverseLow: ar.AdverseLow, AdverseHigh: ar.AdverseHigh,
			AdjustFactor:        ar.AdjustFactor,
			AdjustIntervalTicks: ar.AdjustIntervalTicks,
			MinFills:            ar.MinFills,
		}
		managers := make(map[market.InstrumentID]*risk.AdaptiveRiskManager, len(c.cfg.Instruments))
		bases := make(map[market.InstrumentID]strategy.MarketMakingParams, len(c.cfg.Instruments))
		for _, inst := range c.cfg.Instruments {
			managers[inst.ID] = risk.NewAdaptiveRiskManager(c.analyzer, inst.Params, cfg)
			bases[inst.ID] = inst.Params
		}
		c.driver.AddTickListener(func(t metrics.TickMetric) {
			mgr, ok := managers[t.Instrument]
			if !ok {
				return
			}
			if mgr.Update(t.Timestamp) {
				applied := mgr.Apply(bases[t.Instrument])
				c.driver.UpdateParams(t.Instrument, applied)
				c.log.LogRisk("adaptive_risk_adjusted", map[string]interface{}{
					"instrument":    t.Instrument,
					"adverse_rate":  mgr.AverageAdverseRate(),
					"max_position":  applied.MaxPosition,
					"size_base":     applied.SizeBase,
					"min_spread_bp": applied.MinSpreadBP,
				})
			}
		})
	}

	c.log.Info("core services built", zap.Int("instruments", len(c.cfg.Instruments)))
	return nil
}

func (c *Container) registerLifecycleComponents() {
	if c.exporter != nil {
		c.lifecycle.Register(&httpServerComponent{
			name:    "metrics_exporter",
			handler: c.exporter.Handler(),
			addr:    c.opts.MetricsAddr,
			logger:  c.log,
			server:  &c.metricsSrv,
		})
	}
	if c.stream != nil {
		mux := http.NewServeMux()
		mux.HandleFunc("/stream", c.stream.Handler)
		c.lifecycle.Register(&httpServerComponent{
			name:    "tick_stream",
			handler: mux,
			addr:    c.opts.StreamAddr,
			logger:  c.log,
			server:  &c.streamSrv,
		})
	}
}

// Start brings up whichever HTTP observers were registered, in
// registration order, and the config hot-reloader if Options.Watch was
// set.
func (c *Container) Start(ctx context.Context) error {
	c.log.Info("starting container...")
	if err := c.lifecycle.StartAll(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	if c.opts.Watch {
		watchCtx, cancel := context.WithCancel(ctx)
		c.watchCancel = cancel
		go c.runWatcher(watchCtx)
	}

	c.log.Info("container started")
	return nil
}

func (c *Container) runWatcher(ctx context.Context) {
	watcher := config.Watcher{Path: c.opts.ConfigPath}
	err := watcher.Start(ctx, func(cfg config.Config) {
		for _, inst := range cfg.Instruments {
			c.driver.UpdateParams(inst.ID, inst.Params)
		}
		c.log.Info("config reloaded", zap.Int("instruments", len(cfg.Instruments)))
	}, func(err error) {
		c.log.LogError(err, map[string]interface{}{"action": "config_watch"})
	})
	if err != nil && ctx.Err() == nil {
		c.log.LogError(err, map[string]interface{}{"action": "config_watch_stopped"})
	}
}

// Run executes the deterministic backtest core: loads (or synthesizes)
// the book stream and replays it through the driver. It does not touch
// the lifecycle-managed observers directly; they receive data via the
// listener callbacks Build wired in.
func (c *Container) Run() error {
	dataPath := c.opts.DataPath
	if dataPath == "" {
		dataPath = c.cfg.DataFile
	}

	if dataPath != "" {
		if err := c.driver.RunCSVFile(dataPath); err != nil {
			return fmt.Errorf("run csv backtest failed: %w", err)
		}
		return nil
	}

	c.driver.RunSynthetic(c.opts.Ticks, len(c.cfg.Instruments), len(c.cfg.Venues))
	return nil
}

// Stop shuts down whichever HTTP observers were started, in reverse
// registration order, and stops the config watcher if it was running.
func (c *Container) Stop() error {
	c.log.Info("stopping container...")
	if c.watchCancel != nil {
		c.watchCancel()
	}
	if err := c.lifecycle.StopAll(); err != nil {
		c.log.LogError(err, map[string]interface{}{"action": "stop"})
		return err
	}
	if c.log != nil {
		c.log.Close()
	}
	return nil
}

// HealthCheck reports whether every registered observer is up.
func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}

// Metrics returns the collector the backtest run recorded into.
func (c *Container) Metrics() *metrics.Collector {
	return c.driver.Metrics()
}

// AnalyzerStats returns the post-trade adverse-selection summary for the
// run so far.
func (c *Container) AnalyzerStats() posttrade.Stats {
	return c.analyzer.Stats()
}
