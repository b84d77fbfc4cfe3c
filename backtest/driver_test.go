package backtest

import (
	"strings"
	"testing"

	"quoteforge/execution"
	"quoteforge/market"
	"quoteforge/risk"
	"quoteforge/strategy"
)

func testConfig() Config {
	params := strategy.DefaultParams()
	params.MaxPosition = 50
	return Config{
		Instruments: []InstrumentSpec{{ID: 1, Params: params}},
		Venues:      []execution.VenueConfig{{ID: 1, Name: "SIM", MakerFeeBP: 1, LatencyMs: 1}},
	}
}

func TestDriver_RunSyntheticProducesTicksAndQuotes(t *testing.T) {
	d := NewDriver(testConfig(), nil)
	d.RunSynthetic(20, 1, 1)

	m := d.Metrics().InstrumentMetrics(1)
	if m.TotalQuotes != 20 {
		t.Fatalf("expected one recorded quote attempt per tick, got %d", m.TotalQuotes)
	}
}

func TestDriver_RunCSVReplaysAndRecordsQuoteAttempts(t *testing.T) {
	csvText := "timestamp,instrument,venue,bid_price,bid_qty,ask_price,ask_qty\n" +
		"1,1,1,99.9,10,100.1,10\n" +
		"2,1,1,99.9,10,100.1,10\n" +
		"3,1,1,99.9,10,100.1,10\n"

	d := NewDriver(testConfig(), nil)
	snaps, err := LoadCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Run(snaps)

	g := d.Metrics().GlobalMetrics()
	if g.TotalQuotes != 3 {
		t.Fatalf("expected 3 quote attempts, got %d", g.TotalQuotes)
	}

	report := d.Metrics().GenerateReport()
	if !strings.Contains(report, "# Market Making Backtest Report") {
		t.Fatalf("expected a rendered report, got: %s", report)
	}
}

func TestDriver_GuardFactoryReceivesRiskManagerAndAggregator(t *testing.T) {
	var gotRisk *risk.Manager
	var gotAggregator *market.Aggregator

	d := NewDriver(testConfig(), func(riskMgr *risk.Manager, aggregator *market.Aggregator) risk.Guard {
		gotRisk, gotAggregator = riskMgr, aggregator
		return nil
	})
	if gotRisk == nil || gotAggregator == nil {
		t.Fatalf("expected guardFactory to receive a non-nil risk manager and aggregator")
	}
	if d.RiskManager() != gotRisk {
		t.Fatalf("expected RiskManager() to return the same instance passed to guardFactory")
	}
}

func TestDriver_SizedFillListenerReceivesSignedQuantity(t *testing.T) {
	// Venue 2's book sits above venue 1's, so the aggregated mid (100.55)
	// puts the bid quoted on venue 1 (about 100.30) above venue 1's ask of
	// 100.1; the third row's CheckFills on venue 1 then fills that bid.
	csvText := "timestamp,instrument,venue,bid_price,bid_qty,ask_price,ask_qty\n" +
		"1,1,1,99.9,10,100.1,10\n" +
		"2,1,2,101.0,10,101.2,10\n" +
		"3,1,1,99.9,10,100.1,10\n"

	d := NewDriver(testConfig(), nil)
	var seen []float64
	d.AddSizedFillListener(func(_ market.InstrumentID, signedQty float64) {
		seen = append(seen, signedQty)
	})

	snaps, err := LoadCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Run(snaps)

	if len(seen) == 0 {
		t.Fatalf("expected at least one sized fill callback")
	}
	if seen[0] != 1.0 {
		t.Fatalf("expected a +1 signed quantity for the filled bid, got %v", seen)
	}
}

func TestDriver_UnconfiguredInstrumentIsIgnoredByController(t *testing.T) {
	d := NewDriver(testConfig(), nil)
	d.RunSynthetic(5, 2, 1) // instrument 2 isn't in testConfig()

	if m := d.Metrics().InstrumentMetrics(2); m.TotalQuotes != 5 {
		t.Fatalf("expected tick recording regardless of controller configuration, got %d", m.TotalQuotes)
	}
}
