package metrics

import (
	"strings"
	"testing"
)

func TestLoadTickCSV_RoundTripsThroughReport(t *testing.T) {
	c := NewCollector()
	c.RecordTick(TickMetric{Timestamp: 1, Instrument: 1, MidPrice: 100, Position: 1, RealizedPnL: 5, UnrealizedPnL: 0.5, BidPrice: 99.9, AskPrice: 100.1})
	c.RecordTick(TickMetric{Timestamp: 2, Instrument: 1, MidPrice: 101, Position: 2, RealizedPnL: 6, UnrealizedPnL: 0.7, BidPrice: 100.9, AskPrice: 101.1})

	var buf strings.Builder
	if err := c.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	reloaded, err := LoadTickCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}

	m := reloaded.InstrumentMetrics(1)
	if m.RealizedPnL != 6 {
		t.Fatalf("expected realized pnl 6, got %v", m.RealizedPnL)
	}
	if len(m.PnLSeries) != 2 {
		t.Fatalf("expected 2 ticks reloaded, got %d", len(m.PnLSeries))
	}
}

func TestLoadTickCSV_EmptyInputYieldsEmptyCollector(t *testing.T) {
	c, err := LoadTickCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.InstrumentIDs()) != 0 {
		t.Fatalf("expected no instruments, got %v", c.InstrumentIDs())
	}
}
