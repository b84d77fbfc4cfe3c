package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

var tickCSVHeader = []string{
	"timestamp", "instrument", "mid_price", "position", "realized_pnl",
	"unrealized_pnl", "bid_price", "ask_price", "spread_captured",
}

// WriteCSV renders every recorded tick, across all instruments, as CSV to
// w. Rows are grouped by instrument (ascending id) and otherwise preserve
// recording order.
func (c *Collector) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(tickCSVHeader); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.instrumentIDsLocked() {
		for _, t := range c.ticks[id] {
			record := []string{
				fmt.Sprintf("%d", t.Timestamp),
				fmt.Sprintf("%d", t.Instrument),
				fmt.Sprintf("%.6f", t.MidPrice),
				fmt.Sprintf("%.6f", t.Position),
				fmt.Sprintf("%.6f", t.RealizedPnL),
				fmt.Sprintf("%.6f", t.UnrealizedPnL),
				fmt.Sprintf("%.6f", t.BidPrice),
				fmt.Sprintf("%.6f", t.AskPrice),
				fmt.Sprintf("%.6f", t.SpreadCaptured),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

// WriteCSVFile writes the tick CSV to the named file, creating or
// truncating it.
func (c *Collector) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteCSV(f)
}

// WriteReportFile writes the Markdown report to the named file, creating
// or truncating it.
func (c *Collector) WriteReportFile(path string) error {
	return os.WriteFile(path, []byte(c.GenerateReport()), 0o644)
}
