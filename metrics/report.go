package metrics

import (
	"fmt"
	"strings"
)

// GenerateReport renders the run's global and per-instrument metrics as a
// fixed-precision Markdown document. Instrument rows are sorted ascending
// by id for reproducible output.
func (c *Collector) GenerateReport() string {
	var b strings.Builder

	b.WriteString("# Market Making Backtest Report\n\n")

	g := c.GlobalMetrics()
	b.WriteString("## Global Metrics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total P&L | %.4f |\n", g.TotalPnL)
	fmt.Fprintf(&b, "| Max Portfolio Exposure | %.4f |\n", g.MaxExposure)
	fmt.Fprintf(&b, "| Total Quotes | %d |\n", g.TotalQuotes)
	fmt.Fprintf(&b, "| Total Cancels | %d |\n", g.TotalCancels)
	fmt.Fprintf(&b, "| Total Fills | %d |\n", g.TotalFills)
	b.WriteString("\n")

	b.WriteString("## Per-Instrument Metrics\n\n")
	b.WriteString("| Instrument | Realized P&L | Sharpe | Max DD | Avg Spread Captured | Quotes | Fills | Max Pos | Min Pos |\n")
	b.WriteString("|------------|-------------|--------|--------|---------------------|--------|-------|---------|--------|\n")

	for _, id := range c.InstrumentIDs() {
		m := c.InstrumentMetrics(id)
		fmt.Fprintf(&b, "| %d | %.4f | %.4f | %.4f | %.4f | %d | %d | %.4f | %.4f |\n",
			m.ID, m.RealizedPnL, m.SharpeApprox, m.MaxDrawdown, m.AvgSpreadCaptured,
			m.TotalQuotes, m.TotalFills, m.MaxPosition, m.MinPosition)
	}

	return b.String()
}
