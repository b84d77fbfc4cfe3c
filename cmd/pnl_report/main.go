// Command pnl_report regenerates the Markdown P&L report from a
// previously written tick CSV, without re-running the backtest.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"quoteforge/metrics"
)

func main() {
	csvPath := flag.String("csv", "", "tick CSV path written by a prior backtest run")
	outPath := flag.String("out", "", "if set, write the report here instead of stdout")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "pnl_report: --csv is required")
		os.Exit(1)
	}

	collector, err := metrics.LoadTickCSVFile(*csvPath)
	if err != nil {
		log.Fatalf("load tick csv: %v", err)
	}

	report := collector.GenerateReport()
	if *outPath == "" {
		fmt.Print(report)
		return
	}
	if err := os.WriteFile(*outPath, []byte(report), 0o644); err != nil {
		log.Fatalf("write report: %v", err)
	}
}
