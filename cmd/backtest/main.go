// Command backtest replays a book stream (loaded from CSV or synthesized)
// through the multi-venue market-making pipeline and writes a Markdown
// report and tick CSV for the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quoteforge/internal/container"
)

func main() {
	configPath := flag.String("config", "data/config.json", "run configuration path")
	ticks := flag.Int("ticks", 10000, "number of synthetic ticks to generate if --data is not set")
	dataPath := flag.String("data", "", "CSV book stream to replay; overrides the config's data_file and disables synthetic generation")
	reportPath := flag.String("report", "report.md", "path to write the Markdown report")
	csvPath := flag.String("csv", "ticks.csv", "path to write the tick CSV")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics at <addr>/metrics for the duration of the run")
	streamAddr := flag.String("stream-addr", "", "if set, serve tick metrics over a websocket at <addr>/stream")
	watch := flag.Bool("watch", false, "hot-reload quoting params from --config while the run is in progress")
	flag.Parse()

	opts := container.Options{
		ConfigPath:  *configPath,
		Ticks:       *ticks,
		DataPath:    *dataPath,
		MetricsAddr: *metricsAddr,
		StreamAddr:  *streamAddr,
		Watch:       *watch,
	}

	c := container.New(opts)
	if err := c.Build(); err != nil {
		log.Fatalf("build container: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		log.Fatalf("start container: %v", err)
	}
	defer c.Stop()

	if err := c.Run(); err != nil {
		log.Fatalf("run backtest: %v", err)
	}

	m := c.Metrics()
	if err := m.WriteReportFile(*reportPath); err != nil {
		log.Fatalf("write report: %v", err)
	}
	if err := m.WriteCSVFile(*csvPath); err != nil {
		log.Fatalf("write tick csv: %v", err)
	}

	stats := c.AnalyzerStats()
	fmt.Printf("wrote %s and %s\n", *reportPath, *csvPath)
	fmt.Printf("adverse selection: %d/%d fills analyzed, rate=%.4f\n",
		stats.AnalyzedFills, stats.TotalFills, stats.AdverseSelectionRate)
}
