// Command metrics_probe fetches an exporter's /metrics endpoint and
// prints the mm_* sample lines found, for smoke-testing a running
// backtest's Prometheus exporter.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
)

func main() {
	addr := flag.String("addr", "http://localhost:9100", "base address of a running metrics exporter")
	flag.Parse()

	resp, err := http.Get(strings.TrimRight(*addr, "/") + "/metrics")
	if err != nil {
		log.Fatalf("fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("fetch metrics: unexpected status %s", resp.Status)
	}

	found := 0
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "mm_") {
			fmt.Println(line)
			found++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read metrics: %v", err)
	}

	fmt.Printf("found %d mm_* samples\n", found)
}
