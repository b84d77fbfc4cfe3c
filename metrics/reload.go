package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"quoteforge/market"
)

// LoadTickCSV rebuilds a Collector from a previously written tick CSV, so
// a report can be regenerated without re-running the backtest. Only the
// per-tick series survives a round trip through CSV — quote, fill and
// cancel counts and spread-capture samples live in the run's live
// Collector and are not part of the tick CSV schema, so a report
// generated this way always shows zero for those columns.
func LoadTickCSV(r io.Reader) (*Collector, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tick csv: %w", err)
	}

	c := NewCollector()
	if len(rows) <= 1 {
		return c, nil
	}

	for _, row := range rows[1:] {
		if len(row) < len(tickCSVHeader) {
			continue
		}
		ts, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			continue
		}
		instrument, err := strconv.ParseUint(row[1], 10, 32)
		if err != nil {
			continue
		}
		mid, err1 := strconv.ParseFloat(row[2], 64)
		pos, err2 := strconv.ParseFloat(row[3], 64)
		realized, err3 := strconv.ParseFloat(row[4], 64)
		unrealized, err4 := strconv.ParseFloat(row[5], 64)
		bid, err5 := strconv.ParseFloat(row[6], 64)
		ask, err6 := strconv.ParseFloat(row[7], 64)
		spread, err7 := strconv.ParseFloat(row[8], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil || err7 != nil {
			continue
		}

		c.RecordTick(TickMetric{
			Timestamp:      ts,
			Instrument:     market.InstrumentID(instrument),
			MidPrice:       mid,
			Position:       pos,
			RealizedPnL:    realized,
			UnrealizedPnL:  unrealized,
			BidPrice:       bid,
			AskPrice:       ask,
			SpreadCaptured: spread,
		})
	}

	return c, nil
}

// LoadTickCSVFile opens path and loads it via LoadTickCSV.
func LoadTickCSVFile(path string) (*Collector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTickCSV(f)
}
