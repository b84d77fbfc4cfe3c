package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"quoteforge/market"
)

// LoadCSV reads book snapshots from a reader in
// "timestamp,instrument,venue,bid_price,bid_qty,ask_price,ask_qty" format.
// The first line is always treated as a header and skipped. Rows with
// fewer than 7 fields are skipped rather than treated as an error, since
// hand-edited fixture data commonly has trailing blank lines.
func LoadCSV(r io.Reader) ([]market.VenueBookSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]market.VenueBookSnapshot, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 7 {
			continue
		}

		instrument, err := strconv.ParseUint(row[1], 10, 32)
		if err != nil {
			continue
		}
		venue, err := strconv.ParseUint(row[2], 10, 8)
		if err != nil {
			continue
		}
		bidPrice, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		bidQty, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			continue
		}
		askPrice, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			continue
		}
		askQty, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			continue
		}
		ts, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			continue
		}

		out = append(out, market.VenueBookSnapshot{
			Instrument: market.InstrumentID(instrument),
			Venue:      market.VenueID(venue),
			Bids:       []market.BookLevel{{Price: bidPrice, Qty: bidQty}},
			Asks:       []market.BookLevel{{Price: askPrice, Qty: askQty}},
			Timestamp:  ts,
		})
	}

	return out, nil
}

// LoadCSVFile opens path and loads it via LoadCSV.
func LoadCSVFile(path string) ([]market.VenueBookSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}
