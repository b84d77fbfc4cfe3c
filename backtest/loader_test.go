package backtest

import (
	"strings"
	"testing"
)

func TestLoadCSV_SkipsHeaderAndShortRows(t *testing.T) {
	csvText := "timestamp,instrument,venue,bid_price,bid_qty,ask_price,ask_qty\n" +
		"1,1,1,99.0,10,101.0,10\n" +
		"2,1,1,too,short\n" +
		"3,2,1,199.5,5,200.5,5\n"

	snaps, err := LoadCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(snaps))
	}
	if snaps[0].Instrument != 1 || snaps[0].Bids[0].Price != 99.0 {
		t.Fatalf("unexpected first row: %+v", snaps[0])
	}
	if snaps[1].Instrument != 2 || snaps[1].Asks[0].Price != 200.5 {
		t.Fatalf("unexpected second row: %+v", snaps[1])
	}
}

func TestLoadCSV_EmptyInputYieldsNoRows(t *testing.T) {
	snaps, err := LoadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected no rows, got %d", len(snaps))
	}
}
