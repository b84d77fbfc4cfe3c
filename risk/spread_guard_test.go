package risk

import (
	"errors"
	"testing"

	"quoteforge/market"
)

type fakeViews struct {
	views map[market.InstrumentID]market.InstrumentMarketView
}

func (f fakeViews) GetView(id market.InstrumentID) market.InstrumentMarketView {
	return f.views[id]
}

func TestSpreadGuard_RejectsWideSpread(t *testing.T) {
	views := fakeViews{views: map[market.InstrumentID]market.InstrumentMarketView{
		1: {MidPrice: 100, Spread: 5}, // 5% spread
	}}
	g := &SpreadGuard{MaxSpreadRatio: 0.02, Views: views}

	if err := g.Allow(1); !errors.Is(err, ErrSpreadTooWide) {
		t.Fatalf("expected ErrSpreadTooWide, got %v", err)
	}
}

func TestSpreadGuard_AllowsTightSpread(t *testing.T) {
	views := fakeViews{views: map[market.InstrumentID]market.InstrumentMarketView{
		1: {MidPrice: 100, Spread: 0.5},
	}}
	g := &SpreadGuard{MaxSpreadRatio: 0.02, Views: views}

	if err := g.Allow(1); err != nil {
		t.Fatalf("expected tight spread to pass, got %v", err)
	}
}

func TestSpreadGuard_DisabledWhenRatioZero(t *testing.T) {
	g := &SpreadGuard{}
	if err := g.Allow(1); err != nil {
		t.Fatalf("expected disabled guard to always allow, got %v", err)
	}
}
