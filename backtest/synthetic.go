package backtest

import (
	"math/rand"

	"quoteforge/market"
)

// syntheticSeed is fixed so repeated runs over the same shape reproduce
// the same book stream. The exact bit pattern isn't meant to be portable
// across PRNG implementations, only stable across runs of this binary.
const syntheticSeed = 42

// GenerateSynthetic produces a deterministic random-walk book stream for
// numInstruments instruments across numVenues venues, numTicks ticks each,
// emitted in (tick, instrument, venue) order. Instrument i (1-indexed)
// starts at price 100+50*(i-1); each tick nudges every instrument's price
// by a ~10bp Gaussian move, floored at 1.0, and each venue quotes a
// 3-level book jittered around that price.
func GenerateSynthetic(numTicks, numInstruments, numVenues int) []market.VenueBookSnapshot {
	rng := rand.New(rand.NewSource(syntheticSeed))

	out := make([]market.VenueBookSnapshot, 0, numTicks*numInstruments*numVenues)

	prices := make([]float64, numInstruments)
	for i := range prices {
		prices[i] = 100.0 + float64(i)*50.0
	}

	for tick := 0; tick < numTicks; tick++ {
		for inst := 0; inst < numInstruments; inst++ {
			move := rng.NormFloat64() * 0.001
			prices[inst] *= 1.0 + move
			if prices[inst] < 1.0 {
				prices[inst] = 1.0
			}

			baseSpread := prices[inst] * 0.001

			for v := 0; v < numVenues; v++ {
				jitter := 0.8 + rng.Float64()*0.4
				halfSpread := baseSpread * jitter / 2.0

				snap := market.VenueBookSnapshot{
					Instrument: market.InstrumentID(inst + 1),
					Venue:      market.VenueID(v + 1),
				}
				for lvl := 0; lvl < 3; lvl++ {
					offset := halfSpread * (1.0 + float64(lvl)*0.5)
					qty := 10.0 + float64(lvl)*5.0
					snap.Bids = append(snap.Bids, market.BookLevel{Price: prices[inst] - offset, Qty: qty})
					snap.Asks = append(snap.Asks, market.BookLevel{Price: prices[inst] + offset, Qty: qty})
				}
				out = append(out, snap)
			}
		}
	}

	return out
}
