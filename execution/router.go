package execution

import (
	"math"

	"quoteforge/market"
)

// Router selects the execution venue for a quote by minimizing a scalar
// cost score over the configured venues. It is stateless and deterministic:
// the same view always yields the same choice.
type Router struct {
	venues []VenueConfig
}

// NewRouter builds a Router over the given venue configurations. Order
// matters only as a tie-break for equal scores (first-seen wins).
func NewRouter(venues []VenueConfig) *Router {
	return &Router{venues: append([]VenueConfig(nil), venues...)}
}

// Venues returns the configured venue list.
func (r *Router) Venues() []VenueConfig {
	return r.venues
}

// ChooseVenue picks the lowest-cost venue for the given instrument view.
// An empty venue list returns 0, the "no venue" sentinel; the position
// argument is accepted for interface symmetry with the reference router
// but does not currently affect scoring.
func (r *Router) ChooseVenue(view market.InstrumentMarketView, position float64) market.VenueID {
	if len(r.venues) == 0 {
		return 0
	}

	best := r.venues[0].ID
	bestScore := math.MaxFloat64

	for _, vc := range r.venues {
		score := vc.MakerFeeBP + vc.CancelPenaltyBP + vc.LatencyMs*0.01
		if snap, ok := view.Venues[vc.ID]; ok {
			var depth float64
			for _, lvl := range snap.Bids {
				depth += lvl.Qty
			}
			for _, lvl := range snap.Asks {
				depth += lvl.Qty
			}
			score -= depth * 0.001
		}
		if score < bestScore {
			bestScore = score
			best = vc.ID
		}
	}
	return best
}
