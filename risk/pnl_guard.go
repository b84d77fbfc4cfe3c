package risk

import "quoteforge/market"

// PnLSource exposes an instrument's current net P&L. *Manager satisfies it
// via NetPnL.
type PnLSource interface {
	NetPnL(id market.InstrumentID) float64
}

// PnLGuard denies quoting on an instrument once its net P&L has fallen
// below a floor, adapted from the teacher's PnLGuard/PnLSource
// (risk/pnl_guard.go, risk/pnl_source.go): the teacher estimated P&L from
// an inventory.Tracker valuation against a live mid; here it reads
// directly from Manager, which already tracks realized and unrealized P&L
// per instrument from fills and mark-to-market updates.
type PnLGuard struct {
	MinPnL float64 // floor; quoting is denied once NetPnL drops below this
	Source PnLSource
}

// Allow implements Guard.
func (g *PnLGuard) Allow(id market.InstrumentID) error {
	if g == nil || g.Source == nil || g.MinPnL == 0 {
		return nil
	}
	if g.Source.NetPnL(id) < g.MinPnL {
		return ErrPnLTooLow
	}
	return nil
}
