package scoring

import "math"

// Tolerances for matching the predicted side's odds against the market
// minimum: close means |a-b| <= atol + rtol*|b|.
const (
	rtol = 1e-5
	atol = 1e-8
)

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}

// MoneylineFactor returns the odds scaling applied to a moneyline confidence.
// A predicted side priced at the market minimum contributes the inverse of
// its own odds; any other side contributes the ratio of its odds to the
// minimum, which grows the further the pick strays from the favorite.
func MoneylineFactor(side Side, odds MoneylineOdds) (float64, bool) {
	if !odds.Valid() {
		return 0, false
	}
	p, ok := odds.ForSide(side)
	if !ok {
		return 0, false
	}
	m := odds.Min()
	if isClose(p, m) {
		return 1 / p, true
	}
	return p / m, true
}

// TotalsFactor returns the odds scaling for an over/under confidence. The
// direction matching the market favorite contributes the inverse of its own
// odds; the other direction contributes its odds over the favorite's.
// Favoritism here is decided by strict comparison, not by tolerance.
func TotalsFactor(direction Side, odds TotalsOdds) (float64, bool) {
	if !odds.Valid() {
		return 0, false
	}
	var p float64
	switch direction {
	case SideOver:
		p = odds.Over
	case SideUnder:
		p = odds.Under
	default:
		return 0, false
	}
	if direction == odds.Favorite() {
		return 1 / p, true
	}
	return p / odds.Min(), true
}
