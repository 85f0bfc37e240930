// Package scoring implements the confidence, grading and settlement math for
// soccer predictions. All functions are pure: they take odds and predicted
// numbers, and return values plus an ok flag where a result can be undefined.
// Undefined never becomes an error or a panic; callers fall back to the worst
// grade or a zero profit.
package scoring

import "strings"

// Side identifies one outcome of a bettable market.
type Side int

const (
	SideUnknown Side = iota
	SideHome
	SideAway
	SideDraw
	SideOver
	SideUnder
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "Home"
	case SideAway:
		return "Away"
	case SideDraw:
		return "Draw"
	case SideOver:
		return "Over"
	case SideUnder:
		return "Under"
	}
	return "Unknown"
}

// ParseWinnerLabel maps a moneyline prediction label to its side. Labels are
// produced upstream as "Home Win", "Away Win" or "Draw"; anything else is
// SideUnknown.
func ParseWinnerLabel(label string) Side {
	switch strings.TrimSpace(label) {
	case "Home Win":
		return SideHome
	case "Away Win":
		return SideAway
	case "Draw":
		return SideDraw
	}
	return SideUnknown
}

// ParseTotalsLabel maps a totals prediction label to its direction. The label
// carries the line as free text ("Over 2.28", "Under 2.50"), so only the
// Over/Under substring decides. Neither substring present means SideUnknown.
func ParseTotalsLabel(label string) Side {
	switch {
	case strings.Contains(label, "Over"):
		return SideOver
	case strings.Contains(label, "Under"):
		return SideUnder
	}
	return SideUnknown
}

// MoneylineOdds holds the decimal odds offered on each moneyline side.
// A market is scorable only when every entry is positive.
type MoneylineOdds struct {
	Home float64
	Away float64
	Draw float64
}

// Valid reports whether every side has positive odds.
func (o MoneylineOdds) Valid() bool {
	return o.Home > 0 && o.Away > 0 && o.Draw > 0
}

// ForSide returns the odds offered on the given side.
func (o MoneylineOdds) ForSide(s Side) (float64, bool) {
	switch s {
	case SideHome:
		return o.Home, true
	case SideAway:
		return o.Away, true
	case SideDraw:
		return o.Draw, true
	}
	return 0, false
}

// Min returns the lowest odds across the three sides, the market favorite's
// price.
func (o MoneylineOdds) Min() float64 {
	m := o.Home
	if o.Away < m {
		m = o.Away
	}
	if o.Draw < m {
		m = o.Draw
	}
	return m
}

// TotalsOdds holds the decimal odds offered on the over/under market.
type TotalsOdds struct {
	Over  float64
	Under float64
}

// Valid reports whether both sides have positive odds.
func (o TotalsOdds) Valid() bool {
	return o.Over > 0 && o.Under > 0
}

// Favorite returns the direction with lower odds. Equal odds resolve to
// SideUnder, matching the calibration the thresholds were derived against.
func (o TotalsOdds) Favorite() Side {
	if o.Over < o.Under {
		return SideOver
	}
	return SideUnder
}

// Min returns the favorite's odds, Max the underdog's.
func (o TotalsOdds) Min() float64 {
	if o.Over < o.Under {
		return o.Over
	}
	return o.Under
}

// Max returns the higher of the two odds.
func (o TotalsOdds) Max() float64 {
	if o.Over > o.Under {
		return o.Over
	}
	return o.Under
}
