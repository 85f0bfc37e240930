package scoring

import "math"

// MoneylineConfidence scores a winner prediction against the offered market.
// The raw signal is the absolute predicted goal difference, scaled by the
// odds factor so a pick that agrees with a heavy favorite lands near zero.
// The scale reads downward: lower is stronger, and MoneylineGrade bands it
// that way.
func MoneylineConfidence(predHomeGoals, predAwayGoals float64, side Side, odds MoneylineOdds) (float64, bool) {
	factor, ok := MoneylineFactor(side, odds)
	if !ok {
		return 0, false
	}
	conf := math.Abs(predHomeGoals-predAwayGoals) * factor
	if math.IsNaN(conf) || conf < 0 {
		return 0, false
	}
	return conf, true
}

// TotalsConfidence scores an over/under prediction against a goal line. The
// raw signal is the distance between the predicted total and the line. A
// contrarian call, predicting Over with the total itself under the line or
// the reverse, has that distance damped by minOdds/maxOdds before the odds
// factor applies. This scale reads upward.
func TotalsConfidence(predTotal, threshold float64, direction Side, odds TotalsOdds) (float64, bool) {
	factor, ok := TotalsFactor(direction, odds)
	if !ok {
		return 0, false
	}
	distance := math.Abs(predTotal - threshold)
	if (direction == SideOver && predTotal < threshold) ||
		(direction == SideUnder && predTotal > threshold) {
		distance *= odds.Min() / odds.Max()
	}
	conf := distance * factor
	if math.IsNaN(conf) || conf < 0 {
		return 0, false
	}
	return conf, true
}

// ConfidencePercent converts a confidence score to the percentage stored
// next to the grade, clipping at 100. There is no lower clip.
func ConfidencePercent(conf float64) float64 {
	pct := conf * 100
	if pct > 100 {
		return 100
	}
	return pct
}
