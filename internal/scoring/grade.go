package scoring

// Moneyline band edges. Calibrated offline against settled history; changing
// them silently regrades every future sweep, so they stay put.
const (
	mlGradeA = 0.1264
	mlGradeB = 0.3064
	mlGradeC = 0.6194
)

// Totals band edges, read upward.
const (
	ouGradeA = 0.75
	ouGradeB = 0.70
	ouGradeC = 0.266667
)

// MoneylineGrade bands a moneyline confidence into A..D with strict
// less-than, so a confidence sitting exactly on an edge falls into the
// weaker band. An undefined confidence grades D.
func MoneylineGrade(conf float64, ok bool) string {
	if !ok {
		return "D"
	}
	switch {
	case conf < mlGradeA:
		return "A"
	case conf < mlGradeB:
		return "B"
	case conf < mlGradeC:
		return "C"
	}
	return "D"
}

// TotalsGrade bands a totals confidence into A..D, edges inclusive. An
// undefined confidence grades D.
func TotalsGrade(conf float64, ok bool) string {
	if !ok {
		return "D"
	}
	switch {
	case conf >= ouGradeA:
		return "A"
	case conf >= ouGradeB:
		return "B"
	case conf >= ouGradeC:
		return "C"
	}
	return "D"
}

// DisplayGrade bands a model confidence in [0,1] into the letter grade shown
// on saved predictions, A+ down to D in five point steps from 90. Out of
// range input is clamped first; the second return reports that so callers
// can log it.
func DisplayGrade(confidence float64) (string, bool) {
	clamped := false
	if confidence < 0 {
		confidence = 0
		clamped = true
	} else if confidence > 1 {
		confidence = 1
		clamped = true
	}
	pct := confidence * 100
	switch {
	case pct >= 90:
		return "A+", clamped
	case pct >= 85:
		return "A", clamped
	case pct >= 80:
		return "A-", clamped
	case pct >= 75:
		return "B+", clamped
	case pct >= 70:
		return "B", clamped
	case pct >= 65:
		return "B-", clamped
	case pct >= 60:
		return "C+", clamped
	case pct >= 55:
		return "C", clamped
	case pct >= 50:
		return "C-", clamped
	}
	return "D", clamped
}
