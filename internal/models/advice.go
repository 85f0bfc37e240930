package models

// Advice holds the three picks parsed from one LLM analysis, destined for
// the ai_* columns. Empty strings are stored as NULL.
type Advice struct {
	Moneyline string // "Home Win"/"Away Win"/"Draw"
	OverUnder string // "Over 2.5"/"Under 2.5"
	Spreads   string // "{team} (-1.5)" style
}

// Complete reports whether every market got a pick.
func (a Advice) Complete() bool {
	return a.Moneyline != "" && a.OverUnder != "" && a.Spreads != ""
}
