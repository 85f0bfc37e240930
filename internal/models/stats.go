package models

// DailyStats aggregates the settled predictions of one date: profit/loss
// totals for both markets, hit counts, and the per-category breakdown the
// summary log prints in High, Medium, Low order.
type DailyStats struct {
	Date string

	SettledCount int

	// Profit/loss over settled rows
	OutcomeProfitSum float64
	OutcomeProfitAvg float64
	WinnerProfitSum  float64
	WinnerProfitAvg  float64

	// Accuracy over settled rows
	CorrectOverUnder int
	CorrectWinner    int

	Categories []CategoryStats
}

// CategoryStats is the per-confidence-category slice of a day's results.
type CategoryStats struct {
	Category string

	SettledCount     int
	CorrectOverUnder int
	CorrectWinner    int
	OutcomeProfitSum float64
	WinnerProfitSum  float64
}

// OverUnderAccuracy returns the totals hit rate, 0 when nothing settled.
func (s *DailyStats) OverUnderAccuracy() float64 {
	if s.SettledCount == 0 {
		return 0
	}
	return float64(s.CorrectOverUnder) / float64(s.SettledCount) * 100
}

// WinnerAccuracy returns the moneyline hit rate, 0 when nothing settled.
func (s *DailyStats) WinnerAccuracy() float64 {
	if s.SettledCount == 0 {
		return 0
	}
	return float64(s.CorrectWinner) / float64(s.SettledCount) * 100
}
