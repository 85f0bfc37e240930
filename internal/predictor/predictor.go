// Package predictor derives a complete model prediction row from raw
// regression output. The regression itself runs elsewhere; this is the pure
// labeling layer on top of its predicted goal counts.
package predictor

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"soccer_v3/pipeline/internal/models"
)

const (
	// drawThreshold is the goal-difference band that reads as a draw call.
	drawThreshold = 0.15

	// bttsMinGoals is the per-side predicted-goal floor for a BTTS yes.
	bttsMinGoals = 0.75
)

// Derive turns one regression output row into a model prediction ready for
// persistence. Goals, total and diff are rounded to 2 dp (banker's), the
// winner call uses the rounded goals with the draw threshold, and the totals
// label compares the rounded total against the CTMCL line. Optional market
// inputs that are missing leave their columns NULL and the matching profit
// estimate at 0.
func Derive(in *models.ModelInput) *models.ModelPrediction {
	home := round2(in.PredictedHomeGoals)
	away := round2(in.PredictedAwayGoals)
	total := round2(in.PredictedHomeGoals + in.PredictedAwayGoals)
	diff := round2(home - away)

	code, winner := outcome(home, away)
	conf := math.Abs(diff)

	mp := &models.ModelPrediction{
		MatchID:             in.MatchID,
		Date:                in.Date,
		LeagueID:            in.LeagueID,
		HomeTeamName:        in.HomeTeamName,
		AwayTeamName:        in.AwayTeamName,
		PredictedHomeGoals:  sql.NullFloat64{Float64: home, Valid: true},
		PredictedAwayGoals:  sql.NullFloat64{Float64: away, Valid: true},
		PredictedTotalGoals: sql.NullFloat64{Float64: total, Valid: true},
		PredictedWinner:     sql.NullString{String: winner, Valid: true},
		BTTSPrediction:      sql.NullBool{Bool: home >= bttsMinGoals && away >= bttsMinGoals, Valid: true},
		Status:              models.StatusPending,
		PredictionTimestamp: time.Now().UTC(),
	}

	if in.HomeTeamID != nil {
		mp.HomeTeamID = sql.NullInt64{Int64: int64(*in.HomeTeamID), Valid: true}
	}
	if in.AwayTeamID != nil {
		mp.AwayTeamID = sql.NullInt64{Int64: int64(*in.AwayTeamID), Valid: true}
	}

	if in.CTMCL != nil {
		mp.CTMCL = sql.NullFloat64{Float64: *in.CTMCL, Valid: true}
		label := fmt.Sprintf("Under %.2f", *in.CTMCL)
		if total > *in.CTMCL {
			label = fmt.Sprintf("Over %.2f", *in.CTMCL)
		}
		mp.PredictedOutcome = sql.NullString{String: label, Valid: true}
	}

	if in.HomeOdds != nil {
		mp.HomeOdds = sql.NullFloat64{Float64: *in.HomeOdds, Valid: true}
	}
	if in.AwayOdds != nil {
		mp.AwayOdds = sql.NullFloat64{Float64: *in.AwayOdds, Valid: true}
	}
	if in.DrawOdds != nil {
		mp.DrawOdds = sql.NullFloat64{Float64: *in.DrawOdds, Valid: true}
	}
	if in.OverOdds != nil {
		mp.OverOdds = sql.NullFloat64{Float64: *in.OverOdds, Valid: true}
	}
	if in.UnderOdds != nil {
		mp.UnderOdds = sql.NullFloat64{Float64: *in.UnderOdds, Valid: true}
	}

	if cat := category(conf); cat != "" {
		mp.ConfidenceCategory = sql.NullString{String: cat, Valid: true}
	}

	mp.MoneylineProfit = sql.NullFloat64{Float64: moneylineEstimate(code, in.HomeWinProb, in.AwayWinProb), Valid: true}
	mp.OverProfit = sql.NullFloat64{Float64: overEstimate(total, in.O25Potential), Valid: true}
	mp.CTMCLProfit = sql.NullFloat64{Float64: ctmclEstimate(total, in.CTMCL, in.O25Potential), Valid: true}

	return mp
}

// outcome calls the match from the rounded goals. The diff has to clear the
// draw threshold in either direction, anything inside the band is a draw.
func outcome(home, away float64) (code, label string) {
	diff := home - away
	switch {
	case diff > drawThreshold:
		return "1", "Home Win"
	case diff < -drawThreshold:
		return "2", "Away Win"
	default:
		return "X", "Draw"
	}
}

// category bins the confidence score. Bins are left-open: Low (0, 0.3],
// Medium (0.3, 0.7], High (0.7, 10]. A score of exactly 0 or above 10 falls
// outside every bin and gets no category.
func category(conf float64) string {
	switch {
	case conf > 0 && conf <= 0.3:
		return "Low"
	case conf > 0.3 && conf <= 0.7:
		return "Medium"
	case conf > 0.7 && conf <= 10:
		return "High"
	default:
		return ""
	}
}

// moneylineEstimate prices the winner call off the market win probabilities:
// the inverse probability of the picked side, or of the home/away mean for a
// draw call. Missing or non-positive probabilities price at 0.
func moneylineEstimate(code string, homeProb, awayProb *float64) float64 {
	switch code {
	case "1":
		if homeProb != nil && *homeProb > 0 {
			return round2(1 / *homeProb)
		}
	case "2":
		if awayProb != nil && *awayProb > 0 {
			return round2(1 / *awayProb)
		}
	case "X":
		if homeProb != nil && awayProb != nil && *homeProb > 0 && *awayProb > 0 {
			avg := (*homeProb + *awayProb) / 2
			return round2(1 / avg)
		}
	}
	return 0
}

// overEstimate prices the fixed 2.5 totals side implied by the predicted
// total, using the over-2.5 potential as the market probability. Potentials
// outside (0, 100) fall back to a coin flip.
func overEstimate(total float64, o25 *float64) float64 {
	if o25 == nil {
		return 0
	}

	var p float64
	if total > 2.5 {
		p = *o25 / 100
		if *o25 <= 0 {
			p = 0.5
		}
	} else {
		p = (100 - *o25) / 100
		if *o25 >= 100 {
			p = 0.5
		}
	}

	if p <= 0 {
		return 0
	}
	return round2(1 / p)
}

// ctmclEstimate prices the CTMCL-line totals side. The over-2.5 potential
// stands in for line-specific odds, shifted by 10% per goal the line sits
// away from 2.5 and clamped to [0.3, 0.7].
func ctmclEstimate(total float64, ctmcl, o25 *float64) float64 {
	if ctmcl == nil || o25 == nil {
		return 0
	}

	adj := math.Abs(*ctmcl-2.5) * 0.1

	var p float64
	if total > *ctmcl {
		p = clamp(*o25/100+adj, 0.3, 0.7)
	} else {
		p = clamp(1-*o25/100+adj, 0.3, 0.7)
	}

	return round2(1 / p)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}
