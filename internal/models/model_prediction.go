package models

import (
	"database/sql"
	"time"
)

// ModelPrediction represents one row of the in-house model tables,
// predictions_soccer_v1_ourmodel and predictions_soccer_v3_ourmodel. The
// derivation layer fills everything except the grade and settlement
// columns, which later sweeps own.
type ModelPrediction struct {
	MatchID  int    `db:"match_id"`
	Date     string `db:"date"`
	LeagueID string `db:"league_id"`

	// Teams
	HomeTeamID   sql.NullInt64 `db:"home_team_id"`
	AwayTeamID   sql.NullInt64 `db:"away_team_id"`
	HomeTeamName string        `db:"home_team_name"`
	AwayTeamName string        `db:"away_team_name"`

	// Derived model output
	PredictedHomeGoals  sql.NullFloat64 `db:"predicted_home_goals"`
	PredictedAwayGoals  sql.NullFloat64 `db:"predicted_away_goals"`
	PredictedTotalGoals sql.NullFloat64 `db:"predicted_total_goals"`
	PredictedWinner     sql.NullString  `db:"predicted_winner"`  // "Home Win"/"Away Win"/"Draw"
	PredictedOutcome    sql.NullString  `db:"predicted_outcome"` // "Over X.XX"/"Under X.XX" of the CTMCL line
	BTTSPrediction      sql.NullBool    `db:"btts_prediction"`
	ConfidenceCategory  sql.NullString  `db:"confidence_category"`

	// Market context
	CTMCL     sql.NullFloat64 `db:"ctmcl"`
	HomeOdds  sql.NullFloat64 `db:"home_odds"`
	AwayOdds  sql.NullFloat64 `db:"away_odds"`
	DrawOdds  sql.NullFloat64 `db:"draw_odds"`
	OverOdds  sql.NullFloat64 `db:"over_2_5_odds"`
	UnderOdds sql.NullFloat64 `db:"under_2_5_odds"`

	// Profit estimates at prediction time
	MoneylineProfit sql.NullFloat64 `db:"moneyline_profit"`
	OverProfit      sql.NullFloat64 `db:"over_profit"`
	CTMCLProfit     sql.NullFloat64 `db:"ctmcl_profit"`

	Status string `db:"status"`

	// Grades (filled by the grading sweeps, NULL until then)
	MLGrade      sql.NullString  `db:"ml_grade"`
	MLConfidence sql.NullFloat64 `db:"ml_confidence"`
	OUGrade      sql.NullString  `db:"ou_grade"`
	OUConfidence sql.NullFloat64 `db:"ou_confidence"`

	// Settlement (NULL until settled)
	ActualWinner        sql.NullString  `db:"actual_winner"`
	ActualOverUnder     sql.NullString  `db:"actual_over_under"`
	ActualHomeTeamGoals sql.NullFloat64 `db:"actual_home_team_goals"`
	ActualAwayTeamGoals sql.NullFloat64 `db:"actual_away_team_goals"`
	ActualTotalGoals    sql.NullFloat64 `db:"actual_total_goals"`
	ProfitLossOutcome   sql.NullFloat64 `db:"profit_loss_outcome"`
	ProfitLossWinner    sql.NullFloat64 `db:"profit_loss_winner"`

	PredictionTimestamp time.Time    `db:"prediction_timestamp"`
	UpdatedAt           sql.NullTime `db:"updated_at"`
}

// GradeUpdate is one pending grade assignment for a model row. Confidence
// is the percentage form; invalid means the market was undefined and the
// moneyline store writes NULL.
type GradeUpdate struct {
	MatchID    int
	Grade      string
	Confidence sql.NullFloat64
}

// ModelInput is one parsed row of the regression output CSV: match context,
// raw (unrounded) predicted goals and the market numbers the derivation
// needs. Probabilities arrive on the scale the exporter uses, odds_ft_*_prob
// in [0,1] and o25_potential in [0,100].
type ModelInput struct {
	MatchID      int
	Date         string
	LeagueID     string
	HomeTeamID   *int
	AwayTeamID   *int
	HomeTeamName string
	AwayTeamName string

	PredictedHomeGoals float64
	PredictedAwayGoals float64

	CTMCL     *float64
	HomeOdds  *float64
	AwayOdds  *float64
	DrawOdds  *float64
	OverOdds  *float64
	UnderOdds *float64

	HomeWinProb  *float64 // odds_ft_1_prob
	AwayWinProb  *float64 // odds_ft_2_prob
	O25Potential *float64
}
