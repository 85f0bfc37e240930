package models

import (
	"database/sql"
)

// Prediction lifecycle statuses. PENDING rows are eligible for settlement;
// SETTLED and the void statuses are terminal.
const (
	StatusPending = "PENDING"
	StatusSettled = "SETTLED"
)

// DataSourceFootyStats marks rows ingested from the FootyStats export.
const DataSourceFootyStats = "FootyStats_API"

// Prediction represents one agility_soccer_v1 row, the full lifecycle of a
// published match prediction from ingest through settlement.
type Prediction struct {
	MatchID    int    `db:"match_id"`
	Date       string `db:"date"`
	League     string `db:"league"` // numeric league ID stored as text
	LeagueName string `db:"league_name"`

	// Teams
	HomeID   sql.NullInt64 `db:"home_id"`
	AwayID   sql.NullInt64 `db:"away_id"`
	HomeTeam string        `db:"home_team"`
	AwayTeam string        `db:"away_team"`

	// Market odds
	HomeOdds  sql.NullFloat64 `db:"home_odds"`
	AwayOdds  sql.NullFloat64 `db:"away_odds"`
	DrawOdds  sql.NullFloat64 `db:"draw_odds"`
	OverOdds  sql.NullFloat64 `db:"over_2_5_odds"`
	UnderOdds sql.NullFloat64 `db:"under_2_5_odds"`
	CTMCL     sql.NullFloat64 `db:"ctmcl"`

	// Model output
	PredictedHomeGoals sql.NullFloat64 `db:"predicted_home_goals"`
	PredictedAwayGoals sql.NullFloat64 `db:"predicted_away_goals"`
	Confidence         sql.NullFloat64 `db:"confidence"`
	Grade              sql.NullString  `db:"grade"`
	Delta              sql.NullFloat64 `db:"delta"`
	PredictedOutcome   sql.NullString  `db:"predicted_outcome"` // totals label, e.g. "Over 2.28"
	PredictedWinner    sql.NullString  `db:"predicted_winner"`  // moneyline label, e.g. "Home Win"
	ConfidenceCategory sql.NullString  `db:"confidence_category"`

	Status     string `db:"status"`
	DataSource string `db:"data_source"`

	// Settlement (NULL until settled)
	ActualOverUnder     sql.NullString  `db:"actual_over_under"`
	ActualWinner        sql.NullString  `db:"actual_winner"`
	ProfitLossOutcome   sql.NullFloat64 `db:"profit_loss_outcome"`
	ProfitLossWinner    sql.NullFloat64 `db:"profit_loss_winner"`
	ActualHomeTeamGoals sql.NullFloat64 `db:"actual_home_team_goals"`
	ActualAwayTeamGoals sql.NullFloat64 `db:"actual_away_team_goals"`
	ActualTotalGoals    sql.NullFloat64 `db:"actual_total_goals"`

	// Advisor picks
	AIMoneyline sql.NullString `db:"ai_moneyline"`
	AIOverUnder sql.NullString `db:"ai_overunder"`
	AISpreads   sql.NullString `db:"ai_spreads"`

	// Winbets identifiers (backfilled from the ID map)
	HomeTeamNameWB sql.NullString `db:"home_team_name_wb"`
	AwayTeamNameWB sql.NullString `db:"away_team_name_wb"`
	HomeTeamIDWB   sql.NullInt64  `db:"home_team_id_wb"`
	AwayTeamIDWB   sql.NullInt64  `db:"away_team_id_wb"`
	LeagueWB       sql.NullString `db:"league_wb"`

	UpdatedAt sql.NullTime `db:"updated_at"`
}

// Settlement carries the outcome of one completed match: actual sides,
// final score and the profit/loss of both markets. actual_winner stores the
// team name (or "Draw"), actual_over_under the fixed-line label
// "Over 2.5"/"Under 2.5".
type Settlement struct {
	MatchID         int
	ActualWinner    string
	ActualOverUnder string
	HomeGoals       float64
	AwayGoals       float64
	TotalGoals      float64
	OutcomeProfit   float64
	WinnerProfit    float64
}

// PredictionInput is one parsed row of the predictions CSV export. Optional
// cells are pointers; a nil pointer becomes NULL in the database.
type PredictionInput struct {
	MatchID      int
	Date         string
	LeagueID     string
	HomeTeamID   *int
	AwayTeamID   *int
	HomeTeamName string
	AwayTeamName string

	// Market odds
	HomeOdds  *float64 // odds_ft_1
	AwayOdds  *float64 // odds_ft_2
	DrawOdds  *float64 // odds_ft_x
	OverOdds  *float64 // odds_ft_over25
	UnderOdds *float64 // odds_ft_under25
	CTMCL     *float64

	// Model output
	PredictedHomeGoals *float64
	PredictedAwayGoals *float64
	Confidence         *float64
	PredictedGoalDiff  *float64
	CTMCLPrediction    string // totals label
	OutcomeLabel       string // moneyline label
	Status             string
	ConfidenceCategory string
}

// ToPrediction converts a CSV row to the database model. The league display
// name and letter grade are resolved by the caller (league map and display
// grading live upstream so this stays a plain mapping).
func (pi *PredictionInput) ToPrediction(leagueName, grade string) *Prediction {
	pred := &Prediction{
		MatchID:    pi.MatchID,
		Date:       pi.Date,
		League:     pi.LeagueID,
		LeagueName: leagueName,
		HomeTeam:   pi.HomeTeamName,
		AwayTeam:   pi.AwayTeamName,
		Status:     pi.Status,
		DataSource: DataSourceFootyStats,
	}

	if pred.Status == "" {
		pred.Status = StatusPending
	}

	if pi.HomeTeamID != nil {
		pred.HomeID = sql.NullInt64{Int64: int64(*pi.HomeTeamID), Valid: true}
	}
	if pi.AwayTeamID != nil {
		pred.AwayID = sql.NullInt64{Int64: int64(*pi.AwayTeamID), Valid: true}
	}

	// Market odds
	if pi.HomeOdds != nil {
		pred.HomeOdds = sql.NullFloat64{Float64: *pi.HomeOdds, Valid: true}
	}
	if pi.AwayOdds != nil {
		pred.AwayOdds = sql.NullFloat64{Float64: *pi.AwayOdds, Valid: true}
	}
	if pi.DrawOdds != nil {
		pred.DrawOdds = sql.NullFloat64{Float64: *pi.DrawOdds, Valid: true}
	}
	if pi.OverOdds != nil {
		pred.OverOdds = sql.NullFloat64{Float64: *pi.OverOdds, Valid: true}
	}
	if pi.UnderOdds != nil {
		pred.UnderOdds = sql.NullFloat64{Float64: *pi.UnderOdds, Valid: true}
	}
	if pi.CTMCL != nil {
		pred.CTMCL = sql.NullFloat64{Float64: *pi.CTMCL, Valid: true}
	}

	// Model output
	if pi.PredictedHomeGoals != nil {
		pred.PredictedHomeGoals = sql.NullFloat64{Float64: *pi.PredictedHomeGoals, Valid: true}
	}
	if pi.PredictedAwayGoals != nil {
		pred.PredictedAwayGoals = sql.NullFloat64{Float64: *pi.PredictedAwayGoals, Valid: true}
	}
	if pi.Confidence != nil {
		pred.Confidence = sql.NullFloat64{Float64: *pi.Confidence, Valid: true}
	}
	if pi.PredictedGoalDiff != nil {
		pred.Delta = sql.NullFloat64{Float64: *pi.PredictedGoalDiff, Valid: true}
	}
	if grade != "" {
		pred.Grade = sql.NullString{String: grade, Valid: true}
	}
	if pi.CTMCLPrediction != "" {
		pred.PredictedOutcome = sql.NullString{String: pi.CTMCLPrediction, Valid: true}
	}
	if pi.OutcomeLabel != "" {
		pred.PredictedWinner = sql.NullString{String: pi.OutcomeLabel, Valid: true}
	}
	if pi.ConfidenceCategory != "" {
		pred.ConfidenceCategory = sql.NullString{String: pi.ConfidenceCategory, Valid: true}
	}

	// Settlement fields stay NULL until the match completes.
	return pred
}
