package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/models"
)

// PredictionRepository handles agility_soccer_v1 database operations
type PredictionRepository struct {
	db *Database
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new prediction row. Settlement columns are written NULL
// and filled by the settlement sweep later.
func (r *PredictionRepository) Create(ctx context.Context, pred *models.Prediction) error {
	if pred == nil {
		return fmt.Errorf("prediction cannot be nil")
	}
	if pred.MatchID <= 0 {
		return fmt.Errorf("match_id must be positive")
	}

	query := `
		INSERT INTO agility_soccer_v1 (
			match_id, date, league, league_name, home_id, away_id, home_team, away_team,
			home_odds, away_odds, draw_odds, over_2_5_odds, under_2_5_odds,
			ctmcl, predicted_home_goals, predicted_away_goals, confidence, grade, delta,
			predicted_outcome, predicted_winner,
			status, data_source, confidence_category,
			actual_over_under, actual_winner, profit_loss_outcome, profit_loss_winner,
			actual_home_team_goals, actual_away_team_goals, actual_total_goals
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31
		)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		pred.MatchID, pred.Date, pred.League, pred.LeagueName, pred.HomeID, pred.AwayID, pred.HomeTeam, pred.AwayTeam,
		pred.HomeOdds, pred.AwayOdds, pred.DrawOdds, pred.OverOdds, pred.UnderOdds,
		pred.CTMCL, pred.PredictedHomeGoals, pred.PredictedAwayGoals, pred.Confidence, pred.Grade, pred.Delta,
		pred.PredictedOutcome, pred.PredictedWinner,
		pred.Status, pred.DataSource, pred.ConfidenceCategory,
		pred.ActualOverUnder, pred.ActualWinner, pred.ProfitLossOutcome, pred.ProfitLossWinner,
		pred.ActualHomeTeamGoals, pred.ActualAwayTeamGoals, pred.ActualTotalGoals,
	)

	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	log.Debug().
		Int("match_id", pred.MatchID).
		Str("home", pred.HomeTeam).
		Str("away", pred.AwayTeam).
		Msg("Prediction created")

	return nil
}

// ExistingMatchIDs returns the set of match IDs already in the table.
// The ingest uses it to skip duplicates with a single round trip.
func (r *PredictionRepository) ExistingMatchIDs(ctx context.Context) (map[int]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT match_id FROM agility_soccer_v1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing match ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match ids: %w", err)
	}

	return ids, nil
}

// PendingThrough retrieves PENDING rows dated on or before the target date,
// the settlement sweep's work list.
func (r *PredictionRepository) PendingThrough(ctx context.Context, date string) ([]*models.Prediction, error) {
	query := `
		SELECT match_id, date::text, league_name, home_team, away_team,
		       home_odds, away_odds, draw_odds, over_2_5_odds, under_2_5_odds,
		       predicted_outcome, predicted_winner, confidence_category, status
		FROM agility_soccer_v1
		WHERE status = 'PENDING' AND date <= $1
		ORDER BY date, match_id
	`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending predictions: %w", err)
	}
	defer rows.Close()

	var preds []*models.Prediction
	for rows.Next() {
		var pred models.Prediction
		err := rows.Scan(
			&pred.MatchID, &pred.Date, &pred.LeagueName, &pred.HomeTeam, &pred.AwayTeam,
			&pred.HomeOdds, &pred.AwayOdds, &pred.DrawOdds, &pred.OverOdds, &pred.UnderOdds,
			&pred.PredictedOutcome, &pred.PredictedWinner, &pred.ConfidenceCategory, &pred.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	log.Debug().Int("count", len(preds)).Str("through", date).Msg("Retrieved pending predictions")
	return preds, nil
}

// Settle writes the actual result and both profit/loss columns and moves the
// row to SETTLED.
func (r *PredictionRepository) Settle(ctx context.Context, s *models.Settlement) error {
	query := `
		UPDATE agility_soccer_v1
		SET actual_winner = $1,
		    actual_over_under = $2,
		    actual_home_team_goals = $3,
		    actual_away_team_goals = $4,
		    actual_total_goals = $5,
		    status = $6,
		    profit_loss_outcome = $7,
		    profit_loss_winner = $8,
		    updated_at = NOW()
		WHERE match_id = $9
	`

	result, err := r.db.Pool.Exec(ctx, query,
		s.ActualWinner, s.ActualOverUnder,
		s.HomeGoals, s.AwayGoals, s.TotalGoals,
		models.StatusSettled,
		s.OutcomeProfit, s.WinnerProfit,
		s.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle prediction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prediction not found: match_id=%d", s.MatchID)
	}

	return nil
}

// MarkVoid sets a terminal non-settled status (CANCELLED, POSTPONED, ...).
func (r *PredictionRepository) MarkVoid(ctx context.Context, matchID int, status string) error {
	result, err := r.db.Pool.Exec(ctx,
		`UPDATE agility_soccer_v1 SET status = $1 WHERE match_id = $2`,
		status, matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to void prediction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prediction not found: match_id=%d", matchID)
	}

	log.Warn().Int("match_id", matchID).Str("status", status).Msg("Prediction voided")
	return nil
}

// TouchPending refreshes updated_at for a row whose match has not finished
// yet, which keeps the row visible to the next sweep.
func (r *PredictionRepository) TouchPending(ctx context.Context, matchID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE agility_soccer_v1 SET status = $1, updated_at = NOW() WHERE match_id = $2`,
		models.StatusPending, matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch pending prediction: %w", err)
	}
	return nil
}

// NeedingAdvice retrieves upcoming PENDING rows with no advisor picks yet.
// Rows with any of the three ai columns filled are skipped.
func (r *PredictionRepository) NeedingAdvice(ctx context.Context, fromDate string, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT match_id, date::text, league_name, home_team, away_team,
		       predicted_home_goals, predicted_away_goals,
		       predicted_outcome, predicted_winner, confidence_category
		FROM agility_soccer_v1
		WHERE ai_moneyline IS NULL AND ai_overunder IS NULL AND ai_spreads IS NULL
		  AND status = 'PENDING' AND date >= $1
		ORDER BY date, match_id
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, fromDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions needing advice: %w", err)
	}
	defer rows.Close()

	var preds []*models.Prediction
	for rows.Next() {
		var pred models.Prediction
		err := rows.Scan(
			&pred.MatchID, &pred.Date, &pred.LeagueName, &pred.HomeTeam, &pred.AwayTeam,
			&pred.PredictedHomeGoals, &pred.PredictedAwayGoals,
			&pred.PredictedOutcome, &pred.PredictedWinner, &pred.ConfidenceCategory,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// UpdateAdvice writes the three advisor picks for a match. Markets the parse
// could not extract are stored as NULL; a row where all three stayed NULL
// remains eligible for the next advisor run.
func (r *PredictionRepository) UpdateAdvice(ctx context.Context, matchID int, adv *models.Advice) error {
	query := `
		UPDATE agility_soccer_v1
		SET ai_moneyline = $1, ai_overunder = $2, ai_spreads = $3, updated_at = NOW()
		WHERE match_id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query,
		nullIfEmpty(adv.Moneyline), nullIfEmpty(adv.OverUnder), nullIfEmpty(adv.Spreads),
		matchID)
	if err != nil {
		return fmt.Errorf("failed to update advice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prediction not found: match_id=%d", matchID)
	}

	return nil
}

// TeamNames returns the distinct team names seen for a league, home and away
// sides combined. The team sync fuzzy-matches provider names against these.
func (r *PredictionRepository) TeamNames(ctx context.Context, leagueName string) ([]string, error) {
	query := `
		SELECT DISTINCT name FROM (
			SELECT home_team AS name FROM agility_soccer_v1 WHERE league_name = $1
			UNION
			SELECT away_team AS name FROM agility_soccer_v1 WHERE league_name = $1
		) t WHERE name IS NOT NULL ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, leagueName)
	if err != nil {
		return nil, fmt.Errorf("failed to get team names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan team name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team names: %w", err)
	}

	return names, nil
}

// LeagueNames returns the distinct league names present in the table.
func (r *PredictionRepository) LeagueNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT DISTINCT league_name FROM agility_soccer_v1 ORDER BY league_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get league names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan league name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating league names: %w", err)
	}

	return names, nil
}

// FindMatchID locates a prediction by home team, away team and date: exact
// date first, then the nearest row within one day to absorb timezone shifts.
// Returns 0 when no row matches.
func (r *PredictionRepository) FindMatchID(ctx context.Context, homeTeam, awayTeam, date string) (int, error) {
	var matchID int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT match_id FROM agility_soccer_v1
		WHERE home_team = $1 AND away_team = $2 AND date = $3
	`, homeTeam, awayTeam, date).Scan(&matchID)
	if err == nil {
		return matchID, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("failed to find prediction: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT match_id FROM agility_soccer_v1
		WHERE home_team = $1 AND away_team = $2
		  AND date BETWEEN ($3::date - 1) AND ($3::date + 1)
		ORDER BY ABS(date - $3::date) LIMIT 1
	`, homeTeam, awayTeam, date).Scan(&matchID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find prediction: %w", err)
	}

	return matchID, nil
}

// CandidatesNear returns the rows within one day of the date, the candidate
// pool for the fuzzy match-mapping fallback.
func (r *PredictionRepository) CandidatesNear(ctx context.Context, date string) ([]*models.Prediction, error) {
	query := `
		SELECT match_id, home_team, away_team FROM agility_soccer_v1
		WHERE date BETWEEN ($1::date - 1) AND ($1::date + 1)
	`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate predictions: %w", err)
	}
	defer rows.Close()

	var preds []*models.Prediction
	for rows.Next() {
		var pred models.Prediction
		if err := rows.Scan(&pred.MatchID, &pred.HomeTeam, &pred.AwayTeam); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// NeedingWinbetsIDs retrieves rows with at least one mirror-side identifier
// still missing. Complete rows are skipped entirely.
func (r *PredictionRepository) NeedingWinbetsIDs(ctx context.Context) ([]*models.Prediction, error) {
	query := `
		SELECT match_id, league_name, home_team, away_team, home_id, away_id
		FROM agility_soccer_v1
		WHERE home_team_name_wb IS NULL OR away_team_name_wb IS NULL
		   OR home_team_id_wb IS NULL OR away_team_id_wb IS NULL
		   OR league_wb IS NULL
		ORDER BY match_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows needing winbets ids: %w", err)
	}
	defer rows.Close()

	var preds []*models.Prediction
	for rows.Next() {
		var pred models.Prediction
		err := rows.Scan(&pred.MatchID, &pred.LeagueName, &pred.HomeTeam, &pred.AwayTeam,
			&pred.HomeID, &pred.AwayID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// UpdateWinbetsIDs fills the mirror-side identifier columns that are still
// NULL. COALESCE keeps values that are already set, so re-running the
// backfill never overwrites.
func (r *PredictionRepository) UpdateWinbetsIDs(ctx context.Context, matchID int, ids *models.WinbetsIDs) error {
	query := `
		UPDATE agility_soccer_v1
		SET home_team_name_wb = COALESCE(home_team_name_wb, $1),
		    away_team_name_wb = COALESCE(away_team_name_wb, $2),
		    home_team_id_wb = COALESCE(home_team_id_wb, $3),
		    away_team_id_wb = COALESCE(away_team_id_wb, $4),
		    league_wb = COALESCE(league_wb, $5)
		WHERE match_id = $6
	`

	_, err := r.db.Pool.Exec(ctx, query,
		ids.HomeTeamName, ids.AwayTeamName, ids.HomeTeamID, ids.AwayTeamID, ids.League,
		matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to update winbets ids: %w", err)
	}

	return nil
}

// Count returns the total number of prediction rows
func (r *PredictionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM agility_soccer_v1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	return count, nil
}
