package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/models"
)

// The two in-house model tables. The v1 table carries the totals market and
// is the only target of the over/under grading sweep; the moneyline sweep
// and settlement run against both.
const (
	TableModelV1 = "predictions_soccer_v1_ourmodel"
	TableModelV3 = "predictions_soccer_v3_ourmodel"
)

// Grade updates are committed in chunks so a failure late in a large sweep
// keeps the earlier chunks.
const gradeBatchSize = 100

// ModelPredictionRepository handles the in-house model tables. Every method
// takes the table name, checked against the known set because identifiers
// cannot be bound as query parameters.
type ModelPredictionRepository struct {
	db *Database
}

func checkModelTable(table string) error {
	switch table {
	case TableModelV1, TableModelV3:
		return nil
	}
	return fmt.Errorf("unknown model table: %q", table)
}

// Create inserts a new model prediction row. Grade and settlement columns
// stay NULL for the sweeps to fill.
func (r *ModelPredictionRepository) Create(ctx context.Context, table string, mp *models.ModelPrediction) error {
	if err := checkModelTable(table); err != nil {
		return err
	}
	if mp == nil {
		return fmt.Errorf("model prediction cannot be nil")
	}
	if mp.MatchID <= 0 {
		return fmt.Errorf("match_id must be positive")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			match_id, date, league_id, home_team_id, away_team_id,
			home_team_name, away_team_name,
			predicted_home_goals, predicted_away_goals, predicted_total_goals,
			predicted_winner, predicted_outcome, btts_prediction, confidence_category,
			ctmcl, home_odds, away_odds, draw_odds, over_2_5_odds, under_2_5_odds,
			moneyline_profit, over_profit, ctmcl_profit,
			status, prediction_timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25
		)
	`, table)

	_, err := r.db.Pool.Exec(ctx, query,
		mp.MatchID, mp.Date, mp.LeagueID, mp.HomeTeamID, mp.AwayTeamID,
		mp.HomeTeamName, mp.AwayTeamName,
		mp.PredictedHomeGoals, mp.PredictedAwayGoals, mp.PredictedTotalGoals,
		mp.PredictedWinner, mp.PredictedOutcome, mp.BTTSPrediction, mp.ConfidenceCategory,
		mp.CTMCL, mp.HomeOdds, mp.AwayOdds, mp.DrawOdds, mp.OverOdds, mp.UnderOdds,
		mp.MoneylineProfit, mp.OverProfit, mp.CTMCLProfit,
		mp.Status, mp.PredictionTimestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to create model prediction: %w", err)
	}

	log.Debug().
		Int("match_id", mp.MatchID).
		Str("table", table).
		Msg("Model prediction created")

	return nil
}

// ExistingMatchIDs returns the set of match IDs already in the table
func (r *ModelPredictionRepository) ExistingMatchIDs(ctx context.Context, table string) (map[int]struct{}, error) {
	if err := checkModelTable(table); err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, fmt.Sprintf(`SELECT match_id FROM %s`, table))
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

// DeleteMissing removes rows whose match_id is not in the keep set, the
// cleanup after a feature file refresh. An empty keep set is refused so a
// bad CSV cannot wipe the table.
func (r *ModelPredictionRepository) DeleteMissing(ctx context.Context, table string, keep []int) (int64, error) {
	if err := checkModelTable(table); err != nil {
		return 0, err
	}
	if len(keep) == 0 {
		return 0, fmt.Errorf("refusing to delete with an empty keep set")
	}

	ids := make([]int64, len(keep))
	for i, id := range keep {
		ids[i] = int64(id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE NOT (match_id = ANY($1))`, table)
	result, err := r.db.Pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale model predictions: %w", err)
	}

	removed := result.RowsAffected()
	if removed > 0 {
		log.Info().Int64("removed", removed).Str("table", table).Msg("Removed stale model predictions")
	}

	return removed, nil
}

// UngradedMoneyline retrieves rows awaiting a moneyline grade. Rows without
// market odds are left alone; this keeps the sweep a no-op on re-runs.
func (r *ModelPredictionRepository) UngradedMoneyline(ctx context.Context, table string) ([]*models.ModelPrediction, error) {
	if err := checkModelTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT match_id, predicted_home_goals, predicted_away_goals, predicted_winner,
		       home_odds, away_odds, draw_odds
		FROM %s
		WHERE ml_grade IS NULL AND home_odds IS NOT NULL
		ORDER BY match_id
	`, table)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ungraded moneyline rows: %w", err)
	}
	defer rows.Close()

	var preds []*models.ModelPrediction
	for rows.Next() {
		var mp models.ModelPrediction
		err := rows.Scan(
			&mp.MatchID, &mp.PredictedHomeGoals, &mp.PredictedAwayGoals, &mp.PredictedWinner,
			&mp.HomeOdds, &mp.AwayOdds, &mp.DrawOdds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model prediction: %w", err)
		}
		preds = append(preds, &mp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model predictions: %w", err)
	}

	return preds, nil
}

// UngradedTotals retrieves rows awaiting an over/under grade
func (r *ModelPredictionRepository) UngradedTotals(ctx context.Context, table string) ([]*models.ModelPrediction, error) {
	if err := checkModelTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT match_id, predicted_total_goals, predicted_outcome,
		       over_2_5_odds, under_2_5_odds
		FROM %s
		WHERE ou_grade IS NULL
		ORDER BY match_id
	`, table)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ungraded totals rows: %w", err)
	}
	defer rows.Close()

	var preds []*models.ModelPrediction
	for rows.Next() {
		var mp models.ModelPrediction
		err := rows.Scan(
			&mp.MatchID, &mp.PredictedTotalGoals, &mp.PredictedOutcome,
			&mp.OverOdds, &mp.UnderOdds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model prediction: %w", err)
		}
		preds = append(preds, &mp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model predictions: %w", err)
	}

	return preds, nil
}

// ApplyMoneylineGrades writes moneyline grades in committed chunks.
// ml_confidence is NULL when the market was undefined.
func (r *ModelPredictionRepository) ApplyMoneylineGrades(ctx context.Context, table string, updates []models.GradeUpdate) error {
	if err := checkModelTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET ml_grade = $1, ml_confidence = $2 WHERE match_id = $3`, table)
	return r.applyGrades(ctx, query, updates)
}

// ApplyTotalsGrades writes over/under grades in committed chunks, touching
// updated_at as it goes.
func (r *ModelPredictionRepository) ApplyTotalsGrades(ctx context.Context, table string, updates []models.GradeUpdate) error {
	if err := checkModelTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET ou_grade = $1, ou_confidence = $2, updated_at = NOW() WHERE match_id = $3`, table)
	return r.applyGrades(ctx, query, updates)
}

func (r *ModelPredictionRepository) applyGrades(ctx context.Context, query string, updates []models.GradeUpdate) error {
	for start := 0; start < len(updates); start += gradeBatchSize {
		end := start + gradeBatchSize
		if end > len(updates) {
			end = len(updates)
		}
		if err := r.applyGradeBatch(ctx, query, updates[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ModelPredictionRepository) applyGradeBatch(ctx context.Context, query string, batch []models.GradeUpdate) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin grade batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range batch {
		if _, err := tx.Exec(ctx, query, u.Grade, u.Confidence, u.MatchID); err != nil {
			return fmt.Errorf("failed to update grade for match %d: %w", u.MatchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit grade batch: %w", err)
	}

	return nil
}

// PendingThrough retrieves PENDING rows dated on or before the target date
func (r *ModelPredictionRepository) PendingThrough(ctx context.Context, table, date string) ([]*models.ModelPrediction, error) {
	if err := checkModelTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT match_id, date::text, home_team_name, away_team_name,
		       home_odds, away_odds, draw_odds, over_2_5_odds, under_2_5_odds,
		       predicted_outcome, predicted_winner, status
		FROM %s
		WHERE status = 'PENDING' AND date <= $1
		ORDER BY date, match_id
	`, table)

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending model predictions: %w", err)
	}
	defer rows.Close()

	var preds []*models.ModelPrediction
	for rows.Next() {
		var mp models.ModelPrediction
		err := rows.Scan(
			&mp.MatchID, &mp.Date, &mp.HomeTeamName, &mp.AwayTeamName,
			&mp.HomeOdds, &mp.AwayOdds, &mp.DrawOdds, &mp.OverOdds, &mp.UnderOdds,
			&mp.PredictedOutcome, &mp.PredictedWinner, &mp.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model prediction: %w", err)
		}
		preds = append(preds, &mp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model predictions: %w", err)
	}

	return preds, nil
}

// Settle writes the actual result and both profit/loss columns and moves the
// row to SETTLED.
func (r *ModelPredictionRepository) Settle(ctx context.Context, table string, s *models.Settlement) error {
	if err := checkModelTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
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
	`, table)

	result, err := r.db.Pool.Exec(ctx, query,
		s.ActualWinner, s.ActualOverUnder,
		s.HomeGoals, s.AwayGoals, s.TotalGoals,
		models.StatusSettled,
		s.OutcomeProfit, s.WinnerProfit,
		s.MatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle model prediction: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("model prediction not found: table=%s match_id=%d", table, s.MatchID)
	}

	return nil
}

// MarkVoid sets a terminal non-settled status
func (r *ModelPredictionRepository) MarkVoid(ctx context.Context, table string, matchID int, status string) error {
	if err := checkModelTable(table); err != nil {
		return err
	}

	_, err := r.db.Pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1 WHERE match_id = $2`, table),
		status, matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to void model prediction: %w", err)
	}

	return nil
}

// TouchPending refreshes updated_at on a row that is staying PENDING
func (r *ModelPredictionRepository) TouchPending(ctx context.Context, table string, matchID int) error {
	if err := checkModelTable(table); err != nil {
		return err
	}

	_, err := r.db.Pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = NOW() WHERE match_id = $2`, table),
		models.StatusPending, matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch pending model prediction: %w", err)
	}

	return nil
}

// Count returns the total number of rows in the table
func (r *ModelPredictionRepository) Count(ctx context.Context, table string) (int, error) {
	if err := checkModelTable(table); err != nil {
		return 0, err
	}

	var count int
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count model predictions: %w", err)
	}

	return count, nil
}
