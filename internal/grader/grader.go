// Package grader runs the grading sweeps over the model prediction tables:
// moneyline grades for both model generations, totals grades for the v1
// table. Sweeps only touch rows whose grade column is still NULL, so re-runs
// are no-ops.
package grader

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/scoring"
)

// v1TotalsThreshold is the goal line the v1 model table was trained against.
// Its totals labels are graded against this line, not the per-match CTMCL.
const v1TotalsThreshold = 2.5

type Grader struct {
	db *repository.Database
}

func New(db *repository.Database) *Grader {
	return &Grader{db: db}
}

// GradeAll runs every sweep: moneyline over both model tables, totals over
// the v1 table.
func (g *Grader) GradeAll(ctx context.Context) error {
	if _, err := g.GradeMoneyline(ctx, repository.TableModelV1); err != nil {
		return err
	}
	if _, err := g.GradeMoneyline(ctx, repository.TableModelV3); err != nil {
		return err
	}
	if _, err := g.GradeTotals(ctx, repository.TableModelV1); err != nil {
		return err
	}
	return nil
}

// GradeMoneyline grades every ungraded moneyline row of the table and
// returns how many it graded.
func (g *Grader) GradeMoneyline(ctx context.Context, table string) (int, error) {
	rows, err := g.db.ModelPredictions.UngradedMoneyline(ctx, table)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		log.Debug().Str("table", table).Msg("No ungraded moneyline rows")
		return 0, nil
	}

	updates := make([]models.GradeUpdate, 0, len(rows))
	dist := make(map[string]int)
	for _, row := range rows {
		u := moneylineUpdate(row)
		dist[u.Grade]++
		metrics.RecordGrade(table, "moneyline", u.Grade)
		updates = append(updates, u)
	}

	if err := g.db.ModelPredictions.ApplyMoneylineGrades(ctx, table, updates); err != nil {
		return 0, err
	}

	log.Info().
		Str("table", table).
		Int("graded", len(updates)).
		Int("grade_a", dist["A"]).
		Int("grade_b", dist["B"]).
		Int("grade_c", dist["C"]).
		Int("grade_d", dist["D"]).
		Msg("Moneyline grading sweep complete")

	return len(updates), nil
}

// GradeTotals grades every ungraded totals row of the table against the
// fixed v1 line and returns how many it graded.
func (g *Grader) GradeTotals(ctx context.Context, table string) (int, error) {
	rows, err := g.db.ModelPredictions.UngradedTotals(ctx, table)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		log.Debug().Str("table", table).Msg("No ungraded totals rows")
		return 0, nil
	}

	updates := make([]models.GradeUpdate, 0, len(rows))
	dist := make(map[string]int)
	for _, row := range rows {
		u := totalsUpdate(row, v1TotalsThreshold)
		dist[u.Grade]++
		metrics.RecordGrade(table, "totals", u.Grade)
		updates = append(updates, u)
	}

	if err := g.db.ModelPredictions.ApplyTotalsGrades(ctx, table, updates); err != nil {
		return 0, err
	}

	log.Info().
		Str("table", table).
		Int("graded", len(updates)).
		Int("grade_a", dist["A"]).
		Int("grade_b", dist["B"]).
		Int("grade_c", dist["C"]).
		Int("grade_d", dist["D"]).
		Msg("Totals grading sweep complete")

	return len(updates), nil
}

// moneylineUpdate scores one row's winner call against its market. An
// undefined market (missing odds, unknown label) grades D with a NULL
// confidence.
func moneylineUpdate(row *models.ModelPrediction) models.GradeUpdate {
	side := scoring.ParseWinnerLabel(row.PredictedWinner.String)
	odds := scoring.MoneylineOdds{
		Home: row.HomeOdds.Float64,
		Away: row.AwayOdds.Float64,
		Draw: row.DrawOdds.Float64,
	}

	conf, ok := scoring.MoneylineConfidence(
		row.PredictedHomeGoals.Float64, row.PredictedAwayGoals.Float64, side, odds)

	u := models.GradeUpdate{MatchID: row.MatchID, Grade: scoring.MoneylineGrade(conf, ok)}
	if ok {
		u.Confidence = sql.NullFloat64{Float64: scoring.ConfidencePercent(conf), Valid: true}
	}
	return u
}

// totalsUpdate scores one row's totals call against its market. An undefined
// market grades D with confidence 0, not NULL, matching what this table has
// always stored.
func totalsUpdate(row *models.ModelPrediction, threshold float64) models.GradeUpdate {
	side := scoring.ParseTotalsLabel(row.PredictedOutcome.String)
	odds := scoring.TotalsOdds{
		Over:  row.OverOdds.Float64,
		Under: row.UnderOdds.Float64,
	}

	conf, ok := scoring.TotalsConfidence(row.PredictedTotalGoals.Float64, threshold, side, odds)

	pct := 0.0
	if ok {
		pct = scoring.ConfidencePercent(conf)
	}
	return models.GradeUpdate{
		MatchID:    row.MatchID,
		Grade:      scoring.TotalsGrade(conf, ok),
		Confidence: sql.NullFloat64{Float64: pct, Valid: true},
	}
}
