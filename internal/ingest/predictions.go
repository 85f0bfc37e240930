package ingest

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/leagues"
	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/scoring"
)

// predictionColumns are the CSV columns the predictions export must carry.
var predictionColumns = []string{
	"match_id", "date", "league_id",
	"home_team_id", "away_team_id", "home_team_name", "away_team_name",
	"odds_ft_1", "odds_ft_x", "odds_ft_2", "odds_ft_over25", "odds_ft_under25",
	"CTMCL", "predicted_home_goals", "predicted_away_goals",
	"confidence", "predicted_goal_diff",
	"ctmcl_prediction", "outcome_label", "status", "confidence_category",
}

// Predictions loads the published-predictions CSV into agility_soccer_v1 on
// every given database. Each database keeps its own existing-ID set, so a
// mirror that missed a previous run catches up. Returns one summary per
// database name.
func Predictions(ctx context.Context, dbs []*repository.Database, path string) (map[string]*Summary, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(predictionColumns...); err != nil {
		return nil, err
	}

	preds := make([]*models.Prediction, 0, len(t.records))
	parseFailed := 0
	for _, record := range t.records {
		pred, err := predictionRow(t, record)
		if err != nil {
			parseFailed++
			log.Warn().Err(err).Msg("Skipping unparseable prediction row")
			continue
		}
		preds = append(preds, pred)
	}

	summaries := make(map[string]*Summary, len(dbs))
	for _, db := range dbs {
		sum, err := insertPredictions(ctx, db, preds)
		if err != nil {
			return summaries, err
		}
		sum.Total = len(t.records)
		sum.Failed += parseFailed
		summaries[db.Name] = sum

		metrics.RecordInsert("agility_soccer_v1", sum.Inserted)
		log.Info().
			Str("database", db.Name).
			Str("file", path).
			Int("total", sum.Total).
			Int("inserted", sum.Inserted).
			Int("skipped", sum.Skipped).
			Int("failed", sum.Failed).
			Msg("Prediction ingest complete")
	}

	return summaries, nil
}

func insertPredictions(ctx context.Context, db *repository.Database, preds []*models.Prediction) (*Summary, error) {
	existing, err := db.Predictions.ExistingMatchIDs(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, pred := range preds {
		if _, ok := existing[pred.MatchID]; ok {
			sum.Skipped++
			continue
		}
		if err := db.Predictions.Create(ctx, pred); err != nil {
			sum.Failed++
			log.Warn().Err(err).
				Str("database", db.Name).
				Int("match_id", pred.MatchID).
				Msg("Failed to insert prediction")
			continue
		}
		sum.Inserted++
	}

	return sum, nil
}

func predictionRow(t *table, record []string) (*models.Prediction, error) {
	matchID, err := t.matchID(record)
	if err != nil {
		return nil, err
	}

	in := &models.PredictionInput{
		MatchID:            matchID,
		Date:               t.cell(record, "date"),
		HomeTeamID:         t.intCell(record, "home_team_id"),
		AwayTeamID:         t.intCell(record, "away_team_id"),
		HomeTeamName:       t.cell(record, "home_team_name"),
		AwayTeamName:       t.cell(record, "away_team_name"),
		HomeOdds:           t.floatCell(record, "odds_ft_1"),
		AwayOdds:           t.floatCell(record, "odds_ft_2"),
		DrawOdds:           t.floatCell(record, "odds_ft_x"),
		OverOdds:           t.floatCell(record, "odds_ft_over25"),
		UnderOdds:          t.floatCell(record, "odds_ft_under25"),
		CTMCL:              t.floatCell(record, "CTMCL"),
		PredictedHomeGoals: t.floatCell(record, "predicted_home_goals"),
		PredictedAwayGoals: t.floatCell(record, "predicted_away_goals"),
		Confidence:         t.floatCell(record, "confidence"),
		PredictedGoalDiff:  t.floatCell(record, "predicted_goal_diff"),
		CTMCLPrediction:    t.cell(record, "ctmcl_prediction"),
		OutcomeLabel:       t.cell(record, "outcome_label"),
		Status:             t.cell(record, "status"),
		ConfidenceCategory: t.cell(record, "confidence_category"),
	}

	// League display name off the numeric ID; unparseable IDs keep the raw
	// cell and land in the unknown bucket.
	leagueName := leagues.UnknownLeague
	in.LeagueID = t.cell(record, "league_id")
	if id := t.intCell(record, "league_id"); id != nil {
		in.LeagueID = strconv.Itoa(*id)
		leagueName = leagues.Name(*id)
	}

	grade := ""
	if in.Confidence != nil {
		g, clamped := scoring.DisplayGrade(*in.Confidence)
		if clamped {
			log.Warn().
				Int("match_id", matchID).
				Float64("confidence", *in.Confidence).
				Msg("Confidence outside [0,1], clamped for grading")
		}
		grade = g
	}

	return in.ToPrediction(leagueName, grade), nil
}
