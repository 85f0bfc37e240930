package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/models"
)

func testModelPrediction(matchID int, date string) *models.ModelPrediction {
	return &models.ModelPrediction{
		MatchID:             matchID,
		Date:                date,
		LeagueID:            "12325",
		HomeTeamName:        "Model Home FC",
		AwayTeamName:        "Model Away FC",
		PredictedHomeGoals:  sql.NullFloat64{Float64: 1.62, Valid: true},
		PredictedAwayGoals:  sql.NullFloat64{Float64: 1.08, Valid: true},
		PredictedTotalGoals: sql.NullFloat64{Float64: 2.70, Valid: true},
		PredictedWinner:     sql.NullString{String: "Home Win", Valid: true},
		PredictedOutcome:    sql.NullString{String: "Over 2.85", Valid: true},
		ConfidenceCategory:  sql.NullString{String: "Medium", Valid: true},
		CTMCL:               sql.NullFloat64{Float64: 2.85, Valid: true},
		HomeOdds:            sql.NullFloat64{Float64: 2.10, Valid: true},
		AwayOdds:            sql.NullFloat64{Float64: 3.40, Valid: true},
		DrawOdds:            sql.NullFloat64{Float64: 3.30, Valid: true},
		OverOdds:            sql.NullFloat64{Float64: 1.95, Valid: true},
		UnderOdds:           sql.NullFloat64{Float64: 1.87, Valid: true},
		Status:              models.StatusPending,
		PredictionTimestamp: time.Now().UTC(),
	}
}

func containsModelMatchID(preds []*models.ModelPrediction, matchID int) bool {
	for _, p := range preds {
		if p.MatchID == matchID {
			return true
		}
	}
	return false
}

func TestModelPredictionRepository_TableGuard(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.ModelPredictions.Create(ctx, "predictions_other", testModelPrediction(1, "2020-01-05"))
	assert.Error(t, err, "Should reject an unknown table name")

	_, err = db.ModelPredictions.UngradedMoneyline(ctx, "agility_soccer_v1; DROP TABLE x")
	assert.Error(t, err, "Should reject an unknown table name")

	_, err = db.ModelPredictions.Count(ctx, "")
	assert.Error(t, err, "Should reject an empty table name")
}

func TestModelPredictionRepository_GradeSweep(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	withOdds := 900000201
	noOdds := 900000202
	defer deleteMatches(t, db, ctx, TableModelV1, withOdds, noOdds)

	require.NoError(t, db.ModelPredictions.Create(ctx, TableModelV1, testModelPrediction(withOdds, "2020-01-05")))

	bare := testModelPrediction(noOdds, "2020-01-05")
	bare.HomeOdds = sql.NullFloat64{}
	bare.AwayOdds = sql.NullFloat64{}
	bare.DrawOdds = sql.NullFloat64{}
	require.NoError(t, db.ModelPredictions.Create(ctx, TableModelV1, bare))

	// Moneyline sweep skips rows without market odds
	ml, err := db.ModelPredictions.UngradedMoneyline(ctx, TableModelV1)
	require.NoError(t, err, "Should get ungraded moneyline rows")
	assert.True(t, containsModelMatchID(ml, withOdds), "Row with odds should be up for grading")
	assert.False(t, containsModelMatchID(ml, noOdds), "Row without odds should be skipped")

	err = db.ModelPredictions.ApplyMoneylineGrades(ctx, TableModelV1, []models.GradeUpdate{
		{MatchID: withOdds, Grade: "B", Confidence: sql.NullFloat64{Float64: 28.4, Valid: true}},
	})
	require.NoError(t, err, "Should apply moneyline grades")

	ml, err = db.ModelPredictions.UngradedMoneyline(ctx, TableModelV1)
	require.NoError(t, err)
	assert.False(t, containsModelMatchID(ml, withOdds), "Graded row should leave the sweep")

	// Totals sweep has no odds gate
	ou, err := db.ModelPredictions.UngradedTotals(ctx, TableModelV1)
	require.NoError(t, err, "Should get ungraded totals rows")
	assert.True(t, containsModelMatchID(ou, withOdds))
	assert.True(t, containsModelMatchID(ou, noOdds))

	err = db.ModelPredictions.ApplyTotalsGrades(ctx, TableModelV1, []models.GradeUpdate{
		{MatchID: withOdds, Grade: "A", Confidence: sql.NullFloat64{Float64: 81.0, Valid: true}},
		{MatchID: noOdds, Grade: "D", Confidence: sql.NullFloat64{Float64: 0, Valid: true}},
	})
	require.NoError(t, err, "Should apply totals grades")

	ou, err = db.ModelPredictions.UngradedTotals(ctx, TableModelV1)
	require.NoError(t, err)
	assert.False(t, containsModelMatchID(ou, withOdds))
	assert.False(t, containsModelMatchID(ou, noOdds))

	// Undefined market stores a NULL moneyline confidence
	_, err = db.Pool.Exec(ctx,
		`UPDATE `+TableModelV1+` SET ml_grade = NULL, ml_confidence = NULL WHERE match_id = $1`,
		withOdds,
	)
	require.NoError(t, err)

	err = db.ModelPredictions.ApplyMoneylineGrades(ctx, TableModelV1, []models.GradeUpdate{
		{MatchID: withOdds, Grade: "D", Confidence: sql.NullFloat64{}},
	})
	require.NoError(t, err)

	var grade string
	var conf sql.NullFloat64
	err = db.Pool.QueryRow(ctx,
		`SELECT ml_grade, ml_confidence FROM `+TableModelV1+` WHERE match_id = $1`,
		withOdds,
	).Scan(&grade, &conf)
	require.NoError(t, err)
	assert.Equal(t, "D", grade)
	assert.False(t, conf.Valid, "Undefined market should store NULL confidence")
}

func TestModelPredictionRepository_DeleteMissing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	keepID := 900000203
	dropID := 900000204
	defer deleteMatches(t, db, ctx, TableModelV3, keepID, dropID)

	require.NoError(t, db.ModelPredictions.Create(ctx, TableModelV3, testModelPrediction(keepID, "2020-01-05")))
	require.NoError(t, db.ModelPredictions.Create(ctx, TableModelV3, testModelPrediction(dropID, "2020-01-05")))

	// Empty keep set is refused so a bad export can't wipe the table
	_, err := db.ModelPredictions.DeleteMissing(ctx, TableModelV3, nil)
	assert.Error(t, err, "Should refuse an empty keep set")

	// Keep everything currently in the table except dropID
	existing, err := db.ModelPredictions.ExistingMatchIDs(ctx, TableModelV3)
	require.NoError(t, err)

	keep := make([]int, 0, len(existing))
	for id := range existing {
		if id != dropID {
			keep = append(keep, id)
		}
	}

	removed, err := db.ModelPredictions.DeleteMissing(ctx, TableModelV3, keep)
	require.NoError(t, err, "Should delete rows missing from the keep set")
	assert.Equal(t, int64(1), removed, "Should remove exactly the dropped row")

	existing, err = db.ModelPredictions.ExistingMatchIDs(ctx, TableModelV3)
	require.NoError(t, err)
	_, ok := existing[keepID]
	assert.True(t, ok, "Kept row should survive")
	_, ok = existing[dropID]
	assert.False(t, ok, "Dropped row should be gone")
}

func TestModelPredictionRepository_SettleFlow(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000205
	defer deleteMatches(t, db, ctx, TableModelV1, matchID)

	require.NoError(t, db.ModelPredictions.Create(ctx, TableModelV1, testModelPrediction(matchID, "2020-01-05")))

	pending, err := db.ModelPredictions.PendingThrough(ctx, TableModelV1, "2020-01-06")
	require.NoError(t, err, "Should get pending model predictions")
	assert.True(t, containsModelMatchID(pending, matchID))

	err = db.ModelPredictions.Settle(ctx, TableModelV1, &models.Settlement{
		MatchID:         matchID,
		ActualWinner:    "Model Home FC",
		ActualOverUnder: "Over 2.5",
		HomeGoals:       3,
		AwayGoals:       1,
		TotalGoals:      4,
		OutcomeProfit:   0.95,
		WinnerProfit:    1.10,
	})
	require.NoError(t, err, "Should settle model prediction")

	pending, err = db.ModelPredictions.PendingThrough(ctx, TableModelV1, "2020-01-06")
	require.NoError(t, err)
	assert.False(t, containsModelMatchID(pending, matchID), "Settled row should leave the work list")

	err = db.ModelPredictions.Settle(ctx, TableModelV1, &models.Settlement{MatchID: 999999999})
	assert.Error(t, err, "Settling an unknown match id should fail")
}
