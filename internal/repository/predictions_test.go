package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/models"
)

func testPrediction(matchID int, date string) *models.Prediction {
	return &models.Prediction{
		MatchID:            matchID,
		Date:               date,
		League:             "12325",
		LeagueName:         "England Premier League",
		HomeTeam:           "Test Home FC",
		AwayTeam:           "Test Away FC",
		HomeOdds:           sql.NullFloat64{Float64: 1.85, Valid: true},
		AwayOdds:           sql.NullFloat64{Float64: 4.20, Valid: true},
		DrawOdds:           sql.NullFloat64{Float64: 3.60, Valid: true},
		OverOdds:           sql.NullFloat64{Float64: 1.90, Valid: true},
		UnderOdds:          sql.NullFloat64{Float64: 1.95, Valid: true},
		PredictedOutcome:   sql.NullString{String: "Over 2.5", Valid: true},
		PredictedWinner:    sql.NullString{String: "Home Win", Valid: true},
		ConfidenceCategory: sql.NullString{String: "High", Valid: true},
		Status:             models.StatusPending,
		DataSource:         models.DataSourceFootyStats,
	}
}

func containsMatchID(preds []*models.Prediction, matchID int) bool {
	for _, p := range preds {
		if p.MatchID == matchID {
			return true
		}
	}
	return false
}

func TestPredictionRepository_Create(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000101
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", matchID)

	pred := testPrediction(matchID, "2020-01-05")
	err := db.Predictions.Create(ctx, pred)
	require.NoError(t, err, "Should create prediction")

	ids, err := db.Predictions.ExistingMatchIDs(ctx)
	require.NoError(t, err, "Should get existing match ids")
	_, ok := ids[matchID]
	assert.True(t, ok, "Created match id should be in the existing set")

	count, err := db.Predictions.Count(ctx)
	require.NoError(t, err, "Should count predictions")
	assert.GreaterOrEqual(t, count, 1, "Should have at least one prediction")

	// Guard clauses
	err = db.Predictions.Create(ctx, nil)
	assert.Error(t, err, "Should reject nil prediction")

	err = db.Predictions.Create(ctx, testPrediction(0, "2020-01-05"))
	assert.Error(t, err, "Should reject non-positive match id")
}

func TestPredictionRepository_SettleFlow(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000102
	voidID := 900000103
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", matchID, voidID)

	require.NoError(t, db.Predictions.Create(ctx, testPrediction(matchID, "2020-01-05")))
	require.NoError(t, db.Predictions.Create(ctx, testPrediction(voidID, "2020-01-05")))

	pending, err := db.Predictions.PendingThrough(ctx, "2020-01-06")
	require.NoError(t, err, "Should get pending predictions")
	assert.True(t, containsMatchID(pending, matchID), "Pending row should appear in the work list")

	err = db.Predictions.Settle(ctx, &models.Settlement{
		MatchID:         matchID,
		ActualWinner:    "Test Home FC",
		ActualOverUnder: "Over 2.5",
		HomeGoals:       2,
		AwayGoals:       1,
		TotalGoals:      3,
		OutcomeProfit:   0.90,
		WinnerProfit:    0.85,
	})
	require.NoError(t, err, "Should settle prediction")

	pending, err = db.Predictions.PendingThrough(ctx, "2020-01-06")
	require.NoError(t, err)
	assert.False(t, containsMatchID(pending, matchID), "Settled row should leave the work list")

	err = db.Predictions.MarkVoid(ctx, voidID, "POSTPONED")
	require.NoError(t, err, "Should void prediction")

	pending, err = db.Predictions.PendingThrough(ctx, "2020-01-06")
	require.NoError(t, err)
	assert.False(t, containsMatchID(pending, voidID), "Voided row should leave the work list")

	// TouchPending restores settlement eligibility
	err = db.Predictions.TouchPending(ctx, voidID)
	require.NoError(t, err, "Should touch pending prediction")

	pending, err = db.Predictions.PendingThrough(ctx, "2020-01-06")
	require.NoError(t, err)
	assert.True(t, containsMatchID(pending, voidID), "Touched row should re-enter the work list")

	// Unknown rows error
	err = db.Predictions.Settle(ctx, &models.Settlement{MatchID: 999999999})
	assert.Error(t, err, "Settling an unknown match id should fail")

	err = db.Predictions.MarkVoid(ctx, 999999999, "CANCELLED")
	assert.Error(t, err, "Voiding an unknown match id should fail")
}

func TestPredictionRepository_Advice(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000104
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", matchID)

	require.NoError(t, db.Predictions.Create(ctx, testPrediction(matchID, "2099-06-01")))

	preds, err := db.Predictions.NeedingAdvice(ctx, "2099-06-01", 50)
	require.NoError(t, err, "Should get predictions needing advice")
	assert.True(t, containsMatchID(preds, matchID), "Unadvised row should be selected")

	err = db.Predictions.UpdateAdvice(ctx, matchID, &models.Advice{
		Moneyline: "Home Win",
		OverUnder: "Over 2.5",
		Spreads:   "Test Home FC (-1.5)",
	})
	require.NoError(t, err, "Should update advice")

	preds, err = db.Predictions.NeedingAdvice(ctx, "2099-06-01", 50)
	require.NoError(t, err)
	assert.False(t, containsMatchID(preds, matchID), "Advised row should be skipped")

	err = db.Predictions.UpdateAdvice(ctx, 999999999, &models.Advice{Moneyline: "Draw"})
	assert.Error(t, err, "Updating advice for an unknown match id should fail")
}

func TestPredictionRepository_WinbetsBackfill(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000105
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", matchID)

	require.NoError(t, db.Predictions.Create(ctx, testPrediction(matchID, "2020-01-05")))

	needing, err := db.Predictions.NeedingWinbetsIDs(ctx)
	require.NoError(t, err, "Should get rows needing winbets ids")
	assert.True(t, containsMatchID(needing, matchID), "Fresh row should need winbets ids")

	// Partial fill leaves the row in the work list
	err = db.Predictions.UpdateWinbetsIDs(ctx, matchID, &models.WinbetsIDs{
		HomeTeamName: sql.NullString{String: "Test Home WB", Valid: true},
		HomeTeamID:   sql.NullInt64{Int64: 501, Valid: true},
	})
	require.NoError(t, err, "Should apply partial winbets ids")

	needing, err = db.Predictions.NeedingWinbetsIDs(ctx)
	require.NoError(t, err)
	assert.True(t, containsMatchID(needing, matchID), "Partially filled row should still need ids")

	err = db.Predictions.UpdateWinbetsIDs(ctx, matchID, &models.WinbetsIDs{
		HomeTeamName: sql.NullString{String: "Should Not Overwrite", Valid: true},
		AwayTeamName: sql.NullString{String: "Test Away WB", Valid: true},
		HomeTeamID:   sql.NullInt64{Int64: 999, Valid: true},
		AwayTeamID:   sql.NullInt64{Int64: 502, Valid: true},
		League:       sql.NullString{String: "Premier League WB", Valid: true},
	})
	require.NoError(t, err, "Should complete winbets ids")

	needing, err = db.Predictions.NeedingWinbetsIDs(ctx)
	require.NoError(t, err)
	assert.False(t, containsMatchID(needing, matchID), "Complete row should be skipped")

	// COALESCE keeps the first value
	var homeName string
	var homeID int64
	err = db.Pool.QueryRow(ctx,
		`SELECT home_team_name_wb, home_team_id_wb FROM agility_soccer_v1 WHERE match_id = $1`,
		matchID,
	).Scan(&homeName, &homeID)
	require.NoError(t, err)
	assert.Equal(t, "Test Home WB", homeName, "Backfill should never overwrite a set value")
	assert.Equal(t, int64(501), homeID, "Backfill should never overwrite a set value")
}

func TestPredictionRepository_FindMatchID(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	matchID := 900000106
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", matchID)

	pred := testPrediction(matchID, "2020-02-10")
	pred.HomeTeam = "Lookup Home FC"
	pred.AwayTeam = "Lookup Away FC"
	require.NoError(t, db.Predictions.Create(ctx, pred))

	// Exact date
	found, err := db.Predictions.FindMatchID(ctx, "Lookup Home FC", "Lookup Away FC", "2020-02-10")
	require.NoError(t, err)
	assert.Equal(t, matchID, found, "Should find the row on its exact date")

	// One day off, timezone shift
	found, err = db.Predictions.FindMatchID(ctx, "Lookup Home FC", "Lookup Away FC", "2020-02-11")
	require.NoError(t, err)
	assert.Equal(t, matchID, found, "Should find the row within one day")

	// No match
	found, err = db.Predictions.FindMatchID(ctx, "Lookup Home FC", "Lookup Away FC", "2020-02-14")
	require.NoError(t, err)
	assert.Equal(t, 0, found, "Should return 0 when nothing is close enough")

	cands, err := db.Predictions.CandidatesNear(ctx, "2020-02-11")
	require.NoError(t, err, "Should get candidate predictions")
	assert.True(t, containsMatchID(cands, matchID), "Row one day away should be a candidate")
}

func TestPredictionRepository_TeamNames(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	firstID := 900000107
	secondID := 900000108
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", firstID, secondID)

	first := testPrediction(firstID, "2020-01-05")
	first.LeagueName = "Test League Alpha"
	first.HomeTeam = "Alpha United"
	first.AwayTeam = "Alpha City"
	require.NoError(t, db.Predictions.Create(ctx, first))

	second := testPrediction(secondID, "2020-01-06")
	second.LeagueName = "Test League Alpha"
	second.HomeTeam = "Alpha City"
	second.AwayTeam = "Alpha Rovers"
	require.NoError(t, db.Predictions.Create(ctx, second))

	names, err := db.Predictions.TeamNames(ctx, "Test League Alpha")
	require.NoError(t, err, "Should get team names")
	assert.ElementsMatch(t, []string{"Alpha City", "Alpha Rovers", "Alpha United"}, names,
		"Should return distinct home and away names for the league")

	leagues, err := db.Predictions.LeagueNames(ctx)
	require.NoError(t, err, "Should get league names")
	assert.Contains(t, leagues, "Test League Alpha")
}
