package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/models"
)

func TestStatsRepository_DailyStats(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	const date = "2019-07-21"
	highID, mediumID, lowID, pendingID := 900000501, 900000502, 900000503, 900000504
	defer deleteMatches(t, db, ctx, "agility_soccer_v1", highID, mediumID, lowID, pendingID)

	// High: both markets hit
	high := testPrediction(highID, date)
	high.HomeTeam = "Stats Home A"
	high.AwayTeam = "Stats Away A"
	require.NoError(t, db.Predictions.Create(ctx, high))
	require.NoError(t, db.Predictions.Settle(ctx, &models.Settlement{
		MatchID:         highID,
		ActualWinner:    "Stats Home A",
		ActualOverUnder: "Over 2.5",
		HomeGoals:       2,
		AwayGoals:       1,
		TotalGoals:      3,
		OutcomeProfit:   0.90,
		WinnerProfit:    0.85,
	}))

	// Medium: both markets miss
	medium := testPrediction(mediumID, date)
	medium.HomeTeam = "Stats Home B"
	medium.AwayTeam = "Stats Away B"
	medium.PredictedOutcome = sql.NullString{String: "Under 2.5", Valid: true}
	medium.PredictedWinner = sql.NullString{String: "Away Win", Valid: true}
	medium.ConfidenceCategory = sql.NullString{String: "Medium", Valid: true}
	require.NoError(t, db.Predictions.Create(ctx, medium))
	require.NoError(t, db.Predictions.Settle(ctx, &models.Settlement{
		MatchID:         mediumID,
		ActualWinner:    "Stats Home B",
		ActualOverUnder: "Over 2.5",
		HomeGoals:       3,
		AwayGoals:       0,
		TotalGoals:      3,
		OutcomeProfit:   -1.0,
		WinnerProfit:    -1.0,
	}))

	// Low: draw called correctly, totals miss
	low := testPrediction(lowID, date)
	low.HomeTeam = "Stats Home C"
	low.AwayTeam = "Stats Away C"
	low.PredictedWinner = sql.NullString{String: "Draw", Valid: true}
	low.ConfidenceCategory = sql.NullString{String: "Low", Valid: true}
	require.NoError(t, db.Predictions.Create(ctx, low))
	require.NoError(t, db.Predictions.Settle(ctx, &models.Settlement{
		MatchID:         lowID,
		ActualWinner:    "Draw",
		ActualOverUnder: "Under 2.5",
		HomeGoals:       1,
		AwayGoals:       1,
		TotalGoals:      2,
		OutcomeProfit:   0,
		WinnerProfit:    1.95,
	}))

	// Still pending, must not count
	pending := testPrediction(pendingID, date)
	pending.HomeTeam = "Stats Home D"
	pending.AwayTeam = "Stats Away D"
	require.NoError(t, db.Predictions.Create(ctx, pending))

	stats, err := db.Stats.DailyStats(ctx, date)
	require.NoError(t, err, "Should compute daily stats")

	assert.Equal(t, 3, stats.SettledCount, "Only settled rows should count")
	assert.InDelta(t, -0.10, stats.OutcomeProfitSum, 1e-6)
	assert.InDelta(t, 1.80, stats.WinnerProfitSum, 1e-6)
	assert.InDelta(t, -0.10/3, stats.OutcomeProfitAvg, 1e-6)
	assert.InDelta(t, 0.60, stats.WinnerProfitAvg, 1e-6)

	assert.Equal(t, 1, stats.CorrectOverUnder, "One totals label should match the actual")
	assert.Equal(t, 2, stats.CorrectWinner, "Home Win and Draw calls should both count")

	assert.InDelta(t, 100.0/3, stats.OverUnderAccuracy(), 1e-6)
	assert.InDelta(t, 200.0/3, stats.WinnerAccuracy(), 1e-6)

	// Per-category breakdown in High, Medium, Low order
	require.Len(t, stats.Categories, 3, "Should have one slice per category")
	assert.Equal(t, "High", stats.Categories[0].Category)
	assert.Equal(t, "Medium", stats.Categories[1].Category)
	assert.Equal(t, "Low", stats.Categories[2].Category)

	highCat := stats.Categories[0]
	assert.Equal(t, 1, highCat.SettledCount)
	assert.Equal(t, 1, highCat.CorrectOverUnder)
	assert.Equal(t, 1, highCat.CorrectWinner)
	assert.InDelta(t, 0.90, highCat.OutcomeProfitSum, 1e-6)
	assert.InDelta(t, 0.85, highCat.WinnerProfitSum, 1e-6)

	mediumCat := stats.Categories[1]
	assert.Equal(t, 1, mediumCat.SettledCount)
	assert.Equal(t, 0, mediumCat.CorrectOverUnder)
	assert.Equal(t, 0, mediumCat.CorrectWinner)
	assert.InDelta(t, -1.0, mediumCat.OutcomeProfitSum, 1e-6)

	lowCat := stats.Categories[2]
	assert.Equal(t, 1, lowCat.CorrectWinner, "Draw call should count as a winner hit")
	assert.Equal(t, 0, lowCat.CorrectOverUnder)
}

func TestStatsRepository_EmptyDay(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	stats, err := db.Stats.DailyStats(ctx, "2019-07-22")
	require.NoError(t, err, "A day with no settled rows should not error")

	assert.Equal(t, 0, stats.SettledCount)
	assert.Equal(t, 0.0, stats.OutcomeProfitSum)
	assert.Equal(t, 0.0, stats.WinnerProfitSum)
	assert.Empty(t, stats.Categories)
	assert.Equal(t, 0.0, stats.OverUnderAccuracy())
	assert.Equal(t, 0.0, stats.WinnerAccuracy())
}
