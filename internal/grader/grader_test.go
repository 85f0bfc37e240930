package grader

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/models"
)

func nf(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func ns(v string) sql.NullString {
	return sql.NullString{String: v, Valid: true}
}

func TestMoneylineUpdate(t *testing.T) {
	t.Run("favorite pick", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:            1,
			PredictedHomeGoals: nf(2.4),
			PredictedAwayGoals: nf(1.2),
			PredictedWinner:    ns("Home Win"),
			HomeOdds:           nf(1.5),
			AwayOdds:           nf(6.0),
			DrawOdds:           nf(4.0),
		}

		u := moneylineUpdate(row)

		// diff 1.2 at odds 1.5 scores 0.8, past the last cutoff
		assert.Equal(t, "D", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.InDelta(t, 80.0, u.Confidence.Float64, 1e-9)
	})

	t.Run("tight call on the favorite", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:            2,
			PredictedHomeGoals: nf(1.55),
			PredictedAwayGoals: nf(1.50),
			PredictedWinner:    ns("Home Win"),
			HomeOdds:           nf(1.8),
			AwayOdds:           nf(4.0),
			DrawOdds:           nf(3.5),
		}

		u := moneylineUpdate(row)

		assert.Equal(t, "A", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.InDelta(t, 100*0.05/1.8, u.Confidence.Float64, 1e-9)
	})

	t.Run("longshot pick caps at 100", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:            3,
			PredictedHomeGoals: nf(1.0),
			PredictedAwayGoals: nf(2.0),
			PredictedWinner:    ns("Away Win"),
			HomeOdds:           nf(1.5),
			AwayOdds:           nf(2.5),
			DrawOdds:           nf(3.0),
		}

		u := moneylineUpdate(row)

		// diff 1.0 against the favorite scores 2.5/1.5, well past D
		assert.Equal(t, "D", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.Equal(t, 100.0, u.Confidence.Float64)
	})

	t.Run("missing odds leaves confidence NULL", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:            4,
			PredictedHomeGoals: nf(2.4),
			PredictedAwayGoals: nf(1.2),
			PredictedWinner:    ns("Home Win"),
			HomeOdds:           nf(1.5),
			AwayOdds:           nf(6.0),
		}

		u := moneylineUpdate(row)

		assert.Equal(t, "D", u.Grade)
		assert.False(t, u.Confidence.Valid)
	})

	t.Run("unknown winner label leaves confidence NULL", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:            5,
			PredictedHomeGoals: nf(2.4),
			PredictedAwayGoals: nf(1.2),
			PredictedWinner:    ns("Home win by forfeit"),
			HomeOdds:           nf(1.5),
			AwayOdds:           nf(6.0),
			DrawOdds:           nf(4.0),
		}

		u := moneylineUpdate(row)

		assert.Equal(t, "D", u.Grade)
		assert.False(t, u.Confidence.Valid)
	})
}

func TestTotalsUpdate(t *testing.T) {
	t.Run("with the market", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:             10,
			PredictedTotalGoals: nf(3.1),
			PredictedOutcome:    ns("Over 2.5"),
			OverOdds:            nf(1.8),
			UnderOdds:           nf(2.0),
		}

		u := totalsUpdate(row, 2.5)

		// distance 0.6 at odds 1.8 scores 1/3
		assert.Equal(t, "C", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.InDelta(t, 100.0/3.0, u.Confidence.Float64, 1e-9)
	})

	t.Run("against the market", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:             11,
			PredictedTotalGoals: nf(3.4),
			PredictedOutcome:    ns("Over 2.5"),
			OverOdds:            nf(2.1),
			UnderOdds:           nf(1.7),
		}

		u := totalsUpdate(row, 2.5)

		// damping by min/max and the odds ratio max/min cancel, leaving
		// the raw distance 0.9
		assert.Equal(t, "A", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.InDelta(t, 90.0, u.Confidence.Float64, 1e-9)
	})

	t.Run("level odds favor the under", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:             12,
			PredictedTotalGoals: nf(2.2),
			PredictedOutcome:    ns("Under 2.5"),
			OverOdds:            nf(1.9),
			UnderOdds:           nf(1.9),
		}

		u := totalsUpdate(row, 2.5)

		// distance 0.3 at odds 1.9 scores ~0.158, below the C cutoff,
		// and is undamped because the tie counts as an under market
		assert.Equal(t, "D", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.InDelta(t, 100*0.3/1.9, u.Confidence.Float64, 1e-9)
	})

	t.Run("missing odds grades D with zero confidence", func(t *testing.T) {
		row := &models.ModelPrediction{
			MatchID:             13,
			PredictedTotalGoals: nf(3.1),
			PredictedOutcome:    ns("Over 2.5"),
			OverOdds:            nf(1.8),
		}

		u := totalsUpdate(row, 2.5)

		assert.Equal(t, "D", u.Grade)
		require.True(t, u.Confidence.Valid)
		assert.Equal(t, 0.0, u.Confidence.Float64)
	})
}
