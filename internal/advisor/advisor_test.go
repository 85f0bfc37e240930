package advisor

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"soccer_v3/pipeline/internal/models"
)

func TestParseAdviceFormattedReply(t *testing.T) {
	reply := `Moneyline: Home Win
Over/Under 2.5: Over 2.5
Spreads: Arsenal (-1.5)

**Then explain:**
Arsenal's press should overwhelm a weakened midfield.`

	adv := ParseAdvice(reply, "Arsenal", "Chelsea")

	assert.Equal(t, "Home Win", adv.Moneyline)
	assert.Equal(t, "Over 2.5", adv.OverUnder)
	// the handicap is lifted out of its parentheses
	assert.Equal(t, "Arsenal -1.5", adv.Spreads)
}

func TestParseAdviceMoneyline(t *testing.T) {
	t.Run("team name with win", func(t *testing.T) {
		adv := ParseAdvice("Predicted winner: Chelsea should win this one.", "Arsenal", "Chelsea")
		assert.Equal(t, "Away Win", adv.Moneyline)
	})

	t.Run("draw on a result line", func(t *testing.T) {
		adv := ParseAdvice("The most likely result is a draw between these sides.", "Arsenal", "Chelsea")
		assert.Equal(t, "Draw", adv.Moneyline)
		// a draw pick derives no spread
		assert.Equal(t, "", adv.Spreads)
	})

	t.Run("last matching line wins", func(t *testing.T) {
		reply := "Winner: Chelsea to win\nFinal result: draw after a cagey second half"
		adv := ParseAdvice(reply, "Arsenal", "Chelsea")
		assert.Equal(t, "Draw", adv.Moneyline)
	})

	t.Run("whole text fallback", func(t *testing.T) {
		adv := ParseAdvice("I expect a comfortable home win for the hosts.", "Arsenal", "Chelsea")
		assert.Equal(t, "Home Win", adv.Moneyline)
		assert.Equal(t, "Arsenal (-1.5)", adv.Spreads)
	})
}

func TestParseAdviceOverUnder(t *testing.T) {
	t.Run("under on a total goals line", func(t *testing.T) {
		adv := ParseAdvice("Total goals should stay low, under 3 here.", "Arsenal", "Chelsea")
		assert.Equal(t, "Under 2.5", adv.OverUnder)
	})

	t.Run("label line with both substrings", func(t *testing.T) {
		adv := ParseAdvice("Over/Under 2.5: Under 2.5", "Arsenal", "Chelsea")
		assert.Equal(t, "Under 2.5", adv.OverUnder)
	})

	t.Run("o slash u shorthand", func(t *testing.T) {
		adv := ParseAdvice("O/U: over 2.5 looks right given both defences.", "Arsenal", "Chelsea")
		assert.Equal(t, "Over 2.5", adv.OverUnder)
	})

	t.Run("whole text fallback", func(t *testing.T) {
		adv := ParseAdvice("Expect goals, over 2.5 is the value side.", "Arsenal", "Chelsea")
		assert.Equal(t, "Over 2.5", adv.OverUnder)
	})
}

func TestParseAdviceEmptyReply(t *testing.T) {
	adv := ParseAdvice("", "Arsenal", "Chelsea")
	assert.Equal(t, models.Advice{}, adv)
}

func TestSpreadFrom(t *testing.T) {
	assert.Equal(t, "Arsenal -1.5", spreadFrom("Spread: Arsenal (-1.5) is the play", "Arsenal"))
	assert.Equal(t, "Chelsea +0.5", spreadFrom("Spread: Chelsea (+0.5)", "Chelsea"))
	// team named without parentheses yields the bare name
	assert.Equal(t, "Arsenal", spreadFrom("Spread pick: Arsenal -1.5", "Arsenal"))
	// team not on the line
	assert.Equal(t, "", spreadFrom("Spread: Chelsea (+0.5)", "Arsenal"))
}

func TestParseAdviceSpreadPrefersHomeTeam(t *testing.T) {
	reply := "Spread: Arsenal (-1.0) over Chelsea (+1.0)"
	adv := ParseAdvice(reply, "Arsenal", "Chelsea")
	assert.Equal(t, "Arsenal -1.0", adv.Spreads)
}

func TestMatchPrompt(t *testing.T) {
	row := &models.Prediction{
		MatchID:            7211001,
		Date:               "2025-03-09",
		LeagueName:         "England Premier League",
		HomeTeam:           "Arsenal",
		AwayTeam:           "Chelsea",
		PredictedHomeGoals: sql.NullFloat64{Float64: 1.8, Valid: true},
		PredictedAwayGoals: sql.NullFloat64{Float64: 0.9, Valid: true},
		PredictedWinner:    sql.NullString{String: "Home Win", Valid: true},
		PredictedOutcome:   sql.NullString{String: "Over 2.85", Valid: true},
		ConfidenceCategory: sql.NullString{String: "High", Valid: true},
	}

	prompt := matchPrompt(row)

	assert.Contains(t, prompt, "- League: England Premier League")
	assert.Contains(t, prompt, "- Date: 2025-03-09")
	assert.Contains(t, prompt, "- Predicted Outcome: Home Win")
	assert.Contains(t, prompt, "- Predicted Score: Arsenal 1.8 - 0.9 Chelsea")
	assert.Contains(t, prompt, "- Total Goals: 2.7")
	assert.Contains(t, prompt, "- Over/Under 2.5: Over 2.85")
	assert.Contains(t, prompt, "- Model Confidence: High")
	assert.Contains(t, prompt, "Moneyline: [Home Win OR Away Win OR Draw]")
	assert.Contains(t, prompt, "Spreads: [Exact team name] (-X.X or +X.X)")
}
