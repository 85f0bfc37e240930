package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/models"
)

func TestMatchTeams(t *testing.T) {
	t.Run("exact names pair up", func(t *testing.T) {
		fs := []string{"Arsenal", "Chelsea"}
		api := []client.Team{{ID: 42, Name: "Arsenal"}, {ID: 49, Name: "Chelsea"}}

		matched, missed := matchTeams(fs, api, teamThreshold)

		require.Len(t, matched, 2)
		assert.Empty(t, missed)
		assert.Equal(t, "Arsenal", matched[0].FootyStatsName)
		assert.Equal(t, "Arsenal", matched[0].APIName)
		assert.Equal(t, 42, matched[0].APITeamID)
		assert.Equal(t, 49, matched[1].APITeamID)
	})

	t.Run("each api team claimed once", func(t *testing.T) {
		fs := []string{"Arsenal", "Arsenal"}
		api := []client.Team{{ID: 42, Name: "Arsenal"}}

		matched, missed := matchTeams(fs, api, teamThreshold)

		require.Len(t, matched, 1)
		require.Len(t, missed, 1)
		// nothing left to claim for the second name
		assert.Equal(t, "Arsenal", missed[0].FootyStatsName)
		assert.Equal(t, "", missed[0].BestGuess)
		assert.Equal(t, 0, missed[0].Score)
	})

	t.Run("weak best candidate is reported not matched", func(t *testing.T) {
		fs := []string{"Blackburn Rovers"}
		api := []client.Team{{ID: 7, Name: "Real Madrid"}}

		matched, missed := matchTeams(fs, api, teamThreshold)

		assert.Empty(t, matched)
		require.Len(t, missed, 1)
		assert.Equal(t, "Real Madrid", missed[0].BestGuess)
		assert.Less(t, missed[0].Score, teamThreshold)
	})
}

func TestBestCandidate(t *testing.T) {
	candidates := []*models.Prediction{
		{MatchID: 901, HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		{MatchID: 902, HomeTeam: "Arsenal", AwayTeam: "Everton"},
	}

	t.Run("prefers the fixture with both sides matching", func(t *testing.T) {
		id := bestCandidate("Arsenal", "Chelsea", candidates, fallbackThreshold)
		assert.Equal(t, 901, id)
	})

	t.Run("rejects everything below the threshold", func(t *testing.T) {
		far := []*models.Prediction{
			{MatchID: 903, HomeTeam: "Real Madrid", AwayTeam: "Barcelona"},
		}
		id := bestCandidate("Arsenal", "Chelsea", far, fallbackThreshold)
		assert.Equal(t, 0, id)
	})

	t.Run("no candidates", func(t *testing.T) {
		id := bestCandidate("Arsenal", "Chelsea", nil, fallbackThreshold)
		assert.Equal(t, 0, id)
	})
}

func TestFixtureDate(t *testing.T) {
	assert.Equal(t, "2025-03-09", fixtureDate("2025-03-09T19:00:00+00:00"))
	assert.Equal(t, "2025-03-09", fixtureDate("2025-03-09"))
	assert.Equal(t, "", fixtureDate(""))
}

func TestDefaultDates(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, []string{"2025-03-10", "2025-03-11"}, DefaultDates(now))

	// local time ahead of UTC still keys off the UTC date
	now = time.Date(2025, 3, 10, 1, 0, 0, 0, time.FixedZone("AEST", 10*3600))
	assert.Equal(t, []string{"2025-03-09", "2025-03-10"}, DefaultDates(now))
}
