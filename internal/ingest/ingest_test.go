package ingest

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/models"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTable(t *testing.T) {
	t.Run("reads header and records", func(t *testing.T) {
		path := writeTempCSV(t, "match_id,home_team_name\n101,Arsenal\n102,Chelsea\n")

		tab, err := readTable(path)
		require.NoError(t, err)
		require.Len(t, tab.records, 2)
		assert.Equal(t, "Arsenal", tab.cell(tab.records[0], "home_team_name"))
		assert.Equal(t, "Chelsea", tab.cell(tab.records[1], "home_team_name"))
	})

	t.Run("strips the BOM from the first header", func(t *testing.T) {
		path := writeTempCSV(t, "\uFEFFTeamName_Agility,League_Agility\nArsenal,England Premier League\n")

		tab, err := readTable(path)
		require.NoError(t, err)
		require.NoError(t, tab.require("TeamName_Agility", "League_Agility"))
	})

	t.Run("rejects duplicate columns", func(t *testing.T) {
		path := writeTempCSV(t, "match_id,match_id\n1,2\n")

		_, err := readTable(path)
		assert.Error(t, err)
	})

	t.Run("missing columns are listed", func(t *testing.T) {
		path := writeTempCSV(t, "match_id\n1\n")

		tab, err := readTable(path)
		require.NoError(t, err)

		err = tab.require("match_id", "date", "league_id")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "date")
		assert.Contains(t, err.Error(), "league_id")
	})
}

func TestCellParsing(t *testing.T) {
	tab := &table{
		header: map[string]int{"match_id": 0, "odds": 1, "team_id": 2, "name": 3},
		records: [][]string{
			{"7211001", "1.85", "28.0", " Arsenal "},
			{"", "NaN", "abc", ""},
		},
	}

	good := tab.records[0]
	bad := tab.records[1]

	id, err := tab.matchID(good)
	require.NoError(t, err)
	assert.Equal(t, 7211001, id)

	require.NotNil(t, tab.floatCell(good, "odds"))
	assert.Equal(t, 1.85, *tab.floatCell(good, "odds"))

	// Integer exports come float-formatted when the column carried NULLs
	require.NotNil(t, tab.intCell(good, "team_id"))
	assert.Equal(t, 28, *tab.intCell(good, "team_id"))

	assert.Equal(t, "Arsenal", tab.cell(good, "name"), "cells are trimmed")

	_, err = tab.matchID(bad)
	assert.Error(t, err, "missing match_id is an error")
	assert.Nil(t, tab.floatCell(bad, "odds"), "NaN reads as missing")
	assert.Nil(t, tab.intCell(bad, "team_id"), "unparseable reads as missing")
	assert.Nil(t, tab.floatCell(bad, "missing_column"))
}

func TestPredictionRow(t *testing.T) {
	tab := &table{
		header: map[string]int{
			"match_id": 0, "date": 1, "league_id": 2,
			"home_team_id": 3, "away_team_id": 4,
			"home_team_name": 5, "away_team_name": 6,
			"odds_ft_1": 7, "odds_ft_x": 8, "odds_ft_2": 9,
			"odds_ft_over25": 10, "odds_ft_under25": 11,
			"CTMCL": 12, "predicted_home_goals": 13, "predicted_away_goals": 14,
			"confidence": 15, "predicted_goal_diff": 16,
			"ctmcl_prediction": 17, "outcome_label": 18,
			"status": 19, "confidence_category": 20,
		},
		records: [][]string{{
			"7211001", "2024-09-14", "12325",
			"251", "145",
			"Arsenal", "Everton",
			"1.55", "4.1", "6.2",
			"1.95", "1.87",
			"2.85", "1.82", "0.92",
			"0.72", "0.9",
			"Under 2.85", "Home Win",
			"PENDING", "High",
		}},
	}

	pred, err := predictionRow(tab, tab.records[0])
	require.NoError(t, err)

	assert.Equal(t, 7211001, pred.MatchID)
	assert.Equal(t, "12325", pred.League)
	assert.Equal(t, "England Premier League", pred.LeagueName)
	assert.Equal(t, int64(251), pred.HomeID.Int64)
	assert.Equal(t, 1.55, pred.HomeOdds.Float64)
	assert.Equal(t, "B", pred.Grade.String, "confidence 0.72 grades B")
	assert.Equal(t, "Under 2.85", pred.PredictedOutcome.String)
	assert.Equal(t, "Home Win", pred.PredictedWinner.String)
	assert.Equal(t, models.StatusPending, pred.Status)
	assert.Equal(t, models.DataSourceFootyStats, pred.DataSource)
}

func TestPredictionRowUnknownLeague(t *testing.T) {
	tab := &table{
		header: map[string]int{
			"match_id": 0, "date": 1, "league_id": 2,
			"home_team_name": 3, "away_team_name": 4,
		},
		records: [][]string{{"7211002", "2024-09-14", "99999", "A", "B"}},
	}

	pred, err := predictionRow(tab, tab.records[0])
	require.NoError(t, err)
	assert.Equal(t, "Unknown League", pred.LeagueName)
	assert.False(t, pred.HomeOdds.Valid, "missing odds stay NULL")
	assert.False(t, pred.Grade.Valid, "missing confidence means no grade")
}

func TestWinbetsLookup(t *testing.T) {
	tab := &table{
		header: map[string]int{
			"TeamName_Agility": 0, "League_Agility": 1, "TeamId_Agility": 2,
			"TeamId_Wb": 3, "TeamName_Wb": 4, "League_Wb": 5,
		},
		records: [][]string{
			{"Arsenal", "England Premier League", "251", "9001", "Arsenal FC", "EPL"},
			{"Everton", "England Premier League", "145", "9002", "Everton FC", "Premiership"},
		},
	}

	lookup := buildWBLookup(tab)

	assert.Equal(t, "Arsenal FC", lookup.names[teamKey{"Arsenal", "England Premier League"}])
	assert.Equal(t, 9002, lookup.ids[teamIDKey{145, "England Premier League"}])
	// First row wins the league mapping
	assert.Equal(t, "EPL", lookup.leagues["England Premier League"])

	row := &models.Prediction{
		MatchID:    7211001,
		LeagueName: "England Premier League",
		HomeTeam:   "Arsenal",
		AwayTeam:   "Leeds United",
		HomeID:     sql.NullInt64{Int64: 251, Valid: true},
		AwayID:     sql.NullInt64{Int64: 999, Valid: true},
	}

	ids := resolveWinbetsIDs(row, lookup)
	assert.Equal(t, "Arsenal FC", ids.HomeTeamName.String)
	assert.False(t, ids.AwayTeamName.Valid, "unmapped team stays NULL")
	assert.Equal(t, int64(9001), ids.HomeTeamID.Int64)
	assert.False(t, ids.AwayTeamID.Valid)
	assert.Equal(t, "EPL", ids.League.String)
}
