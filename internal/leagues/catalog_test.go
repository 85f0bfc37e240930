package leagues

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soccer_v3/pipeline/internal/client"
)

func TestMatchLabel(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    string
	}{
		{"England Premier League", "England", "England Premier League"},
		{"Premier League", "England", "England Premier League"},
		{"Russia Premier League", "Russia", ""},
		{"Spain La Liga", "Spain", "Spain La Liga"},
		{"Italy Serie A", "Italy", "Italy Serie A"},
		{"Brazil Serie A", "Brazil", ""},
		{"Germany Bundesliga", "Germany", "Germany Bundesliga"},
		// Austrian Bundesliga shares the bare name but fails the country check
		{"Bundesliga", "Austria", ""},
		{"USA Major League Soccer", "USA", "USA MLS"},
		{"France Ligue 1", "France", "France Ligue 1"},
		{"Netherlands Eredivisie", "Netherlands", "Netherlands Eredivisie"},
		{"Mexico Liga MX", "Mexico", "Mexico Liga MX"},
		// Continental competition carries no country requirement
		{"UEFA Champions League", "", "UEFA Champions League"},
		{"AFC Champions League", "", "UEFA Champions League"},
		// Both Portuguese top-flight names map to the same label
		{"Portugal Liga NOS", "Portugal", "Portugal Liga NOS"},
		{"Portugal Primeira Liga", "Portugal", "Portugal Liga NOS"},
		// Country satisfied by the name when the country field is empty
		{"England Premier League", "", "England Premier League"},

		// Exclusion words beat any keyword match
		{"England Premier League Women", "England", ""},
		{"Germany Bundesliga U21", "Germany", ""},
		{"Italy Serie A U23", "Italy", ""},
		{"England FA Cup", "England", ""},
		{"Ireland Premier Division Two", "Ireland", ""},
		{"NIFL Premier League Northern", "Northern Ireland", ""},

		{"Japan J1 League", "Japan", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchLabel(tt.name, tt.country), "%s (%s)", tt.name, tt.country)
	}
}

func TestFilter(t *testing.T) {
	entries := []client.LeagueEntry{
		{
			Name:    "England Premier League",
			Country: "England",
			Seasons: []client.LeagueSeason{
				{ID: 12325, Year: json.Number("20242025")},
				{ID: 15050, Year: json.Number("20252026")},
				{ID: 1625, Year: json.Number("20162017")},
			},
		},
		{
			Name:    "Japan J1 League",
			Country: "Japan",
			Seasons: []client.LeagueSeason{{ID: 99, Year: json.Number("2025")}},
		},
		// Alternate payload keys: league_name plus a season list
		{
			LeagueName: "USA Major League Soccer",
			Country:    "USA",
			Season:     []client.LeagueSeason{{ID: 16504, SeasonYear: json.Number("2026")}},
		},
	}

	catalog := Filter(entries)

	require.Len(t, catalog.AllTargetLeagues, 4, "every season of a tracked league is kept")
	require.Len(t, catalog.NewestIDs, 3, "only target seasons make the newest list")

	assert.Equal(t, Entry{
		Label:   "England Premier League",
		APIName: "England Premier League",
		ID:      12325,
		Season:  "20242025",
		Country: "England",
	}, catalog.AllTargetLeagues[0])

	// Provider order is preserved, the stale 20162017 season is filtered out
	assert.Equal(t, 12325, catalog.NewestIDs[0].ID)
	assert.Equal(t, 15050, catalog.NewestIDs[1].ID)
	assert.Equal(t, 16504, catalog.NewestIDs[2].ID)
	assert.Equal(t, "USA MLS", catalog.NewestIDs[2].Label)
}

func TestFilterNoSeasons(t *testing.T) {
	catalog := Filter([]client.LeagueEntry{{Name: "Spain La Liga", Country: "Spain"}})
	assert.Empty(t, catalog.AllTargetLeagues)
	assert.Empty(t, catalog.NewestIDs)
}

func TestCatalogJSONKeys(t *testing.T) {
	catalog := &Catalog{
		AllTargetLeagues: []Entry{{Label: "Spain La Liga", APIName: "Spain La Liga", ID: 14956, Season: "20252026", Country: "Spain"}},
		NewestIDs:        []Entry{{Label: "Spain La Liga", APIName: "Spain La Liga", ID: 14956, Season: "20252026", Country: "Spain"}},
	}

	raw, err := json.Marshal(catalog)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"all_target_leagues": [{"label": "Spain La Liga", "api_name": "Spain La Liga", "id": 14956, "season": "20252026", "country": "Spain"}],
		"newest_ids": [{"label": "Spain La Liga", "api_name": "Spain La Liga", "id": 14956, "season": "20252026", "country": "Spain"}]
	}`, string(raw))
}

func TestQuickReference(t *testing.T) {
	catalog := &Catalog{
		NewestIDs: []Entry{
			{Label: "Spain La Liga", ID: 12316, Season: "20242025"},
			{Label: "England Premier League", ID: 15050, Season: "20252026"},
			{Label: "Spain La Liga", ID: 14956, Season: "20252026"},
			{Label: "England Premier League", ID: 12325, Season: "20242025"},
			{Label: "USA MLS", ID: 16504, Season: "2026"},
			{Label: "USA MLS", ID: 13973, Season: "2025"},
		},
	}

	ref := catalog.QuickReference()

	require.Len(t, ref, 6)
	assert.Equal(t, 15050, ref[0].ID, "newest England season first")
	assert.Equal(t, 12325, ref[1].ID)
	assert.Equal(t, 14956, ref[2].ID)
	assert.Equal(t, 12316, ref[3].ID)
	assert.Equal(t, 16504, ref[4].ID, "calendar-year seasons order as strings")
	assert.Equal(t, 13973, ref[5].ID)

	// The source slice is untouched
	assert.Equal(t, 12316, catalog.NewestIDs[0].ID)
}
