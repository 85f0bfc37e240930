package leagues

import (
	"sort"
	"strings"

	"soccer_v3/pipeline/internal/client"
)

// keywordTarget pairs a lowercase name fragment with the label it resolves
// to. Ambiguous fragments carry an expected country that must appear in the
// entry's country or name. Order matters: the first matching fragment wins.
type keywordTarget struct {
	keyword string
	country string
	label   string
}

var keywordTargets = []keywordTarget{
	{"premier league", "England", "England Premier League"},
	{"la liga", "Spain", "Spain La Liga"},
	{"serie a", "Italy", "Italy Serie A"},
	{"bundesliga", "Germany", "Germany Bundesliga"},
	{"major league soccer", "USA", "USA MLS"},
	{"mls", "USA", "USA MLS"},
	{"ligue 1", "France", "France Ligue 1"},
	{"eredivisie", "Netherlands", "Netherlands Eredivisie"},
	{"liga mx", "Mexico", "Mexico Liga MX"},
	{"champions league", "", "UEFA Champions League"},
	{"liga nos", "Portugal", "Portugal Liga NOS"},
	{"primeira liga", "Portugal", "Portugal Liga NOS"},
}

// excludeWords disqualify an entry outright, screening out women's, youth,
// summer and cup competitions that share a top-flight name.
var excludeWords = []string{"women", "u18", "u21", "u23", "summer", "cup", "division two", "northern"}

// targetSeasons are the season years worth publishing: the current cycle
// and the next, in both calendar (2026) and cross-year (20252026) forms.
var targetSeasons = map[string]bool{
	"2025":     true,
	"2026":     true,
	"2027":     true,
	"20242025": true,
	"20252026": true,
	"20262027": true,
}

// Entry is one league+season row of the scan output.
type Entry struct {
	Label   string `json:"label"`
	APIName string `json:"api_name"`
	ID      int    `json:"id"`
	Season  string `json:"season"`
	Country string `json:"country"`
}

// Catalog is the scan result: every season of every tracked league, and
// the subset whose season falls in the target window. Both slices keep
// provider order.
type Catalog struct {
	AllTargetLeagues []Entry `json:"all_target_leagues"`
	NewestIDs        []Entry `json:"newest_ids"`
}

// Filter reduces the provider's full league list to the tracked
// competitions, flattened to one entry per league+season.
func Filter(entries []client.LeagueEntry) *Catalog {
	catalog := &Catalog{}

	for i := range entries {
		league := &entries[i]
		name := league.DisplayName()
		label := matchLabel(name, league.Country)
		if label == "" {
			continue
		}

		for _, season := range league.SeasonList() {
			entry := Entry{
				Label:   label,
				APIName: name,
				ID:      season.ID,
				Season:  season.YearString(),
				Country: league.Country,
			}
			catalog.AllTargetLeagues = append(catalog.AllTargetLeagues, entry)
			if targetSeasons[entry.Season] {
				catalog.NewestIDs = append(catalog.NewestIDs, entry)
			}
		}
	}

	return catalog
}

// matchLabel resolves a provider league name to a tracked label, or ""
// when the entry is not one of ours.
func matchLabel(name, country string) string {
	nameLower := strings.TrimSpace(strings.ToLower(name))
	countryLower := strings.TrimSpace(strings.ToLower(country))

	for _, word := range excludeWords {
		if strings.Contains(nameLower, word) {
			return ""
		}
	}

	for _, target := range keywordTargets {
		if !strings.Contains(nameLower, target.keyword) {
			continue
		}
		expected := strings.ToLower(target.country)
		if expected != "" && !strings.Contains(countryLower, expected) && !strings.Contains(nameLower, expected) {
			continue
		}
		return target.label
	}

	return ""
}

// QuickReference orders the newest-season entries for display: label
// ascending, season descending. Seasons compare as strings since the two
// year forms don't order numerically.
func (c *Catalog) QuickReference() []Entry {
	out := make([]Entry, len(c.NewestIDs))
	copy(out, c.NewestIDs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Season > out[j].Season
	})
	return out
}
