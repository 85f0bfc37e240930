// Package leagues carries the league catalog: the fixed FootyStats
// league-ID map the pipeline publishes under, and the season scan that
// discovers current IDs from the provider.
package leagues

// leagueNames maps FootyStats season-specific league IDs to display names.
// Most competitions carry two IDs because the provider assigns a fresh ID
// per season.
var leagueNames = map[int]string{
	12325: "England Premier League",
	15050: "England Premier League",
	14924: "UEFA Champions League",

	12316: "Spain La Liga",
	14956: "Spain La Liga",
	12530: "Italy Serie A",
	15068: "Italy Serie A",
	12529: "Germany Bundesliga",
	14968: "Germany Bundesliga",
	13973: "USA MLS",
	16504: "USA MLS",
	12337: "France Ligue 1",
	14932: "France Ligue 1",
	12322: "Netherlands Eredivisie",
	14936: "Netherlands Eredivisie",

	12136: "Mexico Liga MX",
	15234: "Mexico Liga MX",
	15115: "Portugal Liga NOS",
}

// UnknownLeague is the display name for IDs outside the map.
const UnknownLeague = "Unknown League"

// Name resolves a league ID to its display name.
func Name(id int) string {
	if name, ok := leagueNames[id]; ok {
		return name
	}
	return UnknownLeague
}
