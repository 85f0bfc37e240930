package models

import (
	"database/sql"
	"time"
)

// TeamMapping links one football API team to its FootyStats-side name.
// canonical_name mirrors the API name; (canonical_name, league) is unique.
type TeamMapping struct {
	ID                int          `db:"id"`
	CanonicalName     string       `db:"canonical_name"`
	FootyStatsName    string       `db:"footy_stats_name"`
	FootballAPIName   string       `db:"football_api_name"`
	FootballAPITeamID int          `db:"football_api_team_id"`
	League            string       `db:"league"`
	CreatedAt         sql.NullTime `db:"created_at"`
}

// MatchMapping links one football API fixture to a FootyStats match row.
// mapped_via records whether the link came from team mappings ('auto') or
// from the fuzzy fallback ('fallback').
type MatchMapping struct {
	ID                 int       `db:"id"`
	FootballAPIMatchID int       `db:"football_api_match_id"`
	FootyStatsMatchID  int       `db:"footy_stats_match_id"`
	HomeTeam           string    `db:"home_team"`
	AwayTeam           string    `db:"away_team"`
	MatchDate          string    `db:"match_date"`
	League             string    `db:"league"`
	MappedVia          string    `db:"mapped_via"`
	CreatedAt          time.Time `db:"created_at"`
}

// Mapping provenance values.
const (
	MappedViaAuto     = "auto"
	MappedViaFallback = "fallback"
)

// WinbetsIDs holds the mirror-side identifiers resolved from the ID-map CSV
// for one prediction row. Invalid fields were absent from the map and leave
// the corresponding column untouched.
type WinbetsIDs struct {
	HomeTeamName sql.NullString
	AwayTeamName sql.NullString
	HomeTeamID   sql.NullInt64
	AwayTeamID   sql.NullInt64
	League       sql.NullString
}
