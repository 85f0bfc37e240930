package ingest

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
)

// wbMapColumns are the ID-map CSV columns linking this pipeline's team and
// league identifiers to the mirror side's.
var wbMapColumns = []string{
	"TeamName_Agility", "League_Agility", "TeamId_Agility",
	"TeamId_Wb", "TeamName_Wb", "League_Wb",
}

type teamKey struct {
	name   string
	league string
}

type teamIDKey struct {
	id     int
	league string
}

// wbLookup indexes the ID-map CSV three ways: team name and league to
// mirror name, team ID and league to mirror ID, league to mirror league
// (first occurrence wins).
type wbLookup struct {
	names   map[teamKey]string
	ids     map[teamIDKey]int
	leagues map[string]string
}

// WinbetsMap backfills the mirror-side identifier columns on
// agility_soccer_v1 from the ID-map CSV, on every given database. Only NULL
// columns are filled; rows with nothing to fill are left alone.
func WinbetsMap(ctx context.Context, dbs []*repository.Database, path string) (map[string]*Summary, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(wbMapColumns...); err != nil {
		return nil, err
	}

	lookup := buildWBLookup(t)
	log.Info().
		Int("teams", len(lookup.names)).
		Int("leagues", len(lookup.leagues)).
		Msg("Loaded winbets ID map")

	summaries := make(map[string]*Summary, len(dbs))
	for _, db := range dbs {
		sum, err := backfillWinbetsIDs(ctx, db, lookup)
		if err != nil {
			return summaries, err
		}
		summaries[db.Name] = sum

		log.Info().
			Str("database", db.Name).
			Int("total", sum.Total).
			Int("updated", sum.Inserted).
			Int("unmatched", sum.Skipped).
			Int("failed", sum.Failed).
			Msg("Winbets ID backfill complete")
	}

	return summaries, nil
}

func buildWBLookup(t *table) *wbLookup {
	lookup := &wbLookup{
		names:   make(map[teamKey]string),
		ids:     make(map[teamIDKey]int),
		leagues: make(map[string]string),
	}

	for _, record := range t.records {
		name := t.cell(record, "TeamName_Agility")
		league := t.cell(record, "League_Agility")
		wbName := t.cell(record, "TeamName_Wb")
		wbLeague := t.cell(record, "League_Wb")

		if name != "" && wbName != "" {
			lookup.names[teamKey{name: name, league: league}] = wbName
		}
		if id := t.intCell(record, "TeamId_Agility"); id != nil {
			if wbID := t.intCell(record, "TeamId_Wb"); wbID != nil {
				lookup.ids[teamIDKey{id: *id, league: league}] = *wbID
			}
		}
		if _, ok := lookup.leagues[league]; !ok && league != "" && wbLeague != "" {
			lookup.leagues[league] = wbLeague
		}
	}

	return lookup
}

func backfillWinbetsIDs(ctx context.Context, db *repository.Database, lookup *wbLookup) (*Summary, error) {
	rows, err := db.Predictions.NeedingWinbetsIDs(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Total: len(rows)}
	for _, row := range rows {
		ids := resolveWinbetsIDs(row, lookup)
		if !ids.HomeTeamName.Valid && !ids.AwayTeamName.Valid &&
			!ids.HomeTeamID.Valid && !ids.AwayTeamID.Valid && !ids.League.Valid {
			sum.Skipped++
			continue
		}

		if err := db.Predictions.UpdateWinbetsIDs(ctx, row.MatchID, ids); err != nil {
			sum.Failed++
			log.Warn().Err(err).
				Str("database", db.Name).
				Int("match_id", row.MatchID).
				Msg("Failed to backfill winbets ids")
			continue
		}
		sum.Inserted++
	}

	return sum, nil
}

func resolveWinbetsIDs(row *models.Prediction, lookup *wbLookup) *models.WinbetsIDs {
	league := strings.TrimSpace(row.LeagueName)
	ids := &models.WinbetsIDs{}

	if home := strings.TrimSpace(row.HomeTeam); home != "" {
		if wb, ok := lookup.names[teamKey{name: home, league: league}]; ok {
			ids.HomeTeamName = sql.NullString{String: wb, Valid: true}
		}
	}
	if away := strings.TrimSpace(row.AwayTeam); away != "" {
		if wb, ok := lookup.names[teamKey{name: away, league: league}]; ok {
			ids.AwayTeamName = sql.NullString{String: wb, Valid: true}
		}
	}
	if row.HomeID.Valid {
		if wb, ok := lookup.ids[teamIDKey{id: int(row.HomeID.Int64), league: league}]; ok {
			ids.HomeTeamID = sql.NullInt64{Int64: int64(wb), Valid: true}
		}
	}
	if row.AwayID.Valid {
		if wb, ok := lookup.ids[teamIDKey{id: int(row.AwayID.Int64), league: league}]; ok {
			ids.AwayTeamID = sql.NullInt64{Int64: int64(wb), Valid: true}
		}
	}
	if wb, ok := lookup.leagues[league]; ok {
		ids.League = sql.NullString{String: wb, Valid: true}
	}

	return ids
}
