package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/models"
)

// MappingRepository handles the team_mapping and match_mapping tables
type MappingRepository struct {
	db *Database
}

// CreateTeamMapping inserts a team link. Conflicts on an existing
// (canonical_name, league) pair are ignored; returns whether a row landed.
func (r *MappingRepository) CreateTeamMapping(ctx context.Context, tm *models.TeamMapping) (bool, error) {
	query := `
		INSERT INTO team_mapping
			(canonical_name, footy_stats_name, football_api_name,
			 football_api_team_id, league)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query,
		tm.CanonicalName, tm.FootyStatsName, tm.FootballAPIName,
		tm.FootballAPITeamID, tm.League,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create team mapping: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ResolveTeam looks up the FootyStats-side name for a football API team
// name: league-scoped first, then any league (cups and cross-league play).
// Returns "" when the team is unmapped.
func (r *MappingRepository) ResolveTeam(ctx context.Context, apiName, league string) (string, error) {
	var name string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT footy_stats_name FROM team_mapping
		WHERE football_api_name = $1 AND league = $2
	`, apiName, league).Scan(&name)
	if err == nil {
		return name, nil
	}
	if err != pgx.ErrNoRows {
		return "", fmt.Errorf("failed to resolve team: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT footy_stats_name FROM team_mapping
		WHERE football_api_name = $1 LIMIT 1
	`, apiName).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve team: %w", err)
	}

	return name, nil
}

// MatchMappingExists reports whether a fixture is already linked
func (r *MappingRepository) MatchMappingExists(ctx context.Context, fixtureID int) (bool, error) {
	var one int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT 1 FROM match_mapping WHERE football_api_match_id = $1`,
		fixtureID,
	).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check match mapping: %w", err)
	}

	return true, nil
}

// CreateMatchMapping links a football API fixture to a prediction row.
// Re-linking an already mapped fixture is a no-op.
func (r *MappingRepository) CreateMatchMapping(ctx context.Context, mm *models.MatchMapping) (bool, error) {
	query := `
		INSERT INTO match_mapping
			(football_api_match_id, footy_stats_match_id,
			 home_team, away_team, match_date, league, mapped_via)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (football_api_match_id) DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query,
		mm.FootballAPIMatchID, mm.FootyStatsMatchID,
		mm.HomeTeam, mm.AwayTeam, mm.MatchDate, mm.League, mm.MappedVia,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create match mapping: %w", err)
	}

	inserted := result.RowsAffected() > 0
	if inserted {
		log.Debug().
			Int("fixture_id", mm.FootballAPIMatchID).
			Int("match_id", mm.FootyStatsMatchID).
			Str("via", mm.MappedVia).
			Msg("Match mapping created")
	}

	return inserted, nil
}
