// Package mapping links the football API's team and fixture identifiers to
// the FootyStats-side prediction rows. The team sync builds the name mapping
// per league season; the match sync resolves each day's fixtures to a
// prediction match_id, with a fuzzy fallback when the name route fails.
package mapping

import (
	"context"
	"fmt"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
)

// League pairs an API-Sports league ID with the league_name the prediction
// rows carry.
type League struct {
	ID   int
	Name string
}

// TeamSyncLeagues covers every competition the team mapping is maintained
// for, domestic leagues plus the cups whose entrants come from them.
var TeamSyncLeagues = []League{
	{39, "England Premier League"},
	{40, "England Championship"},
	{140, "Spain La Liga"},
	{61, "France Ligue 1"},
	{135, "Italy Serie A"},
	{78, "Germany Bundesliga"},
	{2, "UEFA Champions League"},
	{3, "UEFA Europa League"},
	{1, "FIFA World Cup"},
	{15, "FIFA Club World Cup"},
	{88, "Netherlands Eredivisie"},
	{94, "Portugal Liga NOS"},
	{262, "Mexico Liga MX"},
	{71, "Brazil Serie A"},
	{253, "USA MLS"},
}

// MatchSyncLeagues is the subset whose fixtures are linked daily.
var MatchSyncLeagues = []League{
	{39, "England Premier League"},
	{140, "Spain La Liga"},
	{61, "France Ligue 1"},
	{135, "Italy Serie A"},
	{78, "Germany Bundesliga"},
	{2, "UEFA Champions League"},
	{88, "Netherlands Eredivisie"},
	{94, "Portugal Liga NOS"},
	{262, "Mexico Liga MX"},
	{253, "USA MLS"},
}

const (
	// teamThreshold accepts a team name pairing; fallbackThreshold accepts
	// a whole-fixture pairing, scored as the mean of both team ratios.
	teamThreshold     = 80
	fallbackThreshold = 85.0
)

type Mapper struct {
	db     *repository.Database
	sports *client.APISports
	season int
}

func New(db *repository.Database, sports *client.APISports, season int) *Mapper {
	return &Mapper{db: db, sports: sports, season: season}
}

// DefaultDates returns the match sync's default window, today and tomorrow
// in UTC.
func DefaultDates(now time.Time) []string {
	today := now.UTC()
	return []string{
		today.Format("2006-01-02"),
		today.AddDate(0, 0, 1).Format("2006-01-02"),
	}
}

// TeamSyncSummary counts one team sync run.
type TeamSyncSummary struct {
	Matched   int
	Unmatched int
	Inserted  int
}

// SyncTeams refreshes the team mapping for every configured league. A
// league whose fetch fails is logged and skipped; the rest still sync.
func (m *Mapper) SyncTeams(ctx context.Context) (*TeamSyncSummary, error) {
	summary := &TeamSyncSummary{}
	for _, league := range TeamSyncLeagues {
		if err := m.syncLeagueTeams(ctx, league, summary); err != nil {
			log.Error().Str("league", league.Name).Err(err).Msg("Team sync failed for league")
			metrics.RecordError("mapping", "team_sync_failed")
		}
	}

	log.Info().
		Int("matched", summary.Matched).
		Int("unmatched", summary.Unmatched).
		Int("inserted", summary.Inserted).
		Msg("Team sync complete")

	return summary, nil
}

func (m *Mapper) syncLeagueTeams(ctx context.Context, league League, summary *TeamSyncSummary) error {
	apiTeams, err := m.fetchTeams(ctx, league.ID)
	if err != nil {
		return err
	}
	if len(apiTeams) == 0 {
		log.Warn().Str("league", league.Name).Int("league_id", league.ID).Msg("No teams from football API")
		return nil
	}

	fsNames, err := m.db.Predictions.TeamNames(ctx, league.Name)
	if err != nil {
		return err
	}
	if len(fsNames) == 0 {
		log.Warn().Str("league", league.Name).Msg("No prediction rows for league, nothing to map")
		return nil
	}

	matched, missed := matchTeams(fsNames, apiTeams, teamThreshold)
	for _, mt := range matched {
		inserted, err := m.db.Mappings.CreateTeamMapping(ctx, &models.TeamMapping{
			CanonicalName:     mt.APIName,
			FootyStatsName:    mt.FootyStatsName,
			FootballAPIName:   mt.APIName,
			FootballAPITeamID: mt.APITeamID,
			League:            league.Name,
		})
		if err != nil {
			return err
		}
		if inserted {
			summary.Inserted++
			metrics.RecordTeamMapping(league.Name)
		}
	}

	for _, miss := range missed {
		log.Warn().
			Str("league", league.Name).
			Str("team", miss.FootyStatsName).
			Str("best_guess", miss.BestGuess).
			Int("score", miss.Score).
			Msg("Team left unmatched, map it manually")
	}

	summary.Matched += len(matched)
	summary.Unmatched += len(missed)

	log.Info().
		Str("league", league.Name).
		Int("api_teams", len(apiTeams)).
		Int("prediction_teams", len(fsNames)).
		Int("matched", len(matched)).
		Int("unmatched", len(missed)).
		Msg("League teams synced")

	return nil
}

// fetchTeams fetches a league's squad list, falling back to the previous
// season when the configured one is empty. Cross-year leagues key their
// seasons on the start year.
func (m *Mapper) fetchTeams(ctx context.Context, leagueID int) ([]client.Team, error) {
	teams, err := m.sports.FetchTeams(ctx, leagueID, m.season)
	if err != nil {
		return nil, err
	}
	if len(teams) > 0 {
		return teams, nil
	}

	log.Debug().Int("league_id", leagueID).Int("season", m.season-1).Msg("Empty season, retrying previous")
	return m.sports.FetchTeams(ctx, leagueID, m.season-1)
}

// teamMatch pairs one FootyStats-side name with its football API team.
type teamMatch struct {
	FootyStatsName string
	APIName        string
	APITeamID      int
}

// teamMiss is a name whose best candidate scored below the threshold.
type teamMiss struct {
	FootyStatsName string
	BestGuess      string
	Score          int
}

// matchTeams greedily pairs FootyStats names with API teams by token-sort
// similarity. Names are taken in order and each API team is claimed at most
// once.
func matchTeams(fsNames []string, apiTeams []client.Team, threshold int) ([]teamMatch, []teamMiss) {
	var matched []teamMatch
	var missed []teamMiss
	used := make(map[int]struct{})

	for _, fsName := range fsNames {
		var best *client.Team
		bestScore := 0
		for i := range apiTeams {
			if _, taken := used[apiTeams[i].ID]; taken {
				continue
			}
			score := fuzzy.TokenSortRatio(fsName, apiTeams[i].Name)
			if score > bestScore {
				bestScore = score
				best = &apiTeams[i]
			}
		}

		if best != nil && bestScore >= threshold {
			matched = append(matched, teamMatch{
				FootyStatsName: fsName,
				APIName:        best.Name,
				APITeamID:      best.ID,
			})
			used[best.ID] = struct{}{}
			continue
		}

		miss := teamMiss{FootyStatsName: fsName, Score: bestScore}
		if best != nil {
			miss.BestGuess = best.Name
		}
		missed = append(missed, miss)
	}

	return matched, missed
}

// MatchSyncSummary counts one date's fixture mapping.
type MatchSyncSummary struct {
	Date     string
	Mapped   int
	Fallback int
	Skipped  int
	Failed   []string
}

// SyncMatches links every fixture of the date to its prediction row. League
// fetch failures and per-fixture database errors are logged and skipped so
// one bad entry cannot stall the sweep.
func (m *Mapper) SyncMatches(ctx context.Context, date string) (*MatchSyncSummary, error) {
	summary := &MatchSyncSummary{Date: date}

	for _, league := range MatchSyncLeagues {
		fixtures, err := m.fetchFixtures(ctx, date, league.ID)
		if err != nil {
			log.Warn().Str("league", league.Name).Str("date", date).Err(err).Msg("Fixture fetch failed")
			metrics.RecordError("mapping", "fixtures_fetch_failed")
			continue
		}

		for _, fix := range fixtures {
			if err := m.mapFixture(ctx, league, fix, summary); err != nil {
				log.Error().Int("fixture_id", fix.ID).Str("league", league.Name).Err(err).Msg("Fixture mapping failed")
				metrics.RecordError("mapping", "map_fixture_failed")
			}
		}
	}

	log.Info().
		Str("date", date).
		Int("mapped", summary.Mapped).
		Int("fallback", summary.Fallback).
		Int("skipped", summary.Skipped).
		Int("failed", len(summary.Failed)).
		Msg("Match sync complete")
	for _, f := range summary.Failed {
		log.Warn().Str("date", date).Str("fixture", f).Msg("Fixture left unmapped")
	}

	return summary, nil
}

func (m *Mapper) fetchFixtures(ctx context.Context, date string, leagueID int) ([]client.Fixture, error) {
	fixtures, err := m.sports.FetchFixtures(ctx, date, leagueID, m.season)
	if err != nil {
		return nil, err
	}
	if len(fixtures) > 0 {
		return fixtures, nil
	}
	return m.sports.FetchFixtures(ctx, date, leagueID, m.season-1)
}

func (m *Mapper) mapFixture(ctx context.Context, league League, fix client.Fixture, summary *MatchSyncSummary) error {
	exists, err := m.db.Mappings.MatchMappingExists(ctx, fix.ID)
	if err != nil {
		return err
	}
	if exists {
		summary.Skipped++
		return nil
	}

	matchDate := fixtureDate(fix.Date)

	fsHome, err := m.db.Mappings.ResolveTeam(ctx, fix.HomeTeam, league.Name)
	if err != nil {
		return err
	}
	fsAway, err := m.db.Mappings.ResolveTeam(ctx, fix.AwayTeam, league.Name)
	if err != nil {
		return err
	}

	matchID := 0
	via := models.MappedViaAuto

	if fsHome != "" && fsAway != "" {
		matchID, err = m.db.Predictions.FindMatchID(ctx, fsHome, fsAway, matchDate)
		if err != nil {
			return err
		}
	}

	if matchID == 0 {
		candidates, err := m.db.Predictions.CandidatesNear(ctx, matchDate)
		if err != nil {
			return err
		}
		matchID = bestCandidate(fix.HomeTeam, fix.AwayTeam, candidates, fallbackThreshold)
		if matchID != 0 {
			via = models.MappedViaFallback
			summary.Fallback++
		}
	}

	if matchID == 0 {
		reason := "no_prediction"
		if fsHome == "" || fsAway == "" {
			reason = "team_not_mapped"
		}
		summary.Failed = append(summary.Failed,
			fmt.Sprintf("%s: %s vs %s (%s)", league.Name, fix.HomeTeam, fix.AwayTeam, reason))
		return nil
	}

	inserted, err := m.db.Mappings.CreateMatchMapping(ctx, &models.MatchMapping{
		FootballAPIMatchID: fix.ID,
		FootyStatsMatchID:  matchID,
		HomeTeam:           fix.HomeTeam,
		AwayTeam:           fix.AwayTeam,
		MatchDate:          matchDate,
		League:             league.Name,
		MappedVia:          via,
	})
	if err != nil {
		return err
	}

	if inserted {
		summary.Mapped++
		metrics.RecordMatchMapping(via)
	} else {
		summary.Skipped++
	}
	return nil
}

// bestCandidate picks the prediction row most similar to the fixture,
// scoring each by the mean of home and away token-sort ratios. Below the
// threshold nothing is accepted.
func bestCandidate(home, away string, candidates []*models.Prediction, threshold float64) int {
	bestID := 0
	bestScore := 0.0
	for _, c := range candidates {
		score := float64(fuzzy.TokenSortRatio(home, c.HomeTeam)+fuzzy.TokenSortRatio(away, c.AwayTeam)) / 2
		if score > bestScore {
			bestScore = score
			bestID = c.MatchID
		}
	}
	if bestScore >= threshold {
		return bestID
	}
	return 0
}

// fixtureDate reduces the API's ISO timestamp to its date part.
func fixtureDate(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
