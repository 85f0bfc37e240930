package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"soccer_v3/pipeline/internal/cache"
)

const leagueListURL = "https://api.football-data-api.com/league-list"

// matchEndpoint is one candidate configuration for the match-details call.
// The vendor exposes the same endpoint under two hosts and two parameter
// names depending on plan age; which one answers is probed at runtime.
type matchEndpoint struct {
	url     string
	idParam string
}

var matchEndpoints = []matchEndpoint{
	{url: "https://api.football-data-api.com/match", idParam: "match_id"},
	{url: "https://api.footystats.org/match", idParam: "id"},
	{url: "https://api.footystats.org/match", idParam: "match_id"},
}

// FootyStats is the football-data API client: match results for settlement
// and the league catalog. Auth is a key query parameter on every call.
type FootyStats struct {
	core   *core
	apiKey string

	cache         *cache.Cache
	matchTTL      time.Duration
	leagueListTTL time.Duration

	mu    sync.Mutex
	match *matchEndpoint // set by the first successful probe
}

// NewFootyStats creates a FootyStats client.
func NewFootyStats(apiKey string, timeout time.Duration, rps float64) *FootyStats {
	return &FootyStats{
		core:   newCore("footystats", timeout, rps),
		apiKey: apiKey,
	}
}

// UseCache attaches a read-through cache for match and league-list
// responses. A nil cache disables caching.
func (f *FootyStats) UseCache(c *cache.Cache, matchTTL, leagueListTTL time.Duration) {
	f.cache = c
	f.matchTTL = matchTTL
	f.leagueListTTL = leagueListTTL
}

// MatchData is the match payload reduced to what settlement needs. Goal
// counts are absent until the provider marks the match complete.
type MatchData struct {
	ID            int      `json:"id"`
	Status        string   `json:"status"`
	HomeGoalCount *float64 `json:"homeGoalCount"`
	AwayGoalCount *float64 `json:"awayGoalCount"`
}

// Complete reports whether the match finished with both scores present.
func (d *MatchData) Complete() bool {
	return strings.EqualFold(d.Status, "complete") && d.HomeGoalCount != nil && d.AwayGoalCount != nil
}

type matchResponse struct {
	Success bool      `json:"success"`
	Data    MatchData `json:"data"`
}

// FetchMatch fetches match details, through the cache when one is
// attached. On first use the candidate endpoint configurations are probed
// with this match ID; the first one answering with a payload is kept for
// the process lifetime.
func (f *FootyStats) FetchMatch(ctx context.Context, matchID int) (*MatchData, error) {
	key := cache.Key("footystats", "match", strconv.Itoa(matchID))
	var cached MatchData
	if f.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	data, err := f.fetchMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	f.cache.Set(ctx, key, data, f.matchTTL)
	return data, nil
}

func (f *FootyStats) fetchMatch(ctx context.Context, matchID int) (*MatchData, error) {
	f.mu.Lock()
	resolved := f.match
	f.mu.Unlock()

	if resolved != nil {
		return f.fetchMatchVia(ctx, *resolved, matchID)
	}

	var lastErr error
	for _, candidate := range matchEndpoints {
		data, err := f.fetchMatchVia(ctx, candidate, matchID)
		if err != nil {
			lastErr = err
			f.core.logger.Debug().
				Str("url", candidate.url).
				Str("id_param", candidate.idParam).
				Err(err).
				Msg("Match endpoint candidate failed")
			continue
		}

		cfg := candidate
		f.mu.Lock()
		f.match = &cfg
		f.mu.Unlock()
		f.core.logger.Info().
			Str("url", cfg.url).
			Str("id_param", cfg.idParam).
			Msg("Resolved working match endpoint")
		return data, nil
	}

	return nil, fmt.Errorf("failed to resolve a match endpoint: %w", lastErr)
}

func (f *FootyStats) fetchMatchVia(ctx context.Context, cfg matchEndpoint, matchID int) (*MatchData, error) {
	params := map[string]string{
		"key":       f.apiKey,
		cfg.idParam: strconv.Itoa(matchID),
	}

	var result matchResponse
	if err := f.core.getJSON(ctx, "match", cfg.url, nil, params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch match %d: %w", matchID, err)
	}
	if !result.Success || result.Data.Status == "" {
		return nil, fmt.Errorf("match %d: empty or unsuccessful payload", matchID)
	}
	return &result.Data, nil
}

// LeagueEntry is one league in the provider catalog. Older payloads carry
// the name and seasons under alternate keys, hence the paired fields.
type LeagueEntry struct {
	Name       string         `json:"name"`
	LeagueName string         `json:"league_name"`
	Country    string         `json:"country"`
	Seasons    []LeagueSeason `json:"seasons"`
	Season     []LeagueSeason `json:"season"`
}

// DisplayName returns the catalog name, whichever key carried it.
func (l *LeagueEntry) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.LeagueName
}

// SeasonList returns the season entries, whichever key carried them.
func (l *LeagueEntry) SeasonList() []LeagueSeason {
	if len(l.Seasons) > 0 {
		return l.Seasons
	}
	return l.Season
}

// LeagueSeason is one season of a league. Years arrive as 2025 for calendar
// leagues or 20252026 for cross-year leagues, under either key.
type LeagueSeason struct {
	ID         int         `json:"id"`
	Year       json.Number `json:"year"`
	SeasonYear json.Number `json:"season"`
}

// YearString normalizes the season year to its string form.
func (s LeagueSeason) YearString() string {
	if s.Year != "" {
		return s.Year.String()
	}
	return s.SeasonYear.String()
}

type leagueListResponse struct {
	Success bool          `json:"success"`
	Data    []LeagueEntry `json:"data"`
}

// FetchLeagueList fetches the full league catalog, through the cache when
// one is attached.
func (f *FootyStats) FetchLeagueList(ctx context.Context) ([]LeagueEntry, error) {
	key := cache.Key("footystats", "league-list")
	var cached []LeagueEntry
	if f.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	params := map[string]string{"key": f.apiKey}

	var result leagueListResponse
	if err := f.core.getJSON(ctx, "league-list", leagueListURL, nil, params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch league list: %w", err)
	}

	f.cache.Set(ctx, key, result.Data, f.leagueListTTL)
	return result.Data, nil
}
