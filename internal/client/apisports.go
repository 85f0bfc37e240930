package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"soccer_v3/pipeline/internal/cache"
)

// APISports is the API-Sports football client used by the mapping sweeps.
// Auth is the x-apisports-key header.
type APISports struct {
	core    *core
	baseURL string
	apiKey  string

	cache *cache.Cache
	ttl   time.Duration
}

// NewAPISports creates an API-Sports client.
func NewAPISports(baseURL, apiKey string, timeout time.Duration, rps float64) *APISports {
	return &APISports{
		core:    newCore("apisports", timeout, rps),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// UseCache attaches a read-through cache for team and fixture responses.
// A nil cache disables caching.
func (a *APISports) UseCache(c *cache.Cache, ttl time.Duration) {
	a.cache = c
	a.ttl = ttl
}

func (a *APISports) headers() map[string]string {
	return map[string]string{"x-apisports-key": a.apiKey}
}

// Team is one API-Sports team entry.
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type teamsResponse struct {
	Response []struct {
		Team Team `json:"team"`
	} `json:"response"`
}

// FetchTeams fetches the teams of one league season, through the cache
// when one is attached.
func (a *APISports) FetchTeams(ctx context.Context, leagueID, season int) ([]Team, error) {
	key := cache.Key("apisports", "teams", strconv.Itoa(leagueID), strconv.Itoa(season))
	var cached []Team
	if a.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	params := map[string]string{
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	}

	var result teamsResponse
	if err := a.core.getJSON(ctx, "teams", a.baseURL+"/teams", a.headers(), params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch teams for league %d season %d: %w", leagueID, season, err)
	}

	teams := make([]Team, 0, len(result.Response))
	for _, entry := range result.Response {
		teams = append(teams, entry.Team)
	}

	a.cache.Set(ctx, key, teams, a.ttl)
	return teams, nil
}

// Fixture is one API-Sports fixture with the team names flattened out of
// the nested payload.
type Fixture struct {
	ID       int
	Date     string
	HomeTeam string
	AwayTeam string
}

type fixturesResponse struct {
	Response []struct {
		Fixture struct {
			ID   int    `json:"id"`
			Date string `json:"date"`
		} `json:"fixture"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
	} `json:"response"`
}

// FetchFixtures fetches one day's fixtures for a league season, through
// the cache when one is attached. The date is YYYY-MM-DD.
func (a *APISports) FetchFixtures(ctx context.Context, date string, leagueID, season int) ([]Fixture, error) {
	key := cache.Key("apisports", "fixtures", date, strconv.Itoa(leagueID), strconv.Itoa(season))
	var cached []Fixture
	if a.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	params := map[string]string{
		"date":   date,
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	}

	var result fixturesResponse
	if err := a.core.getJSON(ctx, "fixtures", a.baseURL+"/fixtures", a.headers(), params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures for league %d on %s: %w", leagueID, date, err)
	}

	fixtures := make([]Fixture, 0, len(result.Response))
	for _, entry := range result.Response {
		fixtures = append(fixtures, Fixture{
			ID:       entry.Fixture.ID,
			Date:     entry.Fixture.Date,
			HomeTeam: entry.Teams.Home.Name,
			AwayTeam: entry.Teams.Away.Name,
		})
	}

	a.cache.Set(ctx, key, fixtures, a.ttl)
	return fixtures, nil
}
