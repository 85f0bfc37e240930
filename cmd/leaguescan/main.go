// Command leaguescan discovers the current FootyStats league IDs for the
// tracked competitions. The provider assigns a fresh ID per league season,
// so every new season starts with a scan and a refresh of the ID map.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/config"
	"soccer_v3/pipeline/internal/leagues"
)

func main() {
	out := flag.String("out", "league_ids_output.json", "output JSON path")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	footy := client.NewFootyStats(cfg.FootyStatsAPIKey, cfg.FootyStatsTimeout, cfg.FootyStatsRateLimit)

	log.Info().Msg("Fetching league list...")
	entries, err := footy.FetchLeagueList(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch league list")
	}
	log.Info().Int("count", len(entries)).Msg("League entries returned")

	catalog := leagues.Filter(entries)
	log.Info().
		Int("all_seasons", len(catalog.AllTargetLeagues)).
		Int("newest", len(catalog.NewestIDs)).
		Msg("Tracked leagues filtered")

	for _, entry := range catalog.QuickReference() {
		log.Info().
			Str("label", entry.Label).
			Str("api_name", entry.APIName).
			Int("id", entry.ID).
			Str("season", entry.Season).
			Msg("Current league ID")
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal catalog")
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatal().Err(err).Str("file", *out).Msg("Failed to write catalog")
	}

	log.Info().Str("file", *out).Msg("Full results saved.")
}
