// Command manualsettle settles one date's predictions on demand and reports
// the day's performance. It covers reruns after provider outages and
// backfills of dates the scheduled sweep missed.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/config"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/settler"
)

func main() {
	date := flag.String("date", settler.TargetDate(time.Now()), "date to settle (YYYY-MM-DD)")
	statsOnly := flag.Bool("stats-only", false, "recompute and report daily stats without settling")
	flag.Parse()

	if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatal().Str("date", *date).Msg("Date must be YYYY-MM-DD")
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, "primary", cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Validate database connectivity before touching any rows
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	footy := client.NewFootyStats(cfg.FootyStatsAPIKey, cfg.FootyStatsTimeout, cfg.FootyStatsRateLimit)
	s := settler.New(db, footy)

	if *statsOnly {
		if _, err := s.ReportDailyStats(ctx, *date); err != nil {
			log.Fatal().Err(err).Str("date", *date).Msg("Failed to report daily stats")
		}
		return
	}

	stats, err := s.SettleDate(ctx, *date)
	if err != nil {
		log.Fatal().Err(err).Str("date", *date).Msg("Settlement failed")
	}

	log.Info().
		Str("date", *date).
		Int("settled", stats.SettledCount).
		Msg("Manual settlement complete.")
}
