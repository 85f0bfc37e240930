// Command csvimport loads the model pipeline's CSV exports: feature
// vectors, published predictions, raw model outputs for the ourmodel
// tables, and the winbets ID map. Re-running an import is safe; rows
// already present are skipped.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/config"
	"soccer_v3/pipeline/internal/ingest"
	"soccer_v3/pipeline/internal/repository"
)

func main() {
	features := flag.String("features", "", "feature-vector CSV to load into soccer_v1_features")
	predictions := flag.String("predictions", "", "published-predictions CSV to load into agility_soccer_v1")
	model := flag.String("model", "", "model-output CSV to derive into an ourmodel table")
	table := flag.String("table", "v1", "ourmodel table for -model: v1 or v3")
	wbmap := flag.String("wbmap", "", "winbets ID-map CSV to backfill mirror identifiers")
	cleanup := flag.Bool("cleanup", false, "after -model, delete rows absent from the export")
	flag.Parse()

	if *features == "" && *predictions == "" && *model == "" && *wbmap == "" {
		flag.Usage()
		os.Exit(2)
	}

	var modelTable string
	if *model != "" {
		switch *table {
		case "v1":
			modelTable = repository.TableModelV1
		case "v3":
			modelTable = repository.TableModelV3
		default:
			log.Fatal().Str("table", *table).Msg("-table must be v1 or v3")
		}
	}
	if *cleanup && *model == "" {
		log.Fatal().Msg("-cleanup requires -model")
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	primary, err := repository.NewDatabase(ctx, "primary", cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer primary.Close()

	if err := primary.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// The published tables also live on the winbets mirror. A mirror that is
	// down doesn't block the primary load; the next run catches it up.
	dbs := []*repository.Database{primary}
	if cfg.WinbetsDBEnabled && (*predictions != "" || *wbmap != "") {
		mirror, err := repository.NewDatabase(ctx, "winbets", cfg.WinbetsDSN())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to winbets mirror - loading primary only")
		} else {
			defer mirror.Close()
			dbs = append(dbs, mirror)
		}
	}

	failed := false

	if *features != "" {
		sum, err := ingest.Features(ctx, primary, *features)
		if err != nil {
			log.Fatal().Err(err).Str("file", *features).Msg("Feature ingest failed")
		}
		failed = failed || wholeFailure(sum)
	}

	if *predictions != "" {
		sums, err := ingest.Predictions(ctx, dbs, *predictions)
		if err != nil {
			log.Fatal().Err(err).Str("file", *predictions).Msg("Prediction ingest failed")
		}
		for _, sum := range sums {
			failed = failed || wholeFailure(sum)
		}
	}

	if *model != "" {
		sum, err := ingest.ModelPredictions(ctx, primary, modelTable, *model)
		if err != nil {
			log.Fatal().Err(err).Str("file", *model).Msg("Model ingest failed")
		}
		failed = failed || wholeFailure(sum)

		if *cleanup {
			removed, err := ingest.ModelCleanup(ctx, primary, modelTable, *model)
			if err != nil {
				log.Fatal().Err(err).Str("table", modelTable).Msg("Model cleanup failed")
			}
			log.Info().Int64("removed", removed).Str("table", modelTable).Msg("Model cleanup complete")
		}
	}

	if *wbmap != "" {
		sums, err := ingest.WinbetsMap(ctx, dbs, *wbmap)
		if err != nil {
			log.Fatal().Err(err).Str("file", *wbmap).Msg("Winbets map ingest failed")
		}
		for _, sum := range sums {
			failed = failed || wholeFailure(sum)
		}
	}

	if failed {
		log.Error().Msg("At least one batch failed every row")
		os.Exit(1)
	}
	log.Info().Msg("CSV import complete.")
}

// wholeFailure reports a batch where every processed row failed.
func wholeFailure(s *ingest.Summary) bool {
	return s.Total > 0 && s.Failed == s.Total
}
