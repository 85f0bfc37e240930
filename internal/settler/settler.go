// Package settler runs the settlement sweep: pending rows dated on or before
// the target date are checked against final results from the football-data
// API, actual sides and profit/loss are written for both markets, and the
// day's performance summary is aggregated. The published table settles first,
// then both model tables under the same rules.
package settler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/scoring"
)

const agilityTable = "agility_soccer_v1"

// voidStatuses are provider statuses that terminate a prediction without a
// result. The row keeps the uppercased status and is never revisited.
var voidStatuses = map[string]struct{}{
	"canceled":  {},
	"cancelled": {},
	"postponed": {},
	"abandoned": {},
	"suspended": {},
}

func isVoidStatus(status string) bool {
	_, ok := voidStatuses[strings.ToLower(status)]
	return ok
}

// TargetDate returns the default settlement date, the day before now in UTC.
func TargetDate(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

// Summary counts the outcomes of one table's sweep.
type Summary struct {
	Table    string
	Date     string
	Examined int
	Settled  int
	Voided   int
	Pending  int
	Failed   int
}

type Settler struct {
	db    *repository.Database
	footy *client.FootyStats
}

func New(db *repository.Database, footy *client.FootyStats) *Settler {
	return &Settler{db: db, footy: footy}
}

// SettleDate runs the full sweep for one date and returns the day's stats:
// the published table, both model tables, then the daily summary.
func (s *Settler) SettleDate(ctx context.Context, date string) (*models.DailyStats, error) {
	if _, err := s.settlePredictions(ctx, date); err != nil {
		return nil, err
	}
	for _, table := range []string{repository.TableModelV1, repository.TableModelV3} {
		if _, err := s.settleModelTable(ctx, table, date); err != nil {
			return nil, err
		}
	}
	return s.ReportDailyStats(ctx, date)
}

// settlePredictions sweeps the published prediction table.
func (s *Settler) settlePredictions(ctx context.Context, date string) (*Summary, error) {
	rows, err := s.db.Predictions.PendingThrough(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending predictions: %w", err)
	}

	summary := &Summary{Table: agilityTable, Date: date, Examined: len(rows)}
	for _, row := range rows {
		data, err := s.footy.FetchMatch(ctx, row.MatchID)
		if err != nil {
			log.Warn().Int("match_id", row.MatchID).Err(err).Msg("Match fetch failed, leaving row pending")
			metrics.RecordError("settler", "fetch_failed")
			summary.Failed++
			continue
		}

		switch {
		case data.Complete():
			settlement := settleMatch(predictionPick(row), *data.HomeGoalCount, *data.AwayGoalCount)
			if err := s.db.Predictions.Settle(ctx, settlement); err != nil {
				log.Error().Int("match_id", row.MatchID).Err(err).Msg("Failed to settle prediction")
				metrics.RecordError("settler", "settle_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(agilityTable, "settled")
			summary.Settled++
			log.Info().
				Int("match_id", row.MatchID).
				Str("score", fmt.Sprintf("%s %.0f-%.0f %s", row.HomeTeam, *data.HomeGoalCount, *data.AwayGoalCount, row.AwayTeam)).
				Str("actual_winner", settlement.ActualWinner).
				Str("actual_over_under", settlement.ActualOverUnder).
				Float64("profit_outcome", settlement.OutcomeProfit).
				Float64("profit_winner", settlement.WinnerProfit).
				Msg("Prediction settled")

		case isVoidStatus(data.Status):
			if err := s.db.Predictions.MarkVoid(ctx, row.MatchID, strings.ToUpper(data.Status)); err != nil {
				log.Error().Int("match_id", row.MatchID).Err(err).Msg("Failed to void prediction")
				metrics.RecordError("settler", "void_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(agilityTable, "voided")
			summary.Voided++
			log.Info().Int("match_id", row.MatchID).Str("status", data.Status).Msg("Prediction voided")

		default:
			if err := s.db.Predictions.TouchPending(ctx, row.MatchID); err != nil {
				log.Error().Int("match_id", row.MatchID).Err(err).Msg("Failed to touch pending prediction")
				metrics.RecordError("settler", "touch_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(agilityTable, "pending")
			summary.Pending++
			log.Debug().Int("match_id", row.MatchID).Str("status", data.Status).Msg("Match not complete yet")
		}
	}

	logSummary(summary)
	return summary, nil
}

// settleModelTable sweeps one model table under the same rules.
func (s *Settler) settleModelTable(ctx context.Context, table, date string) (*Summary, error) {
	rows, err := s.db.ModelPredictions.PendingThrough(ctx, table, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending model predictions: %w", err)
	}

	summary := &Summary{Table: table, Date: date, Examined: len(rows)}
	for _, row := range rows {
		data, err := s.footy.FetchMatch(ctx, row.MatchID)
		if err != nil {
			log.Warn().Int("match_id", row.MatchID).Str("table", table).Err(err).Msg("Match fetch failed, leaving row pending")
			metrics.RecordError("settler", "fetch_failed")
			summary.Failed++
			continue
		}

		switch {
		case data.Complete():
			settlement := settleMatch(modelPick(row), *data.HomeGoalCount, *data.AwayGoalCount)
			if err := s.db.ModelPredictions.Settle(ctx, table, settlement); err != nil {
				log.Error().Int("match_id", row.MatchID).Str("table", table).Err(err).Msg("Failed to settle model prediction")
				metrics.RecordError("settler", "settle_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(table, "settled")
			summary.Settled++

		case isVoidStatus(data.Status):
			if err := s.db.ModelPredictions.MarkVoid(ctx, table, row.MatchID, strings.ToUpper(data.Status)); err != nil {
				log.Error().Int("match_id", row.MatchID).Str("table", table).Err(err).Msg("Failed to void model prediction")
				metrics.RecordError("settler", "void_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(table, "voided")
			summary.Voided++

		default:
			if err := s.db.ModelPredictions.TouchPending(ctx, table, row.MatchID); err != nil {
				log.Error().Int("match_id", row.MatchID).Str("table", table).Err(err).Msg("Failed to touch pending model prediction")
				metrics.RecordError("settler", "touch_failed")
				summary.Failed++
				continue
			}
			metrics.RecordSettlement(table, "pending")
			summary.Pending++
		}
	}

	logSummary(summary)
	return summary, nil
}

func logSummary(s *Summary) {
	log.Info().
		Str("table", s.Table).
		Str("date", s.Date).
		Int("examined", s.Examined).
		Int("settled", s.Settled).
		Int("voided", s.Voided).
		Int("still_pending", s.Pending).
		Int("failed", s.Failed).
		Msg("Settlement sweep complete")
}

// ReportDailyStats aggregates, logs and exports the settled results of one
// date.
func (s *Settler) ReportDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	stats, err := s.db.Stats.DailyStats(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}

	log.Info().
		Str("date", stats.Date).
		Int("settled", stats.SettledCount).
		Float64("ou_accuracy", stats.OverUnderAccuracy()).
		Float64("winner_accuracy", stats.WinnerAccuracy()).
		Float64("ou_profit_sum", stats.OutcomeProfitSum).
		Float64("ou_profit_avg", stats.OutcomeProfitAvg).
		Float64("winner_profit_sum", stats.WinnerProfitSum).
		Float64("winner_profit_avg", stats.WinnerProfitAvg).
		Msg("Daily performance")

	for _, cat := range stats.Categories {
		log.Info().
			Str("date", stats.Date).
			Str("category", cat.Category).
			Int("settled", cat.SettledCount).
			Int("correct_ou", cat.CorrectOverUnder).
			Int("correct_winner", cat.CorrectWinner).
			Float64("ou_profit_sum", cat.OutcomeProfitSum).
			Float64("winner_profit_sum", cat.WinnerProfitSum).
			Msg("Daily performance by category")
	}

	metrics.UpdateDailyStats(stats.SettledCount,
		stats.OverUnderAccuracy(), stats.WinnerAccuracy(),
		stats.OutcomeProfitSum, stats.WinnerProfitSum)

	return stats, nil
}

// pick is the slice of a prediction row that settlement needs, common to the
// published and model tables.
type pick struct {
	MatchID   int
	HomeTeam  string
	AwayTeam  string
	Winner    string // moneyline label
	Totals    string // totals label
	Moneyline scoring.MoneylineOdds
	OverOdds  float64
	UnderOdds float64
}

func predictionPick(row *models.Prediction) pick {
	return pick{
		MatchID:  row.MatchID,
		HomeTeam: row.HomeTeam,
		AwayTeam: row.AwayTeam,
		Winner:   row.PredictedWinner.String,
		Totals:   row.PredictedOutcome.String,
		Moneyline: scoring.MoneylineOdds{
			Home: row.HomeOdds.Float64,
			Away: row.AwayOdds.Float64,
			Draw: row.DrawOdds.Float64,
		},
		OverOdds:  row.OverOdds.Float64,
		UnderOdds: row.UnderOdds.Float64,
	}
}

func modelPick(row *models.ModelPrediction) pick {
	return pick{
		MatchID:  row.MatchID,
		HomeTeam: row.HomeTeamName,
		AwayTeam: row.AwayTeamName,
		Winner:   row.PredictedWinner.String,
		Totals:   row.PredictedOutcome.String,
		Moneyline: scoring.MoneylineOdds{
			Home: row.HomeOdds.Float64,
			Away: row.AwayOdds.Float64,
			Draw: row.DrawOdds.Float64,
		},
		OverOdds:  row.OverOdds.Float64,
		UnderOdds: row.UnderOdds.Float64,
	}
}

// settleMatch computes the settlement of one completed match: actual sides
// from the final score, profit/loss per market from the predicted labels and
// the odds taken.
func settleMatch(p pick, homeGoals, awayGoals float64) *models.Settlement {
	actualWinner := scoring.ActualWinner(homeGoals, awayGoals)
	actualTotals := scoring.ActualTotalsSide(homeGoals, awayGoals)

	winnerSide := scoring.ParseWinnerLabel(p.Winner)
	totalsSide := scoring.ParseTotalsLabel(p.Totals)

	winnerOdds, _ := p.Moneyline.ForSide(winnerSide)
	totalsOdds := 0.0
	switch totalsSide {
	case scoring.SideOver:
		totalsOdds = p.OverOdds
	case scoring.SideUnder:
		totalsOdds = p.UnderOdds
	}

	return &models.Settlement{
		MatchID:         p.MatchID,
		ActualWinner:    winnerName(actualWinner, p.HomeTeam, p.AwayTeam),
		ActualOverUnder: totalsLabel(actualTotals),
		HomeGoals:       homeGoals,
		AwayGoals:       awayGoals,
		TotalGoals:      homeGoals + awayGoals,
		OutcomeProfit:   scoring.SettleProfit(totalsSide, actualTotals, totalsOdds),
		WinnerProfit:    scoring.SettleProfit(winnerSide, actualWinner, winnerOdds),
	}
}

// winnerName renders the stored actual_winner value, the winning team's name
// or "Draw".
func winnerName(side scoring.Side, homeTeam, awayTeam string) string {
	switch side {
	case scoring.SideHome:
		return strings.TrimSpace(homeTeam)
	case scoring.SideAway:
		return strings.TrimSpace(awayTeam)
	}
	return "Draw"
}

func totalsLabel(side scoring.Side) string {
	if side == scoring.SideOver {
		return "Over 2.5"
	}
	return "Under 2.5"
}
