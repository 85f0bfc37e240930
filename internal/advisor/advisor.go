// Package advisor fills the ai_* columns of the published predictions: each
// upcoming match is sent to the Mistral analyst persona and the reply is
// parsed into a moneyline, totals and spread pick. Rows where all three
// columns are still NULL stay eligible for the next run.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/models"
	"soccer_v3/pipeline/internal/repository"
)

// systemPrompt sets the analyst persona. The wording is part of the
// calibration; change it and the historic picks stop being comparable.
const systemPrompt = "You are a professional soccer analyst with deep knowledge of global soccer leagues, teams, and players. Provide detailed match analysis based on recent form, statistics, and tactical considerations."

// Summary counts the outcomes of one advisor run.
type Summary struct {
	Selected int
	Updated  int
	Unparsed int
	Failed   int
}

type Advisor struct {
	db         *repository.Database
	mistral    *client.Mistral
	maxMatches int
}

func New(db *repository.Database, mistral *client.Mistral, maxMatches int) *Advisor {
	return &Advisor{db: db, mistral: mistral, maxMatches: maxMatches}
}

// Run analyzes up to the configured number of matches dated fromDate or
// later. Call pacing is enforced by the Mistral client's rate limit.
func (a *Advisor) Run(ctx context.Context, fromDate string) (*Summary, error) {
	rows, err := a.db.Predictions.NeedingAdvice(ctx, fromDate, a.maxMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions needing advice: %w", err)
	}

	summary := &Summary{Selected: len(rows)}
	if len(rows) == 0 {
		log.Debug().Str("from_date", fromDate).Msg("No predictions need advice")
		return summary, nil
	}

	for _, row := range rows {
		reply, err := a.mistral.Chat(ctx, systemPrompt, matchPrompt(row))
		if err != nil {
			log.Warn().Int("match_id", row.MatchID).Err(err).Msg("Analyst call failed")
			metrics.RecordAdvice("api_error")
			summary.Failed++
			continue
		}

		adv := ParseAdvice(reply, row.HomeTeam, row.AwayTeam)
		if err := a.db.Predictions.UpdateAdvice(ctx, row.MatchID, &adv); err != nil {
			log.Error().Int("match_id", row.MatchID).Err(err).Msg("Failed to store advice")
			metrics.RecordAdvice("db_error")
			summary.Failed++
			continue
		}

		if adv == (models.Advice{}) {
			log.Warn().Int("match_id", row.MatchID).Msg("No picks parsed from analyst reply")
			metrics.RecordAdvice("unparsed")
			summary.Unparsed++
			continue
		}
		if !adv.Complete() {
			log.Debug().Int("match_id", row.MatchID).Msg("Partial advice, unparsed markets stay NULL")
		}

		metrics.RecordAdvice("updated")
		summary.Updated++
		log.Info().
			Int("match_id", row.MatchID).
			Str("moneyline", adv.Moneyline).
			Str("over_under", adv.OverUnder).
			Str("spreads", adv.Spreads).
			Msg("Advice stored")
	}

	log.Info().
		Str("from_date", fromDate).
		Int("selected", summary.Selected).
		Int("updated", summary.Updated).
		Int("unparsed", summary.Unparsed).
		Int("failed", summary.Failed).
		Msg("Advisor run complete")

	return summary, nil
}

// matchPrompt renders the per-match analyst prompt: match context, the
// baseline model numbers, and the required reply format the parser expects.
func matchPrompt(row *models.Prediction) string {
	total := row.PredictedHomeGoals.Float64 + row.PredictedAwayGoals.Float64

	return fmt.Sprintf(`You are an expert soccer analyst tasked with INDEPENDENTLY analyzing this match. DO NOT simply agree with the model predictions - conduct your own analysis.

**Match Details:**
- League: %s
- Date: %s
- Home Team: %s
- Away Team: %s

**Baseline Model Predictions (for reference only):**
- Predicted Outcome: %s
- Predicted Score: %s %.1f - %.1f %s
- Total Goals: %.1f
- Over/Under 2.5: %s
- Model Confidence: %s

**YOUR INDEPENDENT ANALYSIS MUST INCLUDE:**

1. Research the CURRENT form of both teams (last 5 matches minimum)
2. Check for KEY INJURIES, suspensions, or tactical changes
3. Analyze HEAD-TO-HEAD history and recent meetings
4. Consider HOME vs AWAY performance statistics
5. Review league standings and motivation factors
6. Identify any TACTICAL MISMATCHES or advantages

**CRITICAL INSTRUCTION:**
Do NOT simply validate the model's predictions. Your job is to identify potential DIVERGENCES where your analysis disagrees with the model. Look for:
- Overvalued favorites
- Underrated underdogs
- Form reversals the model might miss
- Tactical factors affecting goals
- Situational contexts (injuries, rotation, schedule)

**REQUIRED OUTPUT FORMAT (be specific):**

Moneyline: [Home Win OR Away Win OR Draw]
Over/Under 2.5: [Over 2.5 OR Under 2.5]
Spreads: [Exact team name] (-X.X or +X.X)

**Then explain:**
Where you AGREE with the model and why (1-2 sentences)
Where you DISAGREE with the model and why (1-2 sentences)
Your key differentiating insight (1 sentence)

Be decisive. Pick definitive predictions even if uncertain.
`,
		row.LeagueName, row.Date, row.HomeTeam, row.AwayTeam,
		row.PredictedWinner.String,
		row.HomeTeam, row.PredictedHomeGoals.Float64, row.PredictedAwayGoals.Float64, row.AwayTeam,
		total,
		row.PredictedOutcome.String,
		row.ConfidenceCategory.String)
}

// ParseAdvice extracts the three picks from an analyst reply. Matching is
// line-based on market keywords with whole-text fallbacks, and the last
// matching line wins. A missing spread pick is derived from the moneyline
// winner at a -1.5 handicap.
func ParseAdvice(reply, homeTeam, awayTeam string) models.Advice {
	var adv models.Advice
	if reply == "" {
		return adv
	}

	replyLower := strings.ToLower(reply)
	lines := strings.Split(reply, "\n")
	homeLower := strings.ToLower(homeTeam)
	awayLower := strings.ToLower(awayTeam)

	for _, line := range lines {
		l := strings.ToLower(line)
		if !strings.Contains(l, "moneyline") && !strings.Contains(l, "winner") && !strings.Contains(l, "result") {
			continue
		}
		switch {
		case strings.Contains(l, "home win") || (strings.Contains(l, homeLower) && strings.Contains(l, "win")):
			adv.Moneyline = "Home Win"
		case strings.Contains(l, "away win") || (strings.Contains(l, awayLower) && strings.Contains(l, "win")):
			adv.Moneyline = "Away Win"
		case strings.Contains(l, "draw") || strings.Contains(l, "tie"):
			adv.Moneyline = "Draw"
		}
	}
	if adv.Moneyline == "" {
		switch {
		case strings.Contains(replyLower, "home win") || strings.Contains(replyLower, "home team win"):
			adv.Moneyline = "Home Win"
		case strings.Contains(replyLower, "away win") || strings.Contains(replyLower, "away team win"):
			adv.Moneyline = "Away Win"
		case strings.Contains(replyLower, "draw") || strings.Contains(replyLower, "likely to draw"):
			adv.Moneyline = "Draw"
		}
	}

	for _, line := range lines {
		l := strings.ToLower(line)
		if !strings.Contains(l, "over/under") && !strings.Contains(l, "total goals") && !strings.Contains(l, "o/u") {
			continue
		}
		switch {
		case strings.Contains(l, "over 2.5") || strings.Contains(l, "over 3"):
			adv.OverUnder = "Over 2.5"
		case strings.Contains(l, "under 2.5") || strings.Contains(l, "under 3"):
			adv.OverUnder = "Under 2.5"
		}
	}
	if adv.OverUnder == "" {
		switch {
		case strings.Contains(replyLower, "over 2.5"):
			adv.OverUnder = "Over 2.5"
		case strings.Contains(replyLower, "under 2.5"):
			adv.OverUnder = "Under 2.5"
		}
	}

	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "spread") {
			continue
		}
		if !strings.ContainsAny(line, "(+-") {
			continue
		}
		if v := spreadFrom(line, homeTeam); v != "" {
			adv.Spreads = v
		} else if v := spreadFrom(line, awayTeam); v != "" {
			adv.Spreads = v
		}
	}
	if adv.Spreads == "" {
		switch adv.Moneyline {
		case "Home Win":
			adv.Spreads = homeTeam + " (-1.5)"
		case "Away Win":
			adv.Spreads = awayTeam + " (-1.5)"
		}
	}

	return adv
}

// spreadFrom reads "{team} {handicap}" off a spread line. The handicap is
// whatever sits in the parentheses starting within a few characters of the
// team name; a line naming the team without parentheses yields the bare
// name. Team matching is case sensitive, the reply is expected to use the
// exact names from the prompt.
func spreadFrom(line, team string) string {
	idx := strings.Index(line, team)
	if idx < 0 {
		return ""
	}

	end := idx + len(team) + 10
	if end > len(line) {
		end = len(line)
	}
	window := line[idx:end]

	open := strings.LastIndex(window, "(")
	if open < 0 {
		return team
	}
	val := window[open+1:]
	if close := strings.Index(val, ")"); close >= 0 {
		val = val[:close]
	}
	return team + " " + val
}
