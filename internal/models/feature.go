package models

import "database/sql"

// FeatureRow represents one soccer_v1_features row: the per-match feature
// vector exported for model training. Insert-only; cells the export could
// not compute are NULL.
type FeatureRow struct {
	MatchID int `db:"match_id"`

	CTMCL          sql.NullFloat64 `db:"ctmcl"`
	AvgGoalsMarket sql.NullFloat64 `db:"avg_goals_market"`

	// Form
	PreMatchHomePPG sql.NullFloat64 `db:"pre_match_home_ppg"`
	PreMatchAwayPPG sql.NullFloat64 `db:"pre_match_away_ppg"`
	HomeFormPoints  sql.NullFloat64 `db:"home_form_points"`
	AwayFormPoints  sql.NullFloat64 `db:"away_form_points"`

	// Expected goals
	HomeXGAvg      sql.NullFloat64 `db:"home_xg_avg"`
	AwayXGAvg      sql.NullFloat64 `db:"away_xg_avg"`
	HomeXGMomentum sql.NullFloat64 `db:"home_xg_momentum"`
	AwayXGMomentum sql.NullFloat64 `db:"away_xg_momentum"`

	// Defense
	HomeGoalsConcededAvg sql.NullFloat64 `db:"home_goals_conceded_avg"`
	AwayGoalsConcededAvg sql.NullFloat64 `db:"away_goals_conceded_avg"`

	// Attack quality
	HomeShotsAccuracyAvg    sql.NullFloat64 `db:"home_shots_accuracy_avg"`
	AwayShotsAccuracyAvg    sql.NullFloat64 `db:"away_shots_accuracy_avg"`
	HomeDangerousAttacksAvg sql.NullFloat64 `db:"home_dangerous_attacks_avg"`
	AwayDangerousAttacksAvg sql.NullFloat64 `db:"away_dangerous_attacks_avg"`

	// Head to head and league context
	H2HTotalGoalsAvg sql.NullFloat64 `db:"h2h_total_goals_avg"`
	LeagueAvgGoals   sql.NullFloat64 `db:"league_avg_goals"`

	// Ratings
	HomeElo sql.NullFloat64 `db:"home_elo"`
	AwayElo sql.NullFloat64 `db:"away_elo"`
	EloDiff sql.NullFloat64 `db:"elo_diff"`

	// Market probabilities and potentials
	OddsFT1Prob   sql.NullFloat64 `db:"odds_ft_1_prob"`
	OddsFT2Prob   sql.NullFloat64 `db:"odds_ft_2_prob"`
	BTTSPotential sql.NullFloat64 `db:"btts_potential"`
	O05Potential  sql.NullFloat64 `db:"o05_potential"`
	O15Potential  sql.NullFloat64 `db:"o15_potential"`
	O25Potential  sql.NullFloat64 `db:"o25_potential"`
	O35Potential  sql.NullFloat64 `db:"o35_potential"`
	O45Potential  sql.NullFloat64 `db:"o45_potential"`
}
