package scoring

import "github.com/shopspring/decimal"

// SettlementLine is the goal line every totals prediction settles against,
// regardless of the line quoted in the prediction label.
const SettlementLine = 2.5

// ActualWinner derives the moneyline result from final goals.
func ActualWinner(homeGoals, awayGoals float64) Side {
	switch {
	case homeGoals > awayGoals:
		return SideHome
	case awayGoals > homeGoals:
		return SideAway
	}
	return SideDraw
}

// ActualTotalsSide derives the over/under result from final goals. A total
// landing exactly on the line counts as Under.
func ActualTotalsSide(homeGoals, awayGoals float64) Side {
	if homeGoals+awayGoals > SettlementLine {
		return SideOver
	}
	return SideUnder
}

// SettleProfit computes per-unit profit for one settled prediction. A correct
// call pays odds-1, rounded half to even at two decimals. A wrong call loses
// the unit stake, -1, whatever the odds. A prediction whose side cannot be
// determined, or a correct call with no usable odds, settles as a push at 0.
func SettleProfit(predicted, actual Side, odds float64) float64 {
	if predicted == SideUnknown || actual == SideUnknown {
		return 0
	}
	if predicted != actual {
		return -1.0
	}
	if odds <= 0 {
		return 0
	}
	return decimal.NewFromFloat(odds - 1).RoundBank(2).InexactFloat64()
}
