package usecase

import (
	"github.com/shopspring/decimal"
)

// RiskInput describes a prospective position for the risk calculator.
type RiskInput struct {
	LotSize    float64 `json:"lotSize"`
	EntryPrice float64 `json:"entryPrice"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	JPYPair    bool    `json:"jpyPair"`
}

// RiskResult is the computed position risk profile.
type RiskResult struct {
	RiskUSD    float64 `json:"riskUsd"`
	RewardUSD  float64 `json:"rewardUsd"`
	RiskPips   float64 `json:"riskPips"`
	RewardPips float64 `json:"rewardPips"`
	Ratio      float64 `json:"ratio"`
}

// pip value per standard lot in USD.
var pipValuePerLot = decimal.NewFromInt(10)

// CalculatePosition computes pips, dollar risk/reward, and the reward:risk
// ratio for a position. JPY pairs quote to two decimals, so the pip
// multiplier is 100 instead of 10000. Incomplete input (no entry, stop, or
// lot size) yields a zero result.
func CalculatePosition(in RiskInput) RiskResult {
	if in.EntryPrice == 0 || in.StopLoss == 0 || in.LotSize == 0 {
		return RiskResult{}
	}

	multiplier := decimal.NewFromInt(10000)
	if in.JPYPair {
		multiplier = decimal.NewFromInt(100)
	}

	entry := decimal.NewFromFloat(in.EntryPrice)
	stop := decimal.NewFromFloat(in.StopLoss)
	lot := decimal.NewFromFloat(in.LotSize)

	riskPips := entry.Sub(stop).Abs().Mul(multiplier)
	rewardPips := decimal.Zero
	if in.TakeProfit != 0 {
		rewardPips = decimal.NewFromFloat(in.TakeProfit).Sub(entry).Abs().Mul(multiplier)
	}

	valuePerPip := pipValuePerLot.Mul(lot)
	riskUSD := riskPips.Mul(valuePerPip)
	rewardUSD := rewardPips.Mul(valuePerPip)

	ratio := decimal.Zero
	if riskUSD.IsPositive() {
		ratio = rewardUSD.Div(riskUSD)
	}

	return RiskResult{
		RiskUSD:    riskUSD.InexactFloat64(),
		RewardUSD:  rewardUSD.InexactFloat64(),
		RiskPips:   riskPips.InexactFloat64(),
		RewardPips: rewardPips.InexactFloat64(),
		Ratio:      ratio.InexactFloat64(),
	}
}
