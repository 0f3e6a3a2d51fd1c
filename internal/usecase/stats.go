package usecase

import (
	"math"
	"strconv"
	"strings"

	"cncsignals/internal/domain"
)

// winConfidence is the confidence threshold above which an analysis counts
// as a win for the derived stats.
const winConfidence = 75

// ComputeStats derives TradingStats from a history snapshot. It is a pure
// function: the same history always yields the same stats, and the result is
// recomputed from scratch on every history change rather than patched.
//
// profitFactor and netPnL are heuristic display metrics derived from the
// trade and win counts, not real P&L.
func ComputeStats(history []domain.MarketAnalysis) domain.TradingStats {
	total := len(history)
	if total == 0 {
		return *domain.ZeroStats()
	}

	wins := 0
	for _, h := range history {
		if h.Confidence > winConfidence {
			wins++
		}
	}

	return domain.TradingStats{
		TotalTrades:       total,
		WinRate:           round1(float64(wins) / float64(total) * 100),
		ProfitFactor:      1.1 + float64(wins)*0.1,
		NetPnL:            float64(total)*125 - float64(total-wins)*75,
		AverageRiskReward: "1:" + strconv.FormatFloat(round1(averageReward(history)), 'f', 1, 64),
		BestPair:          bestPair(history),
	}
}

// bestPair returns the pair with the most entries. Ties go to the pair seen
// first in the sequence.
func bestPair(history []domain.MarketAnalysis) string {
	counts := make(map[string]int, len(history))
	order := make([]string, 0, len(history))
	for _, h := range history {
		if _, seen := counts[h.Pair]; !seen {
			order = append(order, h.Pair)
		}
		counts[h.Pair]++
	}

	best, bestCount := "-", 0
	for _, pair := range order {
		if counts[pair] > bestCount {
			best, bestCount = pair, counts[pair]
		}
	}
	return best
}

// averageReward is the arithmetic mean of each entry's reward component,
// parsed from its "risk:reward" string. A malformed ratio contributes the
// default reward of 2.
func averageReward(history []domain.MarketAnalysis) float64 {
	sum := 0.0
	for _, h := range history {
		sum += rewardComponent(h.RiskRewardRatio)
	}
	return sum / float64(len(history))
}

func rewardComponent(ratio string) float64 {
	parts := strings.Split(ratio, ":")
	if len(parts) != 2 {
		return 2
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 2
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
