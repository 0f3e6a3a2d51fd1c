package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cncsignals/internal/domain"
)

func analysisEntry(pair string, confidence float64, ratio string) domain.MarketAnalysis {
	return domain.MarketAnalysis{
		Pair:            pair,
		Timeframe:       "H1",
		Signal:          domain.SignalBuy,
		Confidence:      confidence,
		RiskRewardRatio: ratio,
		Timestamp:       time.Now().UnixMilli(),
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	require.Equal(t, *domain.ZeroStats(), stats)

	stats = ComputeStats([]domain.MarketAnalysis{})
	require.Equal(t, "0:0", stats.AverageRiskReward)
	require.Equal(t, "-", stats.BestPair)
	require.Zero(t, stats.TotalTrades)
}

func TestComputeStats_Mixed(t *testing.T) {
	history := []domain.MarketAnalysis{
		analysisEntry("EUR/USD", 80, "1:2"),
		analysisEntry("EUR/USD", 70, "1:3"),
		analysisEntry("GBP/JPY", 60, "1:2"),
	}

	stats := ComputeStats(history)

	// One entry above the win threshold of 75.
	assert.Equal(t, 3, stats.TotalTrades)
	assert.InDelta(t, 33.3, stats.WinRate, 0.001)
	assert.InDelta(t, 1.2, stats.ProfitFactor, 0.001)
	// 3*125 - 2*75
	assert.InDelta(t, 225, stats.NetPnL, 0.001)
	// mean(2, 3, 2) = 2.333... rendered to one decimal
	assert.Equal(t, "1:2.3", stats.AverageRiskReward)
	assert.Equal(t, "EUR/USD", stats.BestPair)
}

func TestComputeStats_AllWins(t *testing.T) {
	history := []domain.MarketAnalysis{
		analysisEntry("XAU/USD", 90, "1:2"),
		analysisEntry("XAU/USD", 88, "1:4"),
	}

	stats := ComputeStats(history)

	assert.InDelta(t, 100, stats.WinRate, 0.001)
	assert.InDelta(t, 1.3, stats.ProfitFactor, 0.001)
	assert.InDelta(t, 250, stats.NetPnL, 0.001)
	assert.Equal(t, "1:3.0", stats.AverageRiskReward)
}

func TestComputeStats_ConfidenceExactlyAtThresholdIsNotAWin(t *testing.T) {
	stats := ComputeStats([]domain.MarketAnalysis{
		analysisEntry("EUR/USD", 75, "1:2"),
	})

	assert.InDelta(t, 0, stats.WinRate, 0.001)
	// 1*125 - 1*75
	assert.InDelta(t, 50, stats.NetPnL, 0.001)
}

func TestComputeStats_MalformedRatioDefaultsToTwo(t *testing.T) {
	tests := []struct {
		name  string
		ratio string
	}{
		{"empty", ""},
		{"no separator", "2.5"},
		{"garbage reward", "1:abc"},
		{"trailing separator", "1:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStats([]domain.MarketAnalysis{
				analysisEntry("EUR/USD", 80, tt.ratio),
			})
			assert.Equal(t, "1:2.0", stats.AverageRiskReward)
		})
	}
}

func TestComputeStats_BestPairTieBreaksToFirstSeen(t *testing.T) {
	history := []domain.MarketAnalysis{
		analysisEntry("GBP/USD", 50, "1:2"),
		analysisEntry("EUR/USD", 50, "1:2"),
		analysisEntry("EUR/USD", 50, "1:2"),
		analysisEntry("GBP/USD", 50, "1:2"),
	}

	stats := ComputeStats(history)
	assert.Equal(t, "GBP/USD", stats.BestPair)
}

func TestComputeStats_WinRateRoundsToOneDecimal(t *testing.T) {
	history := []domain.MarketAnalysis{
		analysisEntry("EUR/USD", 80, "1:2"),
		analysisEntry("EUR/USD", 80, "1:2"),
		analysisEntry("EUR/USD", 60, "1:2"),
	}

	stats := ComputeStats(history)
	// 2/3 = 66.666... rounds to 66.7, not 66.66666666666667.
	assert.Equal(t, 66.7, stats.WinRate)
}
