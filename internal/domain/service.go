package domain

import "context"

// AnalysisService defines the interface to the generative analysis provider.
// Provider failures never mutate ledger state.
type AnalysisService interface {
	// Analyze generates a trading signal for pair on timeframe. imageBase64,
	// when non-empty, is a base64-encoded PNG chart screenshot.
	Analyze(ctx context.Context, pair, timeframe, imageBase64 string) (*MarketAnalysis, error)

	// Backtest simulates a strategy run over a date range.
	Backtest(ctx context.Context, pair, timeframe, strategy, startDate, endDate string) (*BacktestReport, error)

	// Chat answers a support-assistant message.
	Chat(ctx context.Context, message string) (string, error)

	// GenerateAvatar renders a profile avatar from a free-text description
	// and returns it as a PNG data URL.
	GenerateAvatar(ctx context.Context, description string) (string, error)

	// MarketNews returns the dashboard headline feed.
	MarketNews(ctx context.Context) ([]NewsItem, error)
}
