package domain

// SignalType constants
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalWait = "WAIT"
)

// Indicators holds the indicator snapshot attached to an analysis.
type Indicators struct {
	RSI   float64 `json:"rsi"`
	MACD  string  `json:"macd"`
	Trend string  `json:"trend"`
}

// MarketAnalysis is one immutable analysis result. Entries are ordered
// newest first in the history log and keyed implicitly by timestamp.
type MarketAnalysis struct {
	Pair            string     `json:"pair"`
	Timeframe       string     `json:"timeframe"`
	Signal          string     `json:"signal"`
	EntryPrice      float64    `json:"entryPrice"`
	StopLoss        float64    `json:"stopLoss"`
	TakeProfit      []float64  `json:"takeProfit"`
	RiskRewardRatio string     `json:"riskRewardRatio"`
	Confidence      float64    `json:"confidence"`
	Confluences     []string   `json:"confluences"`
	Reasoning       string     `json:"reasoning"`
	Indicators      Indicators `json:"indicators"`
	Timestamp       int64      `json:"timestamp"` // unix milliseconds
}

// EquityPoint is one point of a backtest equity curve.
type EquityPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BacktestReport is the simulated performance report for a strategy run.
type BacktestReport struct {
	NetProfit    float64       `json:"netProfit"`
	WinRate      float64       `json:"winRate"`
	TotalTrades  int           `json:"totalTrades"`
	MaxDrawdown  float64       `json:"maxDrawdown"`
	ProfitFactor float64       `json:"profitFactor"`
	EquityCurve  []EquityPoint `json:"equityCurve"`
	Summary      string        `json:"summary"`
}

// NewsItem is one market headline shown on the dashboard feed.
type NewsItem struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Time   string `json:"time"`
}
