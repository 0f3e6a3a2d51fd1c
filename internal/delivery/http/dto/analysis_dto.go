package dto

// AnalyzeRequest represents the analysis payload
type AnalyzeRequest struct {
	Pair        string `json:"pair" validate:"required"`
	Timeframe   string `json:"timeframe" validate:"required"`
	ImageBase64 string `json:"imageBase64,omitempty"` // optional PNG chart screenshot
}

// BacktestRequest represents the backtest simulation payload
type BacktestRequest struct {
	Pair      string `json:"pair" validate:"required"`
	Timeframe string `json:"timeframe" validate:"required"`
	Strategy  string `json:"strategy" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

// ChatRequest represents the support assistant payload
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse carries the assistant reply
type ChatResponse struct {
	Reply string `json:"reply"`
}
