package adapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"cncsignals/internal/domain"
)

// Model assignments mirror the provider-side task split: the pro model for
// analysis and backtest reasoning, the flash model for the support chat.
const (
	defaultAnalysisModel = "gemini-3-pro-preview"
	chatModel            = "gemini-3-flash-preview"
	avatarModel          = "gemini-2.5-flash-image"
)

const analysisSystemInstruction = `You are a Tier-1 Institutional FX Analyst specialized in Smart Money Concepts (SMC) and ICT strategies.
Your goal is to provide HIGH-CONFIDENCE trading signals by identifying confluences of:
1. Market Structure (BOS, CHoCH, Market Shift)
2. Liquidity (SSL/BSL sweeps, Equal Highs/Lows)
3. Order Blocks (OB) and Fair Value Gaps (FVG)
4. Discount/Premium zones (Fib 0.5+)

Be conservative. Only assign >80%% confidence if at least 3 high-probability confluences are present.
Analyze %s on the %s timeframe.`

const chatSystemInstruction = "You are CNC Support Assistant. Help users with platform features, trading terminology, and account issues."

// GeminiService implements domain.AnalysisService on the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates the provider. An empty apiKey is allowed: the
// client stays nil and every call fails with ErrMissingCredential, so the
// ledger keeps working without provider access.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if model == "" {
		model = defaultAnalysisModel
	}
	s := &GeminiService{model: model}
	if apiKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	s.client = client
	return s, nil
}

// analysisResponse is the provider-side JSON shape for Analyze.
type analysisResponse struct {
	Signal          string             `json:"signal"`
	EntryPrice      float64            `json:"entryPrice"`
	StopLoss        float64            `json:"stopLoss"`
	TakeProfit      []float64          `json:"takeProfit"`
	RiskRewardRatio string             `json:"riskRewardRatio"`
	Confidence      float64            `json:"confidence"`
	Confluences     []string           `json:"confluences"`
	Reasoning       string             `json:"reasoning"`
	Indicators      *domain.Indicators `json:"indicators"`
}

// Analyze generates a trading signal for pair on timeframe.
func (s *GeminiService) Analyze(ctx context.Context, pair, timeframe, imageBase64 string) (*domain.MarketAnalysis, error) {
	if s.client == nil {
		return nil, domain.ErrMissingCredential
	}

	var contents []*genai.Content
	if imageBase64 != "" {
		img, err := base64.StdEncoding.DecodeString(imageBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid chart image: %w", err)
		}
		contents = []*genai.Content{{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: img}},
			{Text: fmt.Sprintf("Analyze this chart for %s on %s. Look for liquidity sweeps and Order Blocks.", pair, timeframe)},
		}}}
	} else {
		contents = genai.Text(fmt.Sprintf(
			"Perform a deep technical analysis for %s on %s. Provide the most accurate signal possible based on institutional price action.",
			pair, timeframe))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			{Text: fmt.Sprintf(analysisSystemInstruction, pair, timeframe)},
		}},
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		ThinkingConfig:   &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](4000)},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, domain.ErrEmptyResult
	}

	var data analysisResponse
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	return buildAnalysis(pair, timeframe, data), nil
}

// buildAnalysis fills provider omissions with the documented defaults.
func buildAnalysis(pair, timeframe string, data analysisResponse) *domain.MarketAnalysis {
	a := &domain.MarketAnalysis{
		Pair:            pair,
		Timeframe:       timeframe,
		Signal:          data.Signal,
		EntryPrice:      data.EntryPrice,
		StopLoss:        data.StopLoss,
		TakeProfit:      data.TakeProfit,
		RiskRewardRatio: data.RiskRewardRatio,
		Confidence:      data.Confidence,
		Confluences:     data.Confluences,
		Reasoning:       data.Reasoning,
		Indicators:      domain.Indicators{RSI: 50, MACD: "Neutral", Trend: "Sideways"},
		Timestamp:       time.Now().UnixMilli(),
	}
	if len(a.TakeProfit) == 0 {
		a.TakeProfit = []float64{0, 0, 0}
	}
	if a.RiskRewardRatio == "" {
		a.RiskRewardRatio = "1:2"
	}
	if a.Confluences == nil {
		a.Confluences = []string{}
	}
	if data.Indicators != nil {
		a.Indicators = *data.Indicators
	}
	return a
}

// Backtest simulates a strategy run over a date range.
func (s *GeminiService) Backtest(ctx context.Context, pair, timeframe, strategy, startDate, endDate string) (*domain.BacktestReport, error) {
	if s.client == nil {
		return nil, domain.ErrMissingCredential
	}

	prompt := fmt.Sprintf(`Perform a professional backtest simulation for %s using the %q strategy on the %s timeframe from %s to %s.
Based on general historical market knowledge, generate a realistic performance report with a net profit figure,
win rate (0-100), total trades, max drawdown percentage, profit factor, an equity curve of about 10 points
representing growth over the period, and a summary explaining the results.`,
		pair, strategy, timeframe, startDate, endDate)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   backtestSchema(),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return nil, classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, domain.ErrEmptyResult
	}

	var report domain.BacktestReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	return &report, nil
}

// Chat answers a support-assistant message.
func (s *GeminiService) Chat(ctx context.Context, message string) (string, error) {
	if s.client == nil {
		return "", domain.ErrMissingCredential
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: chatSystemInstruction}}},
	}

	resp, err := s.client.Models.GenerateContent(ctx, chatModel, genai.Text(message), config)
	if err != nil {
		return "", classifyError(err)
	}
	return resp.Text(), nil
}

// GenerateAvatar renders a profile avatar with the image model and returns
// it as a PNG data URL, ready to store in the identity's avatar field.
func (s *GeminiService) GenerateAvatar(ctx context.Context, description string) (string, error) {
	if s.client == nil {
		return "", domain.ErrMissingCredential
	}

	contents := genai.Text("Generate a professional high-tech trading profile avatar: " + description)
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: "1:1"},
	}

	resp, err := s.client.Models.GenerateContent(ctx, avatarModel, contents, config)
	if err != nil {
		return "", classifyError(err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return "data:image/png;base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
			}
		}
	}
	return "", domain.ErrEmptyResult
}

// MarketNews returns the static dashboard headline feed.
func (s *GeminiService) MarketNews(_ context.Context) ([]domain.NewsItem, error) {
	return []domain.NewsItem{
		{Title: "USD/JPY Hits Fresh Highs as Yields Spike", Source: "Bloomberg", Time: "25m ago"},
		{Title: "ECB President Lagarde Speaks on Inflation Outlook", Source: "Reuters", Time: "1h ago"},
		{Title: "Gold (XAU/USD) Rejects $2400 Resistance Level", Source: "FXStreet", Time: "2h ago"},
	}, nil
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"signal":          {Type: genai.TypeString, Enum: []string{domain.SignalBuy, domain.SignalSell, domain.SignalWait}},
			"entryPrice":      {Type: genai.TypeNumber},
			"stopLoss":        {Type: genai.TypeNumber},
			"takeProfit":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeNumber}},
			"riskRewardRatio": {Type: genai.TypeString},
			"confidence":      {Type: genai.TypeNumber, Description: "Confidence level between 0 and 100"},
			"confluences": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "List of technical confluences (e.g. 'FVG fill', 'Liquidity Sweep', 'H4 Trend')",
			},
			"reasoning": {Type: genai.TypeString},
			"indicators": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"rsi":   {Type: genai.TypeNumber},
					"macd":  {Type: genai.TypeString},
					"trend": {Type: genai.TypeString},
				},
			},
		},
		Required: []string{"signal", "entryPrice", "stopLoss", "takeProfit", "confidence", "confluences", "reasoning"},
	}
}

func backtestSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"netProfit":    {Type: genai.TypeNumber},
			"winRate":      {Type: genai.TypeNumber},
			"totalTrades":  {Type: genai.TypeInteger},
			"maxDrawdown":  {Type: genai.TypeNumber},
			"profitFactor": {Type: genai.TypeNumber},
			"equityCurve": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString},
						"value": {Type: genai.TypeNumber},
					},
				},
			},
			"summary": {Type: genai.TypeString},
		},
	}
}

// classifyError maps a raw provider failure onto the domain taxonomy.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classify(apiErr.Code, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	return classify(0, err.Error())
}

// classify is the taxonomy core, kept free of SDK types so it can be tested
// without a live client.
func classify(status int, message string) error {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "api key"), status == 400, status == 401, status == 403:
		return domain.ErrInvalidCredential
	case status == 429, strings.Contains(msg, "quota"), strings.Contains(msg, "limit"):
		return domain.ErrRateLimited
	case status >= 500:
		return domain.ErrServiceUnavailable
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"), strings.Contains(msg, "dial"):
		return domain.ErrNetwork
	default:
		return domain.ErrProvider
	}
}
