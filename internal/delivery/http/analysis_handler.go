package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cncsignals/internal/delivery/http/dto"
	"cncsignals/internal/domain"
	"cncsignals/internal/usecase"
)

// providerTimeout bounds calls to the analysis provider. Ledger operations
// themselves are synchronous and not subject to it.
const providerTimeout = 120 * time.Second

// AnalysisHandler drives the analyze flow: quota gate, provider call, usage
// charge, history append.
type AnalysisHandler struct {
	provider domain.AnalysisService
	sessions *usecase.SessionService
	usage    *usecase.UsageService
	history  *usecase.HistoryService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(
	provider domain.AnalysisService,
	sessions *usecase.SessionService,
	usage *usecase.UsageService,
	history *usecase.HistoryService,
) *AnalysisHandler {
	return &AnalysisHandler{
		provider: provider,
		sessions: sessions,
		usage:    usage,
		history:  history,
	}
}

// Analyze generates a trading signal. Guests are served against the guest
// quota. The quota is checked before the provider is called: an exhausted
// caller is rejected without ever reaching the provider.
// POST /api/analysis/analyze
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Pair == "" || req.Timeframe == "" {
		return BadRequestResponse(c, "Pair and timeframe are required")
	}

	if err := h.usage.Authorize(); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			return QuotaExceededResponse(c, "Daily limit reached. Login or upgrade to continue.")
		}
		return InternalServerErrorResponse(c, "Failed to check quota", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), providerTimeout)
	defer cancel()

	analysis, err := h.provider.Analyze(ctx, req.Pair, req.Timeframe, req.ImageBase64)
	if err != nil {
		// A failed provider call leaves the ledger untouched.
		return providerErrorResponse(c, err)
	}

	if err := h.usage.RecordUsage(); err != nil {
		return InternalServerErrorResponse(c, "Failed to record usage", err)
	}
	if err := h.history.Append(*analysis); err != nil {
		return InternalServerErrorResponse(c, "Failed to record history", err)
	}

	return SuccessResponse(c, analysis)
}

// Backtest simulates a strategy run. VIP only.
// POST /api/analysis/backtest
func (h *AnalysisHandler) Backtest(c echo.Context) error {
	if err := h.requireVip(); err != nil {
		return ForbiddenResponse(c, "VIP membership required")
	}

	var req dto.BacktestRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Pair == "" || req.Timeframe == "" || req.Strategy == "" {
		return BadRequestResponse(c, "Pair, timeframe and strategy are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), providerTimeout)
	defer cancel()

	report, err := h.provider.Backtest(ctx, req.Pair, req.Timeframe, req.Strategy, req.StartDate, req.EndDate)
	if err != nil {
		return providerErrorResponse(c, err)
	}
	return SuccessResponse(c, report)
}

// Chat answers a support-assistant message.
// POST /api/analysis/chat
func (h *AnalysisHandler) Chat(c echo.Context) error {
	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Message == "" {
		return BadRequestResponse(c, "Message is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), providerTimeout)
	defer cancel()

	reply, err := h.provider.Chat(ctx, req.Message)
	if err != nil {
		return providerErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.ChatResponse{Reply: reply})
}

// News returns the dashboard headline feed.
// GET /api/analysis/news
func (h *AnalysisHandler) News(c echo.Context) error {
	news, err := h.provider.MarketNews(c.Request().Context())
	if err != nil {
		return providerErrorResponse(c, err)
	}
	return SuccessResponse(c, news)
}

// Risk computes a position risk profile. VIP only.
// POST /api/analysis/risk
func (h *AnalysisHandler) Risk(c echo.Context) error {
	if err := h.requireVip(); err != nil {
		return ForbiddenResponse(c, "VIP membership required")
	}

	var req usecase.RiskInput
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	return SuccessResponse(c, usecase.CalculatePosition(req))
}

func (h *AnalysisHandler) requireVip() error {
	user, ok := h.sessions.Current()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	if !user.IsVip {
		return domain.ErrVipRequired
	}
	return nil
}

// providerErrorResponse maps the provider taxonomy onto HTTP statuses. These
// surface as user-facing toasts in the UI layer.
func providerErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return ErrorResponse(c, http.StatusInternalServerError, "Analysis provider is not configured", nil)
	case errors.Is(err, domain.ErrInvalidCredential):
		return ErrorResponse(c, http.StatusInternalServerError, "Analysis provider rejected the credential", nil)
	case errors.Is(err, domain.ErrRateLimited):
		return ErrorResponse(c, http.StatusServiceUnavailable, "Analysis provider rate limit exceeded, try again later", nil)
	case errors.Is(err, domain.ErrServiceUnavailable):
		return ErrorResponse(c, http.StatusServiceUnavailable, "Analysis provider is unavailable", nil)
	case errors.Is(err, domain.ErrEmptyResult):
		return BadGatewayResponse(c, "Analysis provider returned an empty result")
	case errors.Is(err, domain.ErrNetwork):
		return BadGatewayResponse(c, "Could not reach the analysis provider")
	default:
		return BadGatewayResponse(c, "Analysis request failed")
	}
}
