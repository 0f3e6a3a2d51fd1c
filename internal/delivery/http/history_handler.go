package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"cncsignals/internal/usecase"
)

// HistoryHandler serves the VIP analysis history
type HistoryHandler struct {
	sessions *usecase.SessionService
	history  *usecase.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(sessions *usecase.SessionService, history *usecase.HistoryService) *HistoryHandler {
	return &HistoryHandler{sessions: sessions, history: history}
}

// List returns history entries, newest first, optionally filtered to an
// inclusive [start, end] calendar-day range (query params "2006-01-02").
// GET /api/history?start=&end=
func (h *HistoryHandler) List(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	user, ok := h.sessions.Current()
	if !ok {
		return UnauthorizedResponse(c, "No active session")
	}
	if !user.IsVip {
		return ForbiddenResponse(c, "VIP membership required")
	}

	start, err := parseDay(c.QueryParam("start"))
	if err != nil {
		return BadRequestResponse(c, "Invalid start date, expected YYYY-MM-DD")
	}
	end, err := parseDay(c.QueryParam("end"))
	if err != nil {
		return BadRequestResponse(c, "Invalid end date, expected YYYY-MM-DD")
	}

	return SuccessResponse(c, h.history.List(start, end))
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
