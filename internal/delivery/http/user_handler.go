package http

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"cncsignals/internal/delivery/http/dto"
	"cncsignals/internal/domain"
	"cncsignals/internal/middleware"
	"cncsignals/internal/usecase"
)

// errTokenMismatch rejects a valid token minted for an identity other than
// the server's active session.
var errTokenMismatch = errors.New("token identity does not match the active session")

// ensureTokenOwner checks that the request's token claim, when present,
// names the active identity. A stale token from a previous login must not
// act on another account's session.
func ensureTokenOwner(c echo.Context, sessions *usecase.SessionService) error {
	email, err := middleware.GetEmail(c)
	if err != nil {
		return nil
	}
	user, ok := sessions.Current()
	if !ok || user.Email == email {
		return nil
	}
	return errTokenMismatch
}

// UserHandler handles requests on the active identity
type UserHandler struct {
	sessions *usecase.SessionService
	usage    *usecase.UsageService
	provider domain.AnalysisService
	limit    int
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(sessions *usecase.SessionService, usage *usecase.UsageService, provider domain.AnalysisService, limit int) *UserHandler {
	if limit <= 0 {
		limit = usecase.DefaultDailyLimit
	}
	return &UserHandler{sessions: sessions, usage: usage, provider: provider, limit: limit}
}

// GetMe returns the active identity
// GET /api/user/me
func (h *UserHandler) GetMe(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	user, ok := h.sessions.Current()
	if !ok {
		return UnauthorizedResponse(c, "No active session")
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

// UpdateProfile merges the given profile fields into the identity
// PUT /api/user/profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	user, err := h.sessions.UpdateProfile(domain.ProfileUpdate{
		Name:   req.Name,
		Phone:  req.Phone,
		Avatar: req.Avatar,
		Bio:    req.Bio,
	})
	if err != nil {
		return h.sessionError(c, err, "Failed to update profile")
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

// Verify marks the active identity as verified
// POST /api/user/verify
func (h *UserHandler) Verify(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	user, err := h.sessions.Verify()
	if err != nil {
		return h.sessionError(c, err, "Failed to verify account")
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

// Upgrade grants the active identity VIP membership
// POST /api/user/upgrade
func (h *UserHandler) Upgrade(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	user, err := h.sessions.UpgradeToVip()
	if err != nil {
		return h.sessionError(c, err, "Failed to upgrade")
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

// DeleteAccount removes the identity from the user table and ends the session
// DELETE /api/user/account
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	if err := h.sessions.DeleteAccount(); err != nil {
		return h.sessionError(c, err, "Failed to delete account")
	}
	setTokenCookie(c, "", -1)
	return SuccessResponse(c, map[string]string{"message": "Account deleted"})
}

// GenerateAvatar renders a profile avatar from a description and stores it
// on the active identity. Avatar generation is not charged against the
// daily analysis quota.
// POST /api/user/avatar
func (h *UserHandler) GenerateAvatar(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	if _, ok := h.sessions.Current(); !ok {
		return UnauthorizedResponse(c, "No active session")
	}

	var req dto.AvatarRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if req.Description == "" {
		return BadRequestResponse(c, "Description is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), providerTimeout)
	defer cancel()

	avatar, err := h.provider.GenerateAvatar(ctx, req.Description)
	if err != nil {
		return providerErrorResponse(c, err)
	}

	if _, err := h.sessions.UpdateProfile(domain.ProfileUpdate{Avatar: &avatar}); err != nil {
		return h.sessionError(c, err, "Failed to save avatar")
	}
	return SuccessResponse(c, dto.AvatarResponse{Avatar: avatar})
}

// GetUsage reports today's quota consumption for the caller
// GET /api/user/usage
func (h *UserHandler) GetUsage(c echo.Context) error {
	if err := ensureTokenOwner(c, h.sessions); err != nil {
		return UnauthorizedResponse(c, "Session belongs to a different account")
	}
	current, err := h.usage.CurrentUsage()
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to read usage", err)
	}
	exhausted, err := h.usage.IsExhausted()
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to read usage", err)
	}

	user, _ := h.sessions.Current()
	return SuccessResponse(c, dto.UsageOutput{
		CurrentUsage: current,
		Limit:        h.limit,
		IsExhausted:  exhausted,
		IsVip:        user.IsVip,
	})
}

func (h *UserHandler) sessionError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return UnauthorizedResponse(c, "No active session")
	case errors.Is(err, domain.ErrStaleSession):
		return UnauthorizedResponse(c, "Session expired, please login again")
	default:
		return InternalServerErrorResponse(c, msg, err)
	}
}
