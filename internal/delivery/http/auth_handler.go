package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cncsignals/internal/delivery/http/dto"
	"cncsignals/internal/domain"
	"cncsignals/internal/middleware"
	"cncsignals/internal/usecase"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	sessions *usecase.SessionService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *usecase.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		return BadRequestResponse(c, "Email, name and password are required")
	}
	if len(req.Password) < 6 {
		return BadRequestResponse(c, "Password must be at least 6 characters")
	}

	user, err := h.sessions.Register(req.Email, req.Name, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return ConflictResponse(c, "Email is already registered")
		}
		return InternalServerErrorResponse(c, "Failed to register", err)
	}

	token, err := middleware.GenerateJWT(user.Email, user.IsVip)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}
	setTokenCookie(c, token, 86400)

	return CreatedResponse(c, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserOutput(user),
	})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	if req.Email == "" || req.Password == "" {
		return BadRequestResponse(c, "Email and password are required")
	}

	user, err := h.sessions.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return UnauthorizedResponse(c, "Invalid credentials")
		}
		return InternalServerErrorResponse(c, "Failed to login", err)
	}

	token, err := middleware.GenerateJWT(user.Email, user.IsVip)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}
	setTokenCookie(c, token, 86400)

	return SuccessResponse(c, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserOutput(user),
	})
}

// Logout clears the active session
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(); err != nil {
		return InternalServerErrorResponse(c, "Failed to logout", err)
	}
	setTokenCookie(c, "", -1)
	return SuccessResponse(c, map[string]string{"message": "Logged out"})
}

func setTokenCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}
