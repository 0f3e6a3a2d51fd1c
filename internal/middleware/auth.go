package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTClaims represents the session token claims. Identities are keyed by
// email, matching the user table.
type JWTClaims struct {
	Email string `json:"email"`
	IsVip bool   `json:"is_vip"`
	jwt.RegisteredClaims
}

// GetJWTSecret returns the JWT secret from environment
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "default-secret-change-in-production" // Fallback for development
	}
	return secret
}

// GenerateJWT generates a new session token for an identity.
func GenerateJWT(email string, isVip bool) (string, error) {
	claims := &JWTClaims{
		Email: email,
		IsVip: isVip,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// AuthMiddleware validates the session token and sets the identity context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := claimsFromRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}

		c.Set("email", claims.Email)
		c.Set("is_vip", claims.IsVip)

		return next(c)
	}
}

// OptionalAuthMiddleware sets the identity context when a valid token is
// present but lets anonymous callers through. Used by the analyze endpoint,
// which serves guests against the guest quota.
func OptionalAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := claimsFromRequest(c); err == nil {
			c.Set("email", claims.Email)
			c.Set("is_vip", claims.IsVip)
		}
		return next(c)
	}
}

func claimsFromRequest(c echo.Context) (*JWTClaims, error) {
	// Get token from Authorization header
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		// Try to get from cookie
		cookie, err := c.Cookie("token")
		if err != nil {
			return nil, fmt.Errorf("missing authentication token")
		}
		authHeader = "Bearer " + cookie.Value
	}

	// Extract token from Bearer scheme
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(GetJWTSecret()), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// GetEmail extracts the authenticated email from echo context.
func GetEmail(c echo.Context) (string, error) {
	email, ok := c.Get("email").(string)
	if !ok || email == "" {
		return "", fmt.Errorf("email not found in context")
	}
	return email, nil
}

// IsAuthenticated reports whether the request carried a valid token.
func IsAuthenticated(c echo.Context) bool {
	email, ok := c.Get("email").(string)
	return ok && email != ""
}
