package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "cncsignals/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	AnalysisHandler *AnalysisHandler
	HistoryHandler  *HistoryHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for polling endpoints to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/analysis/news"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "cncsignals-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// Analysis routes. Analyze serves guests too, against the guest quota.
	analysis := api.Group("/analysis", custommiddleware.OptionalAuthMiddleware)
	{
		analysis.POST("/analyze", config.AnalysisHandler.Analyze)
		analysis.POST("/backtest", config.AnalysisHandler.Backtest)
		analysis.POST("/chat", config.AnalysisHandler.Chat)
		analysis.GET("/news", config.AnalysisHandler.News)
		analysis.POST("/risk", config.AnalysisHandler.Risk)
	}

	// User routes (protected with AuthMiddleware)
	user := api.Group("/user", custommiddleware.AuthMiddleware)
	{
		user.GET("/me", config.UserHandler.GetMe)
		user.PUT("/profile", config.UserHandler.UpdateProfile)
		user.POST("/verify", config.UserHandler.Verify)
		user.POST("/upgrade", config.UserHandler.Upgrade)
		user.POST("/avatar", config.UserHandler.GenerateAvatar)
		user.DELETE("/account", config.UserHandler.DeleteAccount)
		user.GET("/usage", config.UserHandler.GetUsage)
	}

	// History routes (protected, VIP enforced in the handler)
	api.GET("/history", config.HistoryHandler.List, custommiddleware.AuthMiddleware)
}
