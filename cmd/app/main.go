package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"cncsignals/configs"
	"cncsignals/internal/adapter"
	delivery "cncsignals/internal/delivery/http"
	"cncsignals/internal/infra"
	"cncsignals/internal/logging"
	"cncsignals/internal/repository"
	"cncsignals/internal/storage"
	"cncsignals/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()
	logging.Setup(cfg.Server.Env, cfg.Log.File)

	ctx := context.Background()

	// Initialize the persistence layer
	store, fileStore, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	historyRepo := repository.NewHistoryRepository(store)
	guestRepo := repository.NewGuestRepository(store)

	// Initialize ledger services
	sessionService := usecase.NewSessionService(userRepo, sessionRepo, historyRepo, time.Now)
	historyService := usecase.NewHistoryService(historyRepo, sessionService)
	usageService := usecase.NewUsageService(sessionService, guestRepo, cfg.Quota.FreeDailyLimit, time.Now)

	// Restore a persisted session, applying the daily reset
	if err := sessionService.Restore(); err != nil {
		slog.Error("failed to restore session", "error", err)
		os.Exit(1)
	}

	// Initialize the analysis provider
	provider, err := adapter.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		slog.Error("failed to initialize analysis provider", "error", err)
		os.Exit(1)
	}
	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, analysis calls will fail until it is configured")
	}

	// Start maintenance jobs
	backupDir := cfg.Store.DataDir + "/backups"
	scheduler := infra.NewScheduler(sessionService, snapshotterOrNil(fileStore), backupDir)
	if err := scheduler.Start(); err != nil {
		slog.Error("failed to start maintenance scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Initialize the API server
	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:     delivery.NewAuthHandler(sessionService),
		UserHandler:     delivery.NewUserHandler(sessionService, usageService, provider, cfg.Quota.FreeDailyLimit),
		AnalysisHandler: delivery.NewAnalysisHandler(provider, sessionService, usageService, historyService),
		HistoryHandler:  delivery.NewHistoryHandler(sessionService, historyService),
	})

	// Ops listener: health and store introspection on a separate port
	ops := newOpsRouter(store)
	opsSrv := &http.Server{
		Addr:         ":" + cfg.Server.OpsPort,
		Handler:      ops,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ops server failed", "error", err)
		}
	}()

	slog.Info("cncsignals starting",
		"port", cfg.Server.Port,
		"ops_port", cfg.Server.OpsPort,
		"env", cfg.Server.Env,
		"store", cfg.Store.Driver,
		"daily_limit", cfg.Quota.FreeDailyLimit)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("ops server forced shutdown", "error", err)
	}

	slog.Info("server exited gracefully")
}

// newStore builds the configured store driver. The file store is returned
// separately so the scheduler can snapshot it.
func newStore(ctx context.Context, cfg *configs.Config) (storage.Store, *storage.FileStore, error) {
	switch cfg.Store.Driver {
	case configs.StoreDriverPostgres:
		pool, err := infra.NewDatabase(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewPostgresStore(ctx, pool)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case configs.StoreDriverFile:
		store, err := storage.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func snapshotterOrNil(fs *storage.FileStore) infra.Snapshotter {
	if fs == nil {
		return nil
	}
	return fs
}

// newOpsRouter serves health and store introspection for operators.
func newOpsRouter(store storage.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Timeout(5 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"service":   "cncsignals-ops",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.Get("/ops/store", func(w http.ResponseWriter, _ *http.Request) {
		keys, err := store.Keys()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"keys":  keys,
			"count": len(keys),
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
