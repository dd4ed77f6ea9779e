// SRT Bank - Banking Demo Server with Conversational Assistant
package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/srt-bank/srtbank/internal/api"
	"github.com/srt-bank/srtbank/internal/auth"
	"github.com/srt-bank/srtbank/internal/catalog"
	"github.com/srt-bank/srtbank/internal/chat"
	"github.com/srt-bank/srtbank/internal/chatlog"
	"github.com/srt-bank/srtbank/internal/config"
	"github.com/srt-bank/srtbank/internal/dialogue"
	"github.com/srt-bank/srtbank/internal/ledger"
	"github.com/srt-bank/srtbank/internal/middleware"
	"github.com/srt-bank/srtbank/internal/nlu"
	"github.com/srt-bank/srtbank/internal/store"
	"github.com/srt-bank/srtbank/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if err := auth.SeedUsers(context.Background(), repo); err != nil {
		slog.Error("Failed to seed demo users", "error", err)
		os.Exit(1)
	}

	// Load the response catalog and seed the reply picker.
	responses, err := catalog.LoadFile(cfg.ResponsesPath)
	if err != nil {
		slog.Error("Failed to load response catalog", "error", err)
		os.Exit(1)
	}
	picker := catalog.NewPicker(responses, rand.New(rand.NewSource(time.Now().UnixNano())))
	slog.Info("Response catalog loaded", "intents", len(responses.Intents()))

	// The demo ledger lives in memory for the process lifetime.
	accounts := ledger.NewFixture()

	// Initialize NLU sidecar gRPC client (optional).
	nluAddr := os.Getenv("NLU_ADDR")
	var classifier nlu.Classifier
	var nluHealth api.NluHealthChecker
	if nluAddr != "" {
		slog.Info("Attempting to connect to NLU sidecar via gRPC", "address", nluAddr)
		grpcClient, err := nlu.NewGrpcClient(nluAddr, logger)
		if err != nil {
			slog.Warn("Failed to connect to NLU sidecar, AI features will be disabled", "error", err)
		} else {
			defer grpcClient.Close()
			classifier = grpcClient
			nluHealth = grpcClient
		}
	}
	if classifier == nil {
		slog.Info("AI features disabled (NLU_ADDR not set or connection failed)")
	}

	conversationLog, err := chatlog.New(chatlog.Config{
		Enabled:   cfg.ChatLog.Enabled,
		Dir:       cfg.ChatLog.Dir,
		QueueSize: cfg.ChatLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := conversationLog.Close(); closeErr != nil {
			slog.Warn("Failed to close conversation logger", "error", closeErr)
		}
	}()

	// The dialogue engine is the conversational core; everything it touches
	// is injected.
	engine := dialogue.NewEngine(classifier, picker, accounts, logger)

	// Initialize handlers.
	authHandler := auth.NewHandler(repo, cfg.IsDevelopment())
	bankHandler := api.NewBankHandler(accounts)
	limiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)
	chatHandler := api.NewChatHandler(engine, repo, limiter, conversationLog)
	healthHandler := api.NewHealthHandler(repo, nluHealth)
	wsHandler := chat.NewWebSocketHandler(engine, repo, limiter, conversationLog, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(auth.Middleware(repo, cfg.SessionTTL))

	// Routes.
	healthHandler.RegisterHealth(r)
	authHandler.RegisterRoutes(r)
	bankHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket chat surface.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start session cleanup worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartSessionCleanup(ctx, repo, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
