// Package main provides the Convo chat bot entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/buildinfo"
	"github.com/sourcehf/convo/internal/config"
	"github.com/sourcehf/convo/internal/convo"
	"github.com/sourcehf/convo/internal/fetch"
	"github.com/sourcehf/convo/internal/genai"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/metrics"
	aimod "github.com/sourcehf/convo/internal/modules/ai"
	helpmod "github.com/sourcehf/convo/internal/modules/help"
	sportsmod "github.com/sourcehf/convo/internal/modules/sports"
	videomod "github.com/sourcehf/convo/internal/modules/video"
	"github.com/sourcehf/convo/internal/sentry"
	"github.com/sourcehf/convo/internal/sports"
	"github.com/sourcehf/convo/internal/userstate"
	"github.com/sourcehf/convo/internal/video"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger (optionally shipping to Better Stack)
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.WithField("version", buildinfo.Version).Info("Starting Convo bot")

	// Initialize error tracking (no-op without a token)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Error tracking disabled")
	}

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Per-user state: rate limits, cooldowns, in-flight locks
	state := userstate.NewManager(userstate.Config{
		MaxRequests: cfg.Bot.RateLimitMaxRequests,
		Window:      cfg.Bot.RateLimitWindow,
		Cooldowns: map[userstate.ActionType]time.Duration{
			userstate.ActionGeneral:  cfg.Bot.GeneralCooldown,
			userstate.ActionVideo:    cfg.Bot.VideoCooldown,
			userstate.ActionCommands: cfg.Bot.CommandsCooldown,
			userstate.ActionSports:   cfg.Bot.SportsCooldown,
		},
	})
	defer state.Stop()
	state.OnUpdate(m.SetActiveUsers)

	// Shared HTTP client for all read-only JSON APIs
	fetchClient := fetch.NewClient(config.FetchRequest, 2)
	fetchClient.SetMetrics(m)

	// AI providers: Gemini primary, Groq fallback; config guarantees at
	// least one key is present
	ctx := context.Background()
	gemini, err := genai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Gemini client")
	}
	groq, err := genai.NewGroq(ctx, cfg.GroqAPIKey, cfg.GroqModel)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Groq client")
	}
	responder, err := genai.NewFallback(log, gemini, groq)
	if err != nil {
		log.WithError(err).Fatal("No AI provider configured")
	}
	log.WithField("fallback", cfg.HasFallbackProvider()).Info("AI providers ready")

	// Chat transport
	chat := convo.NewClient(cfg.ConvoWSURL, log, m)

	// Sports aggregation pipeline
	aggregator := sports.NewAggregator(
		sports.NewESPNClient(fetchClient),
		sports.NewOddsClient(fetchClient, cfg.OddsAPIKey),
		log,
	)
	aggregator.MaxGames = cfg.Bot.MaxGamesPerReport
	aggregator.UpcomingWindow = cfg.Bot.UpcomingWindow

	// Command router and handlers
	router := bot.NewRouter(state, chat, log, m, cfg.CommandPrefix)
	router.Register(aimod.NewHandler(state, responder, chat, log, m, cfg.Bot.MaxPromptLength))
	router.Register(videomod.NewHandler(state, video.NewSearcher(fetchClient, cfg.YouTubeAPIKey), chat, log, m))
	router.Register(sportsmod.NewHandler(state, aggregator, chat, m))
	router.Register(helpmod.NewHandler(state, chat, m))
	chat.OnMessage(router.Dispatch)

	// Admin HTTP server: health, readiness, metrics
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), securityHeadersMiddleware(), loggingMiddleware(log))
	setupRoutes(engine, chat, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  config.AdminHTTPRead,
		WriteTimeout: config.AdminHTTPWrite,
		IdleTimeout:  config.AdminHTTPIdle,
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chat connection loop
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := chat.Run(runCtx); err != nil {
			log.WithError(err).Fatal("Chat connection failed")
		}
	}()

	// Admin server
	go func() {
		log.WithField("port", cfg.Port).Info("Admin server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start admin server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	cancel()
	if err := chat.Close(); err != nil {
		log.WithError(err).Error("Failed to close chat connection")
	}

	// Wait for the connection loop (with timeout)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for chat connection to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Admin server forced to shutdown")
	}

	sentry.Flush(config.SentryFlush)
	log.Info("Bot stopped")
}
