// Package main provides the recipe bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/yumekitchen/recipe-linebot-go/internal/bot"
	"github.com/yumekitchen/recipe-linebot-go/internal/buildinfo"
	"github.com/yumekitchen/recipe-linebot-go/internal/completion"
	"github.com/yumekitchen/recipe-linebot-go/internal/config"
	"github.com/yumekitchen/recipe-linebot-go/internal/logger"
	"github.com/yumekitchen/recipe-linebot-go/internal/metrics"
	"github.com/yumekitchen/recipe-linebot-go/internal/quota"
	"github.com/yumekitchen/recipe-linebot-go/internal/recipe"
	"github.com/yumekitchen/recipe-linebot-go/internal/sentry"
	"github.com/yumekitchen/recipe-linebot-go/internal/session"
	"github.com/yumekitchen/recipe-linebot-go/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.WithField("version", buildinfo.Version).
		WithField("commit", buildinfo.Commit).
		Info("Starting Recipe LineBot Server")

	// Initialize error tracking (optional - requires Better Stack token)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Fatal("Failed to initialize error tracking")
	}
	if sentry.IsEnabled() {
		log.Info("Error tracking enabled")
	}

	// Create Prometheus registry
	registry := prometheus.NewRegistry()

	// Register Go and process collectors
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	// Create metrics
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create completion client
	completer := completion.NewClient(completion.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	log.WithField("model", cfg.OpenAIModel).Info("Completion client created")

	// Create session store
	var sessions session.Store
	var redisClient *redis.Client
	switch cfg.Bot.SessionBackend {
	case config.SessionBackendRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Bot.RedisAddr,
			Password: cfg.Bot.RedisPassword,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		sessions = session.NewRedisStore(redisClient, session.RedisConfig{TTL: cfg.Bot.SessionTTL})
		log.WithField("addr", cfg.Bot.RedisAddr).Info("Redis session store connected")
	default:
		sessions = session.NewMemoryStore(session.MemoryConfig{
			TTL:     cfg.Bot.SessionTTL,
			Metrics: m,
		})
		log.Info("In-memory session store created")
	}

	// Create daily quota tracker
	tracker := quota.NewTracker(quota.Config{
		Limit:    cfg.Bot.DailyQuota,
		Location: cfg.Bot.QuotaLocation,
		Metrics:  m,
	})
	log.WithField("daily_quota", cfg.Bot.DailyQuota).
		WithField("timezone", cfg.Bot.QuotaLocation.String()).
		Info("Quota tracker created")

	// Create LINE messaging client
	lineClient, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to create LINE messaging client")
	}

	headerStyle := recipe.HeaderDigit
	if cfg.Bot.HeaderStyle == config.HeaderStyleOrdinal {
		headerStyle = recipe.HeaderOrdinal
	}

	// Create bot handler
	botHandler := bot.NewHandler(bot.HandlerConfig{
		Sessions:              sessions,
		Quota:                 tracker,
		Completer:             completer,
		Sender:                webhook.NewLineSender(lineClient, cfg.Bot.MinReplyTokenLength),
		Metrics:               m,
		Logger:                log,
		HeaderStyle:           headerStyle,
		SlowResponseThreshold: cfg.Bot.SlowResponseThreshold,
	})

	// Create webhook handler
	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret:       cfg.LineChannelSecret,
		Client:              lineClient,
		Bot:                 botHandler,
		Metrics:             m,
		Logger:              log,
		Workers:             cfg.Bot.WebhookWorkers,
		MaxEventsPerWebhook: cfg.Bot.MaxEventsPerWebhook,
	})
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}

	// Setup routes
	setupRoutes(router, webhookHandler, redisClient, registry, cfg)

	// Create HTTP server with timeouts optimized for LINE webhook handling
	// See internal/config/timeouts.go for detailed explanations
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new webhooks, then drain in-flight events
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for in-flight events")
	}

	// Release backends
	if err := sessions.Close(); err != nil {
		log.WithError(err).Error("Failed to close session store")
	}
	tracker.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis client")
		}
	}
	sentry.Flush(2 * time.Second)

	log.Info("Server stopped")
}
