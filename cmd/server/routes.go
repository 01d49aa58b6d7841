// Package main provides the recipe bot server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yumekitchen/recipe-linebot-go/internal/config"
	"github.com/yumekitchen/recipe-linebot-go/internal/webhook"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, webhookHandler *webhook.Handler, redisClient *redis.Client, registry *prometheus.Registry, cfg *config.Config) {
	// Root endpoint - redirect to GitHub
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/yumekitchen/recipe-linebot-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic.
	// The in-memory backend has nothing to probe; the redis backend must answer.
	readyHandler := func(c *gin.Context) {
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"reason": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":          "ready",
			"session_backend": cfg.Bot.SessionBackend,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// LINE webhook callback endpoint
	router.POST("/callback", webhookHandler.Handle)

	// Prometheus metrics endpoint (Basic Auth when a password is configured)
	authEnabled := cfg.MetricsPassword != ""
	router.GET("/metrics",
		metricsAuthMiddleware(authEnabled, cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	)
}
