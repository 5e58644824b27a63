// Package main provides the Convo chat bot entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sourcehf/convo/internal/buildinfo"
	"github.com/sourcehf/convo/internal/convo"
)

// setupRoutes configures the admin HTTP routes.
func setupRoutes(router *gin.Engine, chat *convo.Client, registry *prometheus.Registry) {
	// Liveness probe: the process is up. Never checks dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe: the bot can actually serve, i.e. the chat websocket
	// is connected. During a reconnect backoff this reports unavailable.
	readyHandler := func(c *gin.Context) {
		if !chat.Connected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "chat connection down",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"chat":   "connected",
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
