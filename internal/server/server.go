// Package server exposes the schema operations as a JSON HTTP API for a
// browser front end.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tordrt/schemasketch/internal/config"
)

// NewServer builds the HTTP server for cfg
func NewServer(cfg *config.Config, logger *slog.Logger) *http.Server {
	gin.SetMode(cfg.Server.Mode)

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      NewRouter(cfg, logger),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewRouter wires middleware and routes onto a gin engine
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), limitBody(cfg.Server.MaxBodyBytes))

	RegisterRoutes(router, NewSchemaHandler(logger))
	return router
}

// RegisterRoutes mounts every endpoint under /api/v1
func RegisterRoutes(router *gin.Engine, h *SchemaHandler) {
	api := router.Group("/api/v1")
	{
		api.POST("/generate", h.Generate)
		api.POST("/roundtrip", h.RoundTrip)
		api.POST("/extract", h.Extract)
		api.POST("/layout", h.Layout)
		api.POST("/render", h.Render)
		api.POST("/idea", h.Idea)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
