package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds the HTTP layer configuration
type Config struct {
	MaxFileSize     int64
	TempDir         string
	OutputRetention time.Duration
	// Backend is reported by the health check
	Backend string
}

// SetupRoutes registers the API on r
func SetupRoutes(r *gin.Engine, h *Handler) {
	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/compress", h.HandleCompress)
		apiGroup.POST("/analyze", h.HandleAnalyze)
		apiGroup.GET("/download/:id/:name", h.HandleDownload)
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "pdf_compressor",
			"optimizer": h.config.Backend,
		})
	})
}
