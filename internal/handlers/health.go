package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/librescript/backend/internal/database"
)

const serviceName = "LibreScript Backend API"

type HealthHandler struct {
	db database.Service
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
	})
}

// Ready reports whether the database answers. A failing database yields 503.
func (h *HealthHandler) Ready(c *gin.Context) {
	stats := h.db.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"timestamp": time.Now().UTC(),
			"database":  stats,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"database":  stats,
	})
}
