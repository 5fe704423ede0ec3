package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness and, when Ready is set, whether the
// database answers within two seconds.
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code, database := "ok", http.StatusOK, "up"

	if h.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.Ready(ctx); err != nil {
			log.Printf("Health check: database unreachable: %v", err)
			status, code, database = "degraded", http.StatusServiceUnavailable, "down"
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
