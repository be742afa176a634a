// internal/interfaces/http/handlers/health.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Health() error
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	version     string
	environment string
	startedAt   time.Time
	checks      map[string]HealthChecker
}

// NewHealthHandler creates a health handler over the named dependencies
func NewHealthHandler(version, environment string, checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		version:     version,
		environment: environment,
		startedAt:   time.Now(),
		checks:      checks,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     h.version,
		"environment": h.environment,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready handles GET /ready; every dependency must answer
func (h *HealthHandler) Ready(c *gin.Context) {
	results := make(gin.H, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check.Health(); err != nil {
			results[name] = "unavailable"
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"checks":    results,
		"timestamp": time.Now().UTC(),
	})
}
