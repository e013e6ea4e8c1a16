// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/hostdesk/livechat-service/internal/api/dto"
)

// healthCheckTimeout bounds every dependency ping.
const healthCheckTimeout = 3 * time.Second

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	components map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Nil components are skipped.
func NewHealthHandler(components map[string]Pinger) *HealthHandler {
	checked := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			checked[name] = p
		}
	}
	return &HealthHandler{
		components: checked,
	}
}

// check pings every component concurrently and returns the failures.
func (h *HealthHandler) check(ctx context.Context) (map[string]string, []string) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		statuses = make(map[string]string, len(h.components))
		failed   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, p := range h.components {
		name, p := name, p
		g.Go(func() error {
			err := p.Ping(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				statuses[name] = "unhealthy"
				failed = append(failed, name)
				return nil
			}
			statuses[name] = "healthy"
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(failed)
	return statuses, failed
}

// Health handles the /health endpoint.
// @Summary Health check
// @Description Returns the overall health status and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components, failed := h.check(c.Request.Context())

	status := "healthy"
	statusCode := http.StatusOK
	if len(failed) > 0 {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Components: components,
	})
}

// Ready handles the /ready endpoint.
// @Summary Readiness check
// @Description Returns 200 if the service is ready to accept traffic
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service ready"
// @Failure 503 {object} map[string]string "Service not ready"
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, failed := h.check(c.Request.Context()); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": failed[0] + " unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live handles the /live endpoint.
// @Summary Liveness check
// @Description Returns 200 if the service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service alive"
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
