// Package http contains the REST handlers for the workbench backend.
package http

import (
	"net/http"
	"sync"

	"github.com/cobaltdesk/backend/internal/bootstrap"
	"github.com/cobaltdesk/backend/internal/infrastructure/monitoring"
	"github.com/cobaltdesk/backend/internal/panel"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	panelManager *panel.Manager
	factory      *panel.ResilientFactory
	builder      *bootstrap.Builder
	metrics      *monitoring.Metrics

	mu        sync.RWMutex
	manifests map[string]*bootstrap.Manifest // Protected by mu, keyed by surface
}

// NewHandlers creates a new handler set
func NewHandlers(
	panelManager *panel.Manager,
	factory *panel.ResilientFactory,
	builder *bootstrap.Builder,
	manifests map[string]*bootstrap.Manifest,
	metrics *monitoring.Metrics,
) *Handlers {
	if manifests == nil {
		manifests = make(map[string]*bootstrap.Manifest)
	}
	return &Handlers{
		panelManager: panelManager,
		factory:      factory,
		builder:      builder,
		manifests:    manifests,
		metrics:      metrics,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Workbench Backend (Go)",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"panels":   h.panelManager.Stats(),
		"breakers": h.factory.BreakerStatus(),
	})
}

// ListPanels lists all live panels, optionally filtered by surface
func (h *Handlers) ListPanels(c *gin.Context) {
	var surfaceID *string
	if s := c.Query("surface"); s != "" {
		surfaceID = &s
	}

	c.JSON(http.StatusOK, gin.H{
		"panels": h.panelManager.List(surfaceID),
		"stats":  h.panelManager.Stats(),
	})
}

// ListSurfaces lists the surfaces that can be bootstrapped
func (h *Handlers) ListSurfaces(c *gin.Context) {
	h.mu.RLock()
	surfaces := make([]string, 0, len(h.manifests))
	for name := range h.manifests {
		surfaces = append(surfaces, name)
	}
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"surfaces": surfaces})
}

// BootstrapSurface runs the bootstrap saga for a named surface. Each request
// gets a fresh single-use orchestrator; a failed run is fully compensated
// before this returns.
func (h *Handlers) BootstrapSurface(c *gin.Context) {
	name := c.Param("name")

	h.mu.RLock()
	manifest, ok := h.manifests[name]
	h.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown surface: " + name})
		return
	}

	orchestrator, err := h.builder.Build(manifest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ok, err = orchestrator.Execute(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"success": ok,
		"status":  orchestrator.Status(),
		"results": orchestrator.Results(),
	})
}

// GetBreakers returns the status of every circuit breaker
func (h *Handlers) GetBreakers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breakers": h.factory.BreakerStatus()})
}

// ResetBreaker forces a single breaker closed
func (h *Handlers) ResetBreaker(c *gin.Context) {
	name := c.Param("name")

	if !h.factory.ResetBreaker(name) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "unknown breaker: " + name,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetAllBreakers forces every breaker closed
func (h *Handlers) ResetAllBreakers(c *gin.Context) {
	h.factory.ResetAllBreakers()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats returns a JSON snapshot of service metrics
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": h.metrics.Snapshot(),
		"panels":  h.panelManager.Stats(),
	})
}
