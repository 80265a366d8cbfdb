package handler

import (
	"net/http"

	"nearest-geopoints/internal/cache"

	"github.com/gin-gonic/gin"
)

// CacheState reports the point cache lifecycle
type CacheState interface {
	State() cache.State
	Len() int
}

// HealthHandler reports whether the service can answer queries
type HealthHandler struct {
	cache CacheState
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(c CacheState) *HealthHandler {
	return &HealthHandler{cache: c}
}

// Health handles GET /health requests
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.cache.State()
	if state != cache.StateLoaded {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"points": state.String(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"points": state.String(),
		"count":  h.cache.Len(),
	})
}
