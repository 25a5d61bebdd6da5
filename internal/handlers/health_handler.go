package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the healthcheck verifies
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

type HealthHandler struct {
	store        Pinger
	breakerState func() string
}

func NewHealthHandler(store Pinger, breakerState func() string) *HealthHandler {
	return &HealthHandler{
		store:        store,
		breakerState: breakerState,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		attachError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": h.store.Name() + " session store unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"backend_breaker": h.breakerState(),
	})
}
