package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	dbPing    func() error
	redisPing func() error
}

// create a new instance of the health handler
func NewHealthHandler(dbPing, redisPing func() error) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, redisPing: redisPing}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz checks what a request actually needs. Redis being down only
// degrades chat change fan-out, so it is reported without failing
// readiness.

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"db":     "down",
			})
			return
		}
	}

	redisStatus := "ok"

	if h.redisPing != nil {
		if err := h.redisPing(); err != nil {
			redisStatus = "down"
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"db":     "ok",
		"redis":  redisStatus,
	})
}
