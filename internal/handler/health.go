package handler

import (
	"net/http"
	"time"

	"github.com/MaksymY11/mates-backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

// Health reports liveness of the service and its collaborators.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	checks := gin.H{}

	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}
	checks["database"] = dbStatus

	if h.redisClient.IsEnabled() {
		redisStatus := "ok"
		if err := h.redisClient.Ping(ctx); err != nil {
			redisStatus = err.Error()
			// Cache is optional, degraded but alive.
		}
		checks["redis"] = redisStatus
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
