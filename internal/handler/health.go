package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the API and both backing stores. A 503 here lets
// the orchestrator recycle the process before cash operations start failing
// mid-shift.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"postgres": "ok", "redis": "ok"}
		sano := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "unreachable"
			sano = false
		}
		if rdb.Ping(ctx).Err() != nil {
			checks["redis"] = "unreachable"
			sano = false
		}

		code := http.StatusOK
		if !sano {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"ok": sano, "checks": checks})
	}
}
