package handler

import (
	"context"
	"net/http"
	"time"

	"fisiogest/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the backend's dependencies plus the backlog of
// the async queues (audit events, receipt PDFs). A growing DLQ means jobs are
// failing permanently; the depths are informational, only a DB or Redis
// outage flips the response to 503.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	colas := []string{worker.QueueAuditoria, worker.QueueRecibos}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		sano := true

		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "caido"
			sano = false
		}

		redisStatus := "ok"
		estadoColas := gin.H{}
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "caido"
			sano = false
		} else {
			for _, cola := range colas {
				pendientes, _ := rdb.LLen(ctx, cola).Result()
				muertos, _ := worker.DLQLength(ctx, rdb, cola)
				estadoColas[cola] = gin.H{
					"pendientes": pendientes,
					"dlq":        muertos,
				}
			}
		}

		status := http.StatusOK
		if !sano {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    sano,
			"db":    dbStatus,
			"redis": redisStatus,
			"colas": estadoColas,
		})
	}
}
