package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"status":    "alive",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	dbStatus := "not_configured"
	if s.db != nil {
		dbStatus = "ok"
		if err := s.db.PingContext(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}
	redisStatus := "not_configured"
	if s.redis != nil {
		redisStatus = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"health":  "ok",
		"store":   s.storeDriver,
		"db":      dbStatus,
		"redis":   redisStatus,
		"time":    time.Now().Format(time.RFC3339),
	})
}
