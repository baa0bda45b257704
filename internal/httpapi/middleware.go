package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/services-marketplace/internal/logger"
)

// ActorHeader: заголовок, в котором внешний auth-прокси передаёт пользователя.
const ActorHeader = "X-User-ID"

const actorKey = "actor_id"

// requireActor кладёт в контекст id пользователя из ActorHeader.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(ActorHeader))
		if err != nil {
			ErrorResponse(c, http.StatusUnauthorized, "missing or invalid "+ActorHeader+" header")
			c.Abort()
			return
		}
		c.Set(actorKey, id)
		c.Next()
	}
}

func actorFrom(c *gin.Context) uuid.UUID {
	id, _ := c.Get(actorKey)
	actor, _ := id.(uuid.UUID)
	return actor
}

// requestLogger пишет одну строку на запрос.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		).Debug("http request")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+ActorHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
