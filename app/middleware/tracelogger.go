package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/bootstrap"
)

// TraceLog .
type TraceLog struct {
	Logger *bootstrap.LangGoLogger
}

// NewTrace .
func NewTrace(logger *bootstrap.LangGoLogger) *TraceLog {
	return &TraceLog{
		Logger: logger,
	}
}

// Handler attaches a globally unique trace id to the request context so
// every log line of one request correlates.
func (t *TraceLog) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader("request-id")
		if traceId == "" {
			traceId = uuid.New().String()
		}
		t.Logger.NewContext(c, zap.String("traceId", traceId))

		c.Next()
	}
}
