package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/bootstrap"
)

/*
Request/response logging, replacing gin's default logger. Chunk bodies are
binary, so only the envelope is printed, never the payload.
*/

type RequestLog struct {
	Logger *bootstrap.LangGoLogger
}

func NewRequestLog(logger *bootstrap.LangGoLogger) *RequestLog {
	return &RequestLog{
		Logger: logger,
	}
}

// CustomResponseWriter .
type CustomResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write .
func (w CustomResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString .
func (w CustomResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Handler .
func (r *RequestLog) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		r.Logger.WithContext(c).Info("RequestInfo",
			zap.String("content-type", c.ContentType()),
			zap.String("Ip", c.ClientIP()),
			zap.String("Method", c.Request.Method),
			zap.String("URL", c.Request.URL.Path),
			zap.String("Query", c.Request.URL.RawQuery),
			zap.String("request-id", c.Request.Header.Get("request-id")),
		)

		blw := &CustomResponseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw
		c.Next()
		cost := time.Since(start)

		r.Logger.WithContext(c).Info("ResponseInfo",
			zap.String("Path", c.Request.URL.Path),
			zap.Int("Status", c.Writer.Status()),
			zap.Duration("Cost", cost),
		)
	}
}
