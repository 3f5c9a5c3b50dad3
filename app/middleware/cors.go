package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cors permissive cross-origin policy for the upload endpoints.
type Cors struct {
}

// NewCors .
func NewCors() *Cors {
	return &Cors{}
}

// Handler .
func (c *Cors) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Expose-Headers", "*")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
