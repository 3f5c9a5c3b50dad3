package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trackvault/trackvault/app/pkg/web"
	"github.com/trackvault/trackvault/bootstrap"
)

type PanicRecover struct {
	Logger *bootstrap.LangGoLogger
}

// NewPanicRecover .
func NewPanicRecover(logger *bootstrap.LangGoLogger) *PanicRecover {
	return &PanicRecover{
		Logger: logger,
	}
}

// Handler .
func (p *PanicRecover) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				p.Logger.WithContext(c).Error("recovered from panic", zap.String("panic", fmt.Sprintf("%v", err)))
				debug.PrintStack()
				c.AbortWithStatusJSON(http.StatusInternalServerError, web.Response{
					Code:    "Internal",
					Message: fmt.Sprintf("%v", err),
					Data:    "",
				})
			}
		}()

		c.Next()
	}
}
