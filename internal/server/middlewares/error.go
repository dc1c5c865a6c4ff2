package middlewares

import (
	"github.com/gin-gonic/gin"

	"olp/backend/pkg/ginx"
)

// ErrorHandler turns accumulated gin errors into the standard envelope
// when a handler aborted without writing a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.InternalError(c, c.Errors.Last().Error())
		}
	}
}
