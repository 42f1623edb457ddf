package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（如 10<<20 = 10MB）
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, response.CodeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		var maxErr *http.MaxBytesError
		for _, err := range c.Errors {
			if errors.As(err.Err, &maxErr) {
				response.TooLarge(c, response.CodeBodyTooLarge, "请求体过大")
				return
			}
		}
	}
}
