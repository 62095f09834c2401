package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/anzhiyu-c/blog-admin/pkg/response"
	"github.com/gin-gonic/gin"
)

// Recovery 捕获 panic 并返回统一的 500 响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Recovery] %s %s panic: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				if c.Writer.Written() {
					c.Abort()
					return
				}
				response.Fail(c, http.StatusInternalServerError, "服务器内部错误，请稍后重试")
				c.Abort()
			}
		}()
		c.Next()
	}
}
