package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "account-auth-service/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时在处理的请求数（bcrypt 吃 CPU，同时保护存储下游）
func ConcurrencyLimit(n int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(n)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Abort(c, resp.CodeUnavailable, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
