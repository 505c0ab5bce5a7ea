package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "account-auth-service/internal/transport/http/response"
)

// RateLimit 全局令牌桶，只保护进程本身，不针对单个账号或 IP
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}
