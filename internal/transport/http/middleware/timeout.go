package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "account-auth-service/internal/transport/http/response"
)

func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
