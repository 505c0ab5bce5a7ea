package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "account-auth-service/internal/transport/http/response"
)

// 敏感字段 key（query 中统一按 key 打码）；请求体一律不记录
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 打印摘要：method/path/status/code/latency/ip/ua/query/size
		l.Info("HTTP",
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("code", c.GetInt(resp.CtxKeyCode)),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", c.Writer.Size()),
		)
	}
}
