package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"account-auth-service/internal/core/server"
	"account-auth-service/internal/transport/http/handler"
	mdw "account-auth-service/internal/transport/http/middleware"
)

// Limits 服务保护参数（全局，不针对单个账号）
type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
}

func DefaultLimits() Limits {
	return Limits{RPS: 200, Burst: 400, Concurrency: 300, MaxBody: 1 << 20, Timeout: 10 * time.Second}
}

type APIDeps struct {
	Accounts *handler.AccountHandler
	Server   server.Options
	Limits   Limits
}

func NewAPIEngine(l *zap.Logger, d APIDeps) *gin.Engine {
	r := server.NewRouter(l, d.Server)
	r.Use(protect(l, d.Limits)...)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")
	d.Accounts.Mount(api)
	return r
}

func protect(l *zap.Logger, lim Limits) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rateOf(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBody),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	}
}
