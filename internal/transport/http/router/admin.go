package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"account-auth-service/internal/core/server"
	"account-auth-service/internal/transport/http/handler"
)

type AdminDeps struct {
	Admin  *handler.AdminHandler
	Server server.Options
	Limits Limits
}

// NewAdminEngine 运维端：账号列表、停用/恢复、/metrics。不带鉴权，默认只监听 127.0.0.1
func NewAdminEngine(l *zap.Logger, d AdminDeps) *gin.Engine {
	r := server.NewRouter(l, d.Server)
	r.Use(protect(l, d.Limits)...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	d.Admin.Mount(admin)
	return r
}

func rateOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
