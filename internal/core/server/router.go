package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Mode string // gin.ReleaseMode / gin.DebugMode / gin.TestMode
	CORS bool
}

// NewRouter 基础 engine：panic 交给 ginzap 记录（带堆栈），可选 CORS
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	if o.Mode != "" {
		gin.SetMode(o.Mode)
	}
	r := gin.New()
	r.Use(ginzap.RecoveryWithZap(l, true))
	if o.CORS {
		r.Use(cors.Default())
	}
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// IsLoopback 监听地址是否只对本机可见；空串、0.0.0.0、:: 和普通网卡地址都算对外
func IsLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
