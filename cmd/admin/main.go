package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"account-auth-service/internal/bootstrap"
	"account-auth-service/internal/core/config"
	"account-auth-service/internal/core/server"
	"account-auth-service/internal/service"
	"account-auth-service/internal/transport/http/handler"
	"account-auth-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := bootstrap.NewLogger(cfg.Log)
	defer cleanup()

	if err := bootstrap.RequireSharedStore(cfg); err != nil {
		log.Fatal("admin api needs a shared account store", zap.Error(err))
	}

	ctx, cancelOpen := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := bootstrap.OpenAccountStore(ctx, cfg, log)
	cancelOpen()
	if err != nil {
		log.Fatal("open account store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	adminH := handler.NewAdminHandler(service.NewAccountAdmin(store, log.Named("admin")))

	// 路由（运维端）
	r := router.NewAdminEngine(log, router.AdminDeps{
		Admin:  adminH,
		Server: server.Options{Mode: gin.ReleaseMode},
		Limits: router.DefaultLimits(),
	})

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	if !server.IsLoopback(cfg.App.Admin.Host) {
		log.Warn("admin api has no authentication and is not bound to loopback", zap.String("addr", addr))
	}
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" || host4human == "::" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
