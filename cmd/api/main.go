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

	// 存储 + hasher（失败直接 Fatal）
	ctx, cancelOpen := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := bootstrap.OpenAccountStore(ctx, cfg, log)
	cancelOpen()
	if err != nil {
		log.Fatal("open account store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	hasher, err := bootstrap.NewHasher(cfg.Password)
	if err != nil {
		log.Fatal("build password hasher", zap.Error(err))
	}
	log.Info("password hasher ready", zap.Int("cost", hasher.Cost()))

	accounts := handler.NewAccountHandler(
		service.NewRegistrar(store, hasher, log.Named("registrar")),
		service.NewVerifier(store, hasher, log.Named("verifier")),
	)

	// 路由（用户端）
	r := router.NewAPIEngine(log, router.APIDeps{
		Accounts: accounts,
		Server:   server.Options{Mode: ginMode(cfg.App.Env), CORS: true},
		Limits:   router.DefaultLimits(),
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("account api starting",
		zap.String("addr", addr),
		zap.String("store", cfg.Store.Backend),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("account api start FAILED", zap.Error(err))
		}
	}()
	log.Info("account api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("account api shutdown", zap.Error(err))
	}
	log.Info("account api stopped gracefully")
}

func ginMode(env string) string {
	if env == "local" || env == "dev" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
