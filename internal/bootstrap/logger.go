package bootstrap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"account-auth-service/internal/core/config"
	"account-auth-service/internal/core/logger"
)

// NewLogger 按 log 配置构造 zap，并把标准库 log 重定向过去
func NewLogger(cfg config.Log) (*zap.Logger, func()) {
	var (
		l       *zap.Logger
		cleanup func()
	)
	if cfg.File.Enable {
		l, cleanup = logger.NewWithRotate(cfg.Level, cfg.JSON, logger.FileRotate{
			Filename:   cfg.File.Filename,
			MaxSizeMB:  cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAgeDays: cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		})
	} else {
		l, cleanup = logger.New(cfg.Level, cfg.JSON)
	}
	restore := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() {
		restore()
		cleanup()
	}
}
