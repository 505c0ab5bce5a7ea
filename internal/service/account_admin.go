package service

import (
	"context"

	"go.uber.org/zap"

	"account-auth-service/internal/domain"
)

type AccountAdmin struct {
	dir domain.AccountDirectory
	log *zap.Logger
}

func NewAccountAdmin(dir domain.AccountDirectory, l *zap.Logger) *AccountAdmin {
	return &AccountAdmin{dir: dir, log: l}
}

func (a *AccountAdmin) List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error) {
	return a.dir.List(ctx, offset, limit)
}

// SetActive 停用/恢复账号；没有删除路径
func (a *AccountAdmin) SetActive(ctx context.Context, identifier string, active bool) error {
	if err := a.dir.SetActive(ctx, identifier, active); err != nil {
		return err
	}
	a.log.Info("account status changed", zap.String("identifier", identifier), zap.Bool("active", active))
	return nil
}
