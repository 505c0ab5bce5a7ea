package repo

import (
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"account-auth-service/internal/domain"
)

// unavailable 把底层驱动错误统一归为 ErrStoreUnavailable，原始信息保留在 message 里
func unavailable(err error, op string) error {
	return pkgerrors.Wrapf(domain.ErrStoreUnavailable, "%s: %v", op, err)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的连接兜底按消息判断
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// clampPage limit 缺省 20，超过 100 截到 100
func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}
	return offset, limit
}
