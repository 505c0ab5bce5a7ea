package repo

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"account-auth-service/internal/domain"
	"account-auth-service/internal/feature/account"
)

type AccountRepo struct{ db *gorm.DB }

var _ domain.AccountDirectory = (*AccountRepo)(nil)

func NewAccountRepo(db *gorm.DB) *AccountRepo { return &AccountRepo{db: db} }

func (r *AccountRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&account.AccountModel{})
}

func (r *AccountRepo) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	m := account.FromDomain(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.Account{}, pkgerrors.Wrapf(domain.ErrDuplicateIdentifier, "insert %q", a.Identifier)
		}
		return domain.Account{}, unavailable(err, "insert account")
	}
	return m.ToDomain(), nil
}

func (r *AccountRepo) FindByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	var m account.AccountModel
	err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, unavailable(err, "find account")
	}
	return m.ToDomain(), nil
}

func (r *AccountRepo) List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error) {
	offset, limit = clampPage(offset, limit)
	tx := r.db.WithContext(ctx).Model(&account.AccountModel{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, unavailable(err, "count accounts")
	}
	var ms []account.AccountModel
	if err := tx.Order("created_at desc").Order("id desc").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, unavailable(err, "list accounts")
	}
	out := make([]domain.Account, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ToDomain())
	}
	return out, total, nil
}

func (r *AccountRepo) SetActive(ctx context.Context, identifier string, active bool) error {
	res := r.db.WithContext(ctx).Model(&account.AccountModel{}).
		Where("identifier = ?", identifier).
		Update("is_active", active)
	if res.Error != nil {
		return unavailable(res.Error, "update account")
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL 对值未变化的行返回 0，需要再确认一次是否存在
	var n int64
	if err := r.db.WithContext(ctx).Model(&account.AccountModel{}).Where("identifier = ?", identifier).Count(&n).Error; err != nil {
		return unavailable(err, "count account")
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
