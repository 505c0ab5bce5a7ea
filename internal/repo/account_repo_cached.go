package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"account-auth-service/internal/core/cache"
	"account-auth-service/internal/domain"
)

const keyAccountCachePrefix = "authcache:account:"

// CachedAccountStore 对 FindByIdentifier 做读穿透缓存；写操作后删除对应 key
type CachedAccountStore struct {
	next  domain.AccountDirectory
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ domain.AccountDirectory = (*CachedAccountStore)(nil)

func NewCachedAccountStore(next domain.AccountDirectory, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedAccountStore {
	return &CachedAccountStore{next: next, cache: c, ttl: ttl, log: l}
}

func cacheKey(identifier string) string { return keyAccountCachePrefix + identifier }

func (s *CachedAccountStore) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	out, err := s.next.Insert(ctx, a)
	if err != nil {
		return out, err
	}
	s.invalidate(ctx, a.Identifier)
	return out, nil
}

func (s *CachedAccountStore) FindByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	rec, err := cache.GetOrLoadJSON(s.cache, ctx, cacheKey(identifier), s.ttl,
		func(ctx context.Context) (*accountRecord, error) {
			a, err := s.next.FindByIdentifier(ctx, identifier)
			if err != nil {
				return nil, err
			}
			r := newRecord(a)
			return &r, nil
		})
	if err != nil {
		return domain.Account{}, err
	}
	if rec == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return rec.toDomain(), nil
}

func (s *CachedAccountStore) List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error) {
	return s.next.List(ctx, offset, limit)
}

func (s *CachedAccountStore) SetActive(ctx context.Context, identifier string, active bool) error {
	if err := s.next.SetActive(ctx, identifier, active); err != nil {
		return err
	}
	s.invalidate(ctx, identifier)
	return nil
}

func (s *CachedAccountStore) invalidate(ctx context.Context, identifier string) {
	if err := s.cache.Invalidate(ctx, cacheKey(identifier)); err != nil {
		s.log.Warn("account cache invalidate failed", zap.String("identifier", identifier), zap.Error(err))
	}
}
