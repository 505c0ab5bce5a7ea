package repo

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"account-auth-service/internal/domain"
)

// MemoryAccountStore 进程内存储，用于本地开发和测试
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	order    []string // 按写入顺序
	now      func() time.Time
}

var _ domain.AccountDirectory = (*MemoryAccountStore)(nil)

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]domain.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryAccountStore) Insert(_ context.Context, a domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.Identifier]; exists {
		return domain.Account{}, pkgerrors.Wrapf(domain.ErrDuplicateIdentifier, "insert %q", a.Identifier)
	}
	now := s.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	s.accounts[a.Identifier] = a
	s.order = append(s.order, a.Identifier)
	return a, nil
}

func (s *MemoryAccountStore) FindByIdentifier(_ context.Context, identifier string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[identifier]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return a, nil
}

func (s *MemoryAccountStore) List(_ context.Context, offset, limit int) ([]domain.Account, int64, error) {
	offset, limit = clampPage(offset, limit)
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.order)
	out := make([]domain.Account, 0, limit)
	// 最新的在前，与 SQL 实现的 created_at desc 保持一致
	for i := total - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.accounts[s.order[i]])
	}
	return out, int64(total), nil
}

func (s *MemoryAccountStore) SetActive(_ context.Context, identifier string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[identifier]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = s.now()
	s.accounts[identifier] = a
	return nil
}
