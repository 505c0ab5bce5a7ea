package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-auth-service/internal/domain"
)

var sampleTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleAccount(identifier string, created time.Time) domain.Account {
	return domain.Account{
		Identifier:   identifier,
		Email:        identifier + "@example.com",
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "$2a$04$hash-of-" + identifier,
		Role:         "user",
		IsActive:     true,
		CreatedAt:    created,
	}
}

// runStoreContract 对所有 AccountDirectory 实现跑同一组行为断言
func runStoreContract(t *testing.T, newStore func(t *testing.T) domain.AccountDirectory) {
	ctx := context.Background()
	base := sampleTime

	t.Run("insert then find", func(t *testing.T) {
		s := newStore(t)
		in := sampleAccount("alice", base)
		got, err := s.Insert(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Identifier)

		found, err := s.FindByIdentifier(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, in.Email, found.Email)
		assert.Equal(t, in.FirstName, found.FirstName)
		assert.Equal(t, in.LastName, found.LastName)
		assert.Equal(t, in.PasswordHash, found.PasswordHash)
		assert.Equal(t, in.Role, found.Role)
		assert.True(t, found.IsActive)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("duplicate identifier does not overwrite", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(ctx, sampleAccount("alice", base))
		require.NoError(t, err)

		second := sampleAccount("alice", base.Add(time.Second))
		second.PasswordHash = "other-hash"
		_, err = s.Insert(ctx, second)
		assert.True(t, errors.Is(err, domain.ErrDuplicateIdentifier), "got %v", err)

		found, err := s.FindByIdentifier(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "$2a$04$hash-of-alice", found.PasswordHash)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindByIdentifier(ctx, "no-such-user")
		assert.True(t, errors.Is(err, domain.ErrAccountNotFound), "got %v", err)
	})

	t.Run("set active", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(ctx, sampleAccount("bob", base))
		require.NoError(t, err)

		require.NoError(t, s.SetActive(ctx, "bob", false))
		found, err := s.FindByIdentifier(ctx, "bob")
		require.NoError(t, err)
		assert.False(t, found.IsActive)

		require.NoError(t, s.SetActive(ctx, "bob", true))
		found, err = s.FindByIdentifier(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, found.IsActive)

		err = s.SetActive(ctx, "ghost", false)
		assert.True(t, errors.Is(err, domain.ErrAccountNotFound), "got %v", err)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 5; i++ {
			_, err := s.Insert(ctx, sampleAccount(fmt.Sprintf("user%d", i), base.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		page, total, err := s.List(ctx, 0, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		require.Len(t, page, 2)
		assert.Equal(t, "user4", page[0].Identifier)
		assert.Equal(t, "user3", page[1].Identifier)

		page, _, err = s.List(ctx, 4, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "user0", page[0].Identifier)

		page, _, err = s.List(ctx, 10, 2)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("list limit defaults to 20 and caps at 100", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 105; i++ {
			_, err := s.Insert(ctx, sampleAccount(fmt.Sprintf("bulk%03d", i), base.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		page, total, err := s.List(ctx, 0, 500)
		require.NoError(t, err)
		assert.EqualValues(t, 105, total)
		assert.Len(t, page, 100)

		page, _, err = s.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, page, 20)
	})

	t.Run("concurrent inserts of one identifier", func(t *testing.T) {
		s := newStore(t)
		const n = 10
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok, dups int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a := sampleAccount("carol", base)
				a.PasswordHash = fmt.Sprintf("hash-%d", i)
				_, err := s.Insert(ctx, a)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrDuplicateIdentifier):
					dups++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, ok)
		assert.Equal(t, n-1, dups)
	})
}

func TestMemoryAccountStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) domain.AccountDirectory {
		return NewMemoryAccountStore()
	})
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		offset, limit    int
		wantOff, wantLim int
	}{
		{0, 0, 0, 20},
		{-3, -1, 0, 20},
		{5, 50, 5, 50},
		{0, 100, 0, 100},
		{0, 101, 0, 100},
		{0, 500, 0, 100},
	}
	for _, tc := range cases {
		off, lim := clampPage(tc.offset, tc.limit)
		assert.Equal(t, tc.wantOff, off, "offset for %+v", tc)
		assert.Equal(t, tc.wantLim, lim, "limit for %+v", tc)
	}
}
