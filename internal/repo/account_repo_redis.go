package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"account-auth-service/internal/domain"
)

const (
	keyAccountPrefix = "account:"
	keyAccountIndex  = "accounts:index" // zset: identifier -> created_at(ms)
	maxWatchRetries  = 3
)

// SETNX 与索引写入放在同一个脚本里，保证唯一性检查和写入是原子的
var insertAccountScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
return 1
`)

type RedisAccountStore struct {
	rdb *redis.Client
	now func() time.Time
}

var _ domain.AccountDirectory = (*RedisAccountStore)(nil)

func NewRedisAccountStore(rdb *redis.Client) *RedisAccountStore {
	return &RedisAccountStore{
		rdb: rdb,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func accountKey(identifier string) string { return keyAccountPrefix + identifier }

func (s *RedisAccountStore) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	now := s.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	b, err := json.Marshal(newRecord(a))
	if err != nil {
		return domain.Account{}, pkgerrors.Wrap(err, "encode account")
	}
	ok, err := insertAccountScript.Run(ctx, s.rdb,
		[]string{accountKey(a.Identifier), keyAccountIndex},
		b, a.CreatedAt.UnixMilli(), a.Identifier,
	).Int()
	if err != nil {
		return domain.Account{}, unavailable(err, "insert account")
	}
	if ok == 0 {
		return domain.Account{}, pkgerrors.Wrapf(domain.ErrDuplicateIdentifier, "insert %q", a.Identifier)
	}
	return a, nil
}

func (s *RedisAccountStore) FindByIdentifier(ctx context.Context, identifier string) (domain.Account, error) {
	b, err := s.rdb.Get(ctx, accountKey(identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, unavailable(err, "find account")
	}
	var rec accountRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.Account{}, unavailable(err, "decode account")
	}
	return rec.toDomain(), nil
}

func (s *RedisAccountStore) List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error) {
	offset, limit = clampPage(offset, limit)

	total, err := s.rdb.ZCard(ctx, keyAccountIndex).Result()
	if err != nil {
		return nil, 0, unavailable(err, "count accounts")
	}
	ids, err := s.rdb.ZRevRange(ctx, keyAccountIndex, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, unavailable(err, "list accounts")
	}
	if len(ids) == 0 {
		return []domain.Account{}, total, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, unavailable(err, "load accounts")
	}
	out := make([]domain.Account, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec accountRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, 0, unavailable(err, "decode account")
		}
		out = append(out, rec.toDomain())
	}
	return out, total, nil
}

func (s *RedisAccountStore) SetActive(ctx context.Context, identifier string, active bool) error {
	key := accountKey(identifier)
	update := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		var rec accountRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return err
		}
		rec.IsActive = active
		rec.UpdatedAt = s.now()
		nb, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.rdb.Watch(ctx, update, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, domain.ErrAccountNotFound):
			return err
		default:
			return unavailable(err, "update account")
		}
	}
	return unavailable(redis.TxFailedErr, "update account")
}
