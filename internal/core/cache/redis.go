package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

// Dial 建连并 Ping 一次，连不上直接返回错误
func Dial(ctx context.Context, addr, pass string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func New(rdb *redis.Client) *Cache {
	return &Cache{RDB: rdb}
}

// 每个 key 配一个代数 <key>:gen，Invalidate 时自增。
// 回源前记下代数，回填时代数变了就放弃写入，避免把失效前读到的旧值写回缓存
const genTTL = 24 * time.Hour

func genKey(key string) string { return key + ":gen" }

// KEYS[1]=key KEYS[2]=gen ARGV[1]=回源前的代数 ARGV[2]=值 ARGV[3]=ttl(ms)
var fillScript = redis.NewScript(`
local g = redis.call('GET', KEYS[2])
if (g or '') ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存；redis 故障时直接回源
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		gen, genErr := c.RDB.Get(ctx, genKey(key)).Result()
		if errors.Is(genErr, redis.Nil) {
			gen, genErr = "", nil
		}
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if genErr == nil {
			_ = fillScript.Run(ctx, c.RDB, []string{key, genKey(key)}, gen, b, ttl.Milliseconds()).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 先推进代数再删 key，进行中的回源不会再写回
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
			p.Expire(ctx, genKey(k), genTTL)
		}
		p.Del(ctx, keys...)
		return nil
	})
	return err
}
