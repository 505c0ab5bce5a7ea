package cache

import (
	"context"
	"encoding/json"
	"time"
)

func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			// 不做负缓存：未找到的结果每次都回源
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
