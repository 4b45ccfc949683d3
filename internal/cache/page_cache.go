package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"creator-funnel/internal/dto"
)

const pageKeyPrefix = "landing_page:"

var ErrMiss = errors.New("cache miss")

type PageCache interface {
	Get(ctx context.Context, pageID string) (*dto.PageData, error)
	Set(ctx context.Context, page *dto.PageData) error
	Delete(ctx context.Context, pageID string) error
}

type redisPageCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewPageCache falls back to a cache that never hits when client is nil.
func NewPageCache(client *goredis.Client, ttl time.Duration) PageCache {
	if client == nil {
		return noopPageCache{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisPageCache{client: client, ttl: ttl}
}

func PageKey(pageID string) string {
	return pageKeyPrefix + pageID
}

func (c *redisPageCache) Get(ctx context.Context, pageID string) (*dto.PageData, error) {
	raw, err := c.client.Get(ctx, PageKey(pageID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get cached page: %w", err)
	}

	var page dto.PageData
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode cached page: %w", err)
	}
	return &page, nil
}

func (c *redisPageCache) Set(ctx context.Context, page *dto.PageData) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := c.client.Set(ctx, PageKey(page.PageID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached page: %w", err)
	}
	return nil
}

func (c *redisPageCache) Delete(ctx context.Context, pageID string) error {
	if err := c.client.Del(ctx, PageKey(pageID)).Err(); err != nil {
		return fmt.Errorf("delete cached page: %w", err)
	}
	return nil
}

type noopPageCache struct{}

func (noopPageCache) Get(context.Context, string) (*dto.PageData, error) { return nil, ErrMiss }
func (noopPageCache) Set(context.Context, *dto.PageData) error          { return nil }
func (noopPageCache) Delete(context.Context, string) error              { return nil }
