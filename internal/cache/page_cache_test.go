package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-funnel/internal/dto"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPageCacheRoundTrip(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	c := NewPageCache(client, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "1821-minimal-1")
	assert.ErrorIs(t, err, ErrMiss)

	page := &dto.PageData{
		PageID:             "1821-minimal-1",
		Template:           "minimal",
		CreatorName:        "Alice",
		SubscriptionAmount: decimal.NewFromInt(500),
		Currency:           "TZS",
	}
	require.NoError(t, c.Set(ctx, page))
	assert.True(t, mr.Exists("landing_page:1821-minimal-1"))

	got, err := c.Get(ctx, "1821-minimal-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.CreatorName)
	assert.True(t, got.SubscriptionAmount.Equal(decimal.NewFromInt(500)))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "1821-minimal-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisPageCacheDelete(t *testing.T) {
	_, client := newMiniRedisClient(t)
	c := NewPageCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &dto.PageData{PageID: "p1"}))
	require.NoError(t, c.Delete(ctx, "p1"))

	_, err := c.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNoopPageCache(t *testing.T) {
	c := NewPageCache(nil, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &dto.PageData{PageID: "p1"}))
	_, err := c.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrMiss)
}
