package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), srv
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, cacheKey(KindTrialBalance, "acme", ResolvedPeriod{
		FromDate: date("2024-01-01"), ToDate: date("2024-12-31"), UptoKey: MaxKey,
	})...)
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return &Report{TotalDebit: decimal.NewFromInt(60)}, nil
	}

	var first Report
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second Report
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads, "second fetch should hit the cache")
	assert.True(t, second.TotalDebit.Equal(decimal.NewFromInt(60)))
}

func TestCacheBumpChangesKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "reports", "trial_balance", "acme")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "reports", "trial_balance", "acme")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestCacheLoaderErrorPropagates(t *testing.T) {
	cache, _ := newTestCache(t)

	boom := errors.New("boom")
	var out Report
	err := cache.FetchJSON(context.Background(), "some:key", &out, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestCacheNilIsPassThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "reports", "acme")
	require.NoError(t, err)
	assert.Equal(t, "reports:acme", key)

	loads := 0
	var out Report
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
		loads++
		return &Report{TotalCredit: decimal.NewFromInt(5)}, nil
	}))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) {
		loads++
		return &Report{TotalCredit: decimal.NewFromInt(5)}, nil
	}))

	assert.Equal(t, 2, loads, "nil cache never memoises")
	assert.True(t, out.TotalCredit.Equal(decimal.NewFromInt(5)))
	assert.NoError(t, cache.Bump(ctx))
}

func TestCacheKeyContainsNoCredentials(t *testing.T) {
	parts := cacheKey(KindCashBook, "acme", ResolvedPeriod{
		FromDate: date("2024-01-01"), ToDate: date("2024-06-30"),
		FromKey: 101000000, UptoKey: 101999999,
	})
	assert.Equal(t, []string{
		"reports", "cash_book", "acme", "2024-01-01", "2024-06-30",
		"101000000", "101999999",
	}, parts)
}
