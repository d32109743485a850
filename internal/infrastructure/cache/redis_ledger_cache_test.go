//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisLedgerCache_RoundTrip(t *testing.T) {
	client := newRedisClient(t)
	c := NewRedisLedgerCacheWithClient(client, "test:ledger:", time.Minute)
	defer c.Close()
	ctx := context.Background()

	customer := newCustomer(t)
	require.NoError(t, c.Set(ctx, customer))

	got, ok, err := c.Get(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, customer.Version, got.Version)
	require.Len(t, got.Payments, 1)
	assert.True(t, customer.Payments[0].TotalAmount.Equal(got.Payments[0].TotalAmount))

	ttl, err := client.TTL(ctx, "test:ledger:"+customer.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, customer.ID))
	_, ok, err = c.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLedgerCache_CorruptEntryIsMiss(t *testing.T) {
	client := newRedisClient(t)
	c := NewRedisLedgerCacheWithClient(client, "", time.Minute)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, client.Set(ctx, DefaultKeyPrefix+id.String(), "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := client.Exists(ctx, DefaultKeyPrefix+id.String()).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisLedgerCache_WriteRules(t *testing.T) {
	client := newRedisClient(t)
	c := NewRedisLedgerCacheWithClient(client, "test:rules:", time.Minute)
	defer c.Close()
	runSnapshotCacheSuite(t, c)
}
