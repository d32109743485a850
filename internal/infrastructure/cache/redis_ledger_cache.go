package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces ledger snapshots in redis
const DefaultKeyPrefix = "ledger:customer:"

// maxWatchAttempts bounds the WATCH/MULTI retries of one snapshot update
const maxWatchAttempts = 5

// ErrSnapshotContended is returned when a snapshot update keeps losing the
// WATCH race. The caller treats it like any cache write failure.
var ErrSnapshotContended = errors.New("ledger snapshot update contended")

// RedisLedgerCache stores customer snapshots in Redis.
// This is suitable for deployments where several API instances share reads.
type RedisLedgerCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLedgerCache connects to Redis and verifies the connection
func NewRedisLedgerCache(cfg RedisConfig, ttl time.Duration) (*RedisLedgerCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLedgerCacheWithClient(client, "", ttl), nil
}

// NewRedisLedgerCacheWithClient creates a cache over an existing client
func NewRedisLedgerCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisLedgerCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLedgerCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisLedgerCache) key(customerID uuid.UUID) string {
	return c.keyPrefix + customerID.String()
}

// Get loads and decodes the cached snapshot
func (c *RedisLedgerCache) Get(ctx context.Context, customerID uuid.UUID) (*ledger.Customer, bool, error) {
	snapshot, err := c.read(ctx, c.client, customerID)
	if err != nil {
		return nil, false, err
	}
	return snapshot, snapshot != nil, nil
}

// Set stores the snapshot with the configured TTL unless Redis holds a newer
// version. Stored activities are carried into the new snapshot.
func (c *RedisLedgerCache) Set(ctx context.Context, customer *ledger.Customer) error {
	if customer == nil {
		return nil
	}
	return c.update(ctx, customer.ID, func(stored *ledger.Customer) (ledger.Customer, bool) {
		return resolveSet(stored, *customer)
	})
}

// MergeActivity adds entry to the stored snapshot, if any
func (c *RedisLedgerCache) MergeActivity(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error {
	return c.update(ctx, customerID, func(stored *ledger.Customer) (ledger.Customer, bool) {
		return resolveMerge(stored, entry)
	})
}

// update runs a WATCH/MULTI read-modify-write of one snapshot key. A
// concurrent writer aborts the EXEC and the update is retried on the new value.
func (c *RedisLedgerCache) update(ctx context.Context, customerID uuid.UUID, resolve func(*ledger.Customer) (ledger.Customer, bool)) error {
	key := c.key(customerID)
	txf := func(tx *redis.Tx) error {
		stored, err := c.read(ctx, tx, customerID)
		if err != nil {
			return err
		}
		next, write := resolve(stored)
		if !write {
			return nil
		}
		raw, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to encode ledger snapshot: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}

	for range maxWatchAttempts {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to write ledger snapshot: %w", err)
		}
		return nil
	}
	return ErrSnapshotContended
}

// getter is satisfied by both *redis.Client and the *redis.Tx of a WATCH
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// read decodes the snapshot of the customer. A missing key is (nil, nil).
func (c *RedisLedgerCache) read(ctx context.Context, cmd getter, customerID uuid.UUID) (*ledger.Customer, error) {
	raw, err := cmd.Get(ctx, c.key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger snapshot: %w", err)
	}

	var snapshot ledger.Customer
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// written by an incompatible build, treat as a miss
		_ = c.client.Del(ctx, c.key(customerID)).Err()
		return nil, nil
	}
	return &snapshot, nil
}

// Invalidate removes the cached snapshot
func (c *RedisLedgerCache) Invalidate(ctx context.Context, customerID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(customerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ledger snapshot: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisLedgerCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisLedgerCache) GetClient() *redis.Client {
	return c.client
}
