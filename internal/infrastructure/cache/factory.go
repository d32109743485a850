package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is used when no positive TTL is configured
const DefaultTTL = 5 * time.Minute

// LedgerCache is a snapshot cache of customer aggregates
type LedgerCache interface {
	Get(ctx context.Context, customerID uuid.UUID) (*ledger.Customer, bool, error)
	Set(ctx context.Context, customer *ledger.Customer) error
	MergeActivity(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error
	Invalidate(ctx context.Context, customerID uuid.UUID) error
	Close() error
}

var (
	_ LedgerCache = (*InMemoryLedgerCache)(nil)
	_ LedgerCache = (*RedisLedgerCache)(nil)
)

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// Factory creates ledger caches based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// NewFactory creates a new cache factory
func NewFactory(redisCfg config.RedisConfig, ttl time.Duration, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, and an
// in-memory cache otherwise (unless fallback is disabled)
func (f *Factory) Create() (LedgerCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory ledger cache")
		return NewInMemoryLedgerCache(f.ttl), nil
	}

	c, err := NewRedisLedgerCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err == nil {
		f.logger.Info("using Redis ledger cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for ledger cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory ledger cache. "+
		"Snapshots are not shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryLedgerCache(f.ttl), nil
}
