package ledger

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/domain/shared/valueobject"
	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SnapshotCache keeps customer snapshots between ledger reads
type SnapshotCache interface {
	Get(ctx context.Context, customerID uuid.UUID) (*ledger.Customer, bool, error)
	Set(ctx context.Context, customer *ledger.Customer) error
	MergeActivity(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error
	Invalidate(ctx context.Context, customerID uuid.UUID) error
}

// Option configures a LedgerService
type Option func(*LedgerService)

// WithCache sets the snapshot cache used by ledger reads
func WithCache(cache SnapshotCache) Option {
	return func(s *LedgerService) { s.cache = cache }
}

// WithEventPublisher sets the publisher receiving committed domain events
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *LedgerService) { s.events = publisher }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *LedgerService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the ledger instruments
func WithMetrics(metrics *telemetry.LedgerMetrics) Option {
	return func(s *LedgerService) { s.metrics = metrics }
}

// LedgerService runs the project ledger operations of a customer: the work
// registry, material consumption, payments, expenses, the activity log and
// analytics. Every mutation is a read-modify-write in one transaction,
// conditioned on the customer version and retried on conflict.
type LedgerService struct {
	customers ledger.CustomerRepository
	scope     TransactionScope
	cache     SnapshotCache
	events    shared.EventPublisher
	recorder  *ActivityRecorder
	logger    *zap.Logger
	metrics   *telemetry.LedgerMetrics
	cfg       config.LedgerConfig
	currency  valueobject.Currency
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	customers ledger.CustomerRepository,
	activities ledger.ActivityRepository,
	scope TransactionScope,
	cfg config.LedgerConfig,
	opts ...Option,
) *LedgerService {
	s := &LedgerService{
		customers: customers,
		scope:     scope,
		logger:    zap.NewNop(),
		cfg:       cfg,
		currency:  valueobject.Currency(cfg.Currency),
	}
	if s.currency == "" {
		s.currency = valueobject.DefaultCurrency
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recorder = NewActivityRecorder(activities, RecorderConfig{
		Cache:    s.cache,
		Currency: s.currency,
		Timeout:  cfg.ActivityTimeout,
		Logger:   s.logger,
		Metrics:  s.metrics,
	})
	return s
}

// ActivityRecorder returns the handler that turns ledger events into
// activity log entries. Subscribe it to the event bus.
func (s *LedgerService) ActivityRecorder() *ActivityRecorder {
	return s.recorder
}

// Currency returns the display currency of the ledgers
func (s *LedgerService) Currency() valueobject.Currency {
	return s.currency
}

// mutation is one read-modify-write attempt inside a transaction. It returns
// the mutated customer, or nil when nothing was written.
type mutation func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error)

// mutate runs fn in a transaction, retrying on a concurrency conflict. After
// commit the snapshot cache is refreshed and the customer's events are
// published.
func (s *LedgerService) mutate(ctx context.Context, span trace.Span, op string, customerID uuid.UUID, fn mutation) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperation(ctx, op, err, time.Since(start))
		if err != nil {
			telemetry.RecordError(span, err)
			telemetry.SetAttributes(span, telemetry.SpanAttrErrorKind, telemetry.OutcomeOf(err))
		}
	}()

	for attempt := 0; ; attempt++ {
		var customer *ledger.Customer
		err = s.bounded(ctx, func(ctx context.Context) error {
			return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
				c, err := fn(ctx, repos)
				customer = c
				return err
			})
		})
		if err == nil {
			s.afterCommit(ctx, customer)
			return nil
		}
		if shared.IsTransient(err) {
			// the write may have committed; drop the snapshot so the next read reloads
			s.invalidate(ctx, customerID)
		}
		if !shared.IsConcurrency(err) || attempt >= s.cfg.MaxConflictRetries {
			return err
		}

		s.metrics.RecordConflictRetry(ctx, op)
		telemetry.AddEvent(span, "conflict_retry", telemetry.SpanAttrAttempt, attempt+1)
		s.logger.Debug("Ledger version conflict, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1))
		if werr := wait(ctx, time.Duration(attempt+1)*s.cfg.RetryBackoff); werr != nil {
			return shared.Classify(werr)
		}
	}
}

// bounded runs fn under the operation timeout and classifies its failure
func (s *LedgerService) bounded(ctx context.Context, fn func(ctx context.Context) error) error {
	opCtx, cancel := s.withTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	err := fn(opCtx)
	if err == nil {
		return nil
	}
	if opCtx.Err() != nil && !isDomainError(err) {
		return shared.ErrTimeout.WithCause(opCtx.Err())
	}
	return shared.Classify(err)
}

func (s *LedgerService) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *LedgerService) afterCommit(ctx context.Context, customer *ledger.Customer) {
	if customer == nil {
		return
	}
	events := customer.GetDomainEvents()
	customer.ClearDomainEvents()

	if s.cache != nil {
		if err := s.cache.Set(ctx, customer); err != nil {
			s.logger.Warn("Failed to refresh ledger snapshot",
				zap.String("customer_id", customer.ID.String()),
				zap.Error(err))
			s.invalidate(ctx, customer.ID)
		}
	}
	if s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish ledger events",
				zap.String("customer_id", customer.ID.String()),
				zap.Int("events", len(events)),
				zap.Error(err))
		}
	}
}

func (s *LedgerService) invalidate(ctx context.Context, customerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), customerID); err != nil {
		s.logger.Warn("Failed to invalidate ledger snapshot",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}
}

// load reads the customer through the transactional repository
func load(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID) (*ledger.Customer, error) {
	return repos.Customers().FindByID(ctx, customerID)
}

func isDomainError(err error) bool {
	return shared.IsValidation(err) || shared.IsNotFound(err) || shared.IsConcurrency(err) || shared.IsTransient(err)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
