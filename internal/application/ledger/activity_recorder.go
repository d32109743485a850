package ledger

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/domain/shared/valueobject"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultActivityTimeout = 2 * time.Second

// RecorderConfig holds the collaborators of an ActivityRecorder
type RecorderConfig struct {
	Cache    SnapshotCache
	Currency valueobject.Currency
	Timeout  time.Duration
	Logger   *zap.Logger
	Metrics  *telemetry.LedgerMetrics
}

// ActivityRecorder appends activity log entries. As an event handler it
// derives one entry per ledger event, keyed by the event id. Failures are
// logged and counted, never returned: the activity log is best effort.
type ActivityRecorder struct {
	repo     ledger.ActivityRepository
	cache    SnapshotCache
	currency valueobject.Currency
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *telemetry.LedgerMetrics
}

// NewActivityRecorder creates a new ActivityRecorder
func NewActivityRecorder(repo ledger.ActivityRepository, cfg RecorderConfig) *ActivityRecorder {
	r := &ActivityRecorder{
		repo:     repo,
		cache:    cfg.Cache,
		currency: cfg.Currency,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.timeout <= 0 {
		r.timeout = defaultActivityTimeout
	}
	if r.currency == "" {
		r.currency = valueobject.DefaultCurrency
	}
	return r
}

// Handle implements shared.EventHandler
func (r *ActivityRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry, ok := ledger.ActivityForEvent(event, r.currency)
	if !ok {
		return nil
	}
	r.Record(ctx, event.AggregateID(), entry)
	return nil
}

// EventTypes implements shared.EventHandler
func (r *ActivityRecorder) EventTypes() []string {
	return ledger.LedgerEventTypes
}

// Record persists entry and prepends it to the cached snapshot. It reports
// whether the entry was persisted.
func (r *ActivityRecorder) Record(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.Append(ctx, customerID, entry); err != nil {
		r.metrics.RecordActivityFailure(ctx)
		r.logger.Warn("Failed to append activity entry",
			zap.String("customer_id", customerID.String()),
			zap.String("activity_id", entry.ID.String()),
			zap.String("type", string(entry.Type)),
			zap.Error(err))
		return false
	}

	if r.cache == nil {
		return true
	}
	if err := r.cache.MergeActivity(ctx, customerID, entry); err != nil {
		r.logger.Debug("Failed to merge activity into cached snapshot",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}
	return true
}

// List returns the newest entries of a customer
func (r *ActivityRecorder) List(ctx context.Context, customerID uuid.UUID, limit int) ([]ledger.ActivityEntry, error) {
	return r.repo.FindByCustomer(ctx, customerID, limit)
}

var _ shared.EventHandler = (*ActivityRecorder)(nil)
