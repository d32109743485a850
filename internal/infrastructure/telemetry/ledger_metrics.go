package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome labels of ledger operations
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// LedgerMetrics records ledger operation counters and latencies.
type LedgerMetrics struct {
	operations      *Counter
	duration        *Histogram
	conflictRetries *Counter
	eventsDropped   *Counter
	activityFailed  *Counter
	installments    *Counter
	expenses        *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error

	if m.operations, err = NewCounter(meter, "ledger_operations_total",
		"Ledger operations by operation and outcome", "{operations}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "ledger_operation_duration_seconds",
		"Ledger operation latency", "s", OperationDurationBuckets...); err != nil {
		return nil, err
	}
	if m.conflictRetries, err = NewCounter(meter, "ledger_conflict_retries_total",
		"Optimistic concurrency conflicts retried by the service", "{retries}"); err != nil {
		return nil, err
	}
	if m.eventsDropped, err = NewCounter(meter, "ledger_events_dropped_total",
		"Domain events dropped because the delivery queue was full", "{events}"); err != nil {
		return nil, err
	}
	if m.activityFailed, err = NewCounter(meter, "ledger_activity_failures_total",
		"Activity log appends that failed and were swallowed", "{entries}"); err != nil {
		return nil, err
	}
	if m.installments, err = NewCounter(meter, "ledger_installments_total",
		"Installments received by payment mode", "{installments}"); err != nil {
		return nil, err
	}
	if m.expenses, err = NewCounter(meter, "ledger_expenses_total",
		"Expenses recorded by type", "{expenses}"); err != nil {
		return nil, err
	}
	return m, nil
}

// OutcomeOf maps an operation error to its outcome label
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Kind != "" {
		return string(de.Kind)
	}
	return OutcomeError
}

// RecordOperation counts one finished operation and its latency.
// Nil receivers are no-ops so services can run without metrics.
func (m *LedgerMetrics) RecordOperation(ctx context.Context, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.Inc(ctx, AttrOperation.String(operation), AttrOutcome.String(OutcomeOf(err)))
	m.duration.RecordDuration(ctx, elapsed, AttrOperation.String(operation))
}

// RecordConflictRetry counts a concurrency conflict that will be retried
func (m *LedgerMetrics) RecordConflictRetry(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.conflictRetries.Inc(ctx, AttrOperation.String(operation))
}

// RecordEventDropped counts an event discarded by a full queue
func (m *LedgerMetrics) RecordEventDropped(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventsDropped.Inc(ctx, AttrEventType.String(eventType))
}

// RecordActivityFailure counts a swallowed activity append failure
func (m *LedgerMetrics) RecordActivityFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.activityFailed.Inc(ctx)
}

// RecordInstallment counts an installment by payment mode
func (m *LedgerMetrics) RecordInstallment(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.installments.Inc(ctx, AttrPaymentMode.String(mode))
}

// RecordExpense counts an expense by type
func (m *LedgerMetrics) RecordExpense(ctx context.Context, expenseType string) {
	if m == nil {
		return
	}
	m.expenses.Inc(ctx, AttrExpenseType.String(expenseType))
}
