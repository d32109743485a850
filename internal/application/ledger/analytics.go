package ledger

import (
	"context"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrWorkNotFound is returned when a work id does not resolve for the customer
var ErrWorkNotFound = shared.NewNotFoundError("WORK_NOT_FOUND", "Work not found")

// WorkAnalytics computes the roll-up of one work from the current snapshot
func (s *LedgerService) WorkAnalytics(ctx context.Context, customerID, workID uuid.UUID) (*ledger.Analytics, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if _, ok := customer.FindWork(workID); !ok {
		return nil, ErrWorkNotFound
	}
	a := ledger.PerWork(customer, workID)
	return &a, nil
}

// OverallAnalytics computes the roll-up across every work of the customer
func (s *LedgerService) OverallAnalytics(ctx context.Context, customerID uuid.UUID) (*ledger.Analytics, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	a := ledger.Overall(customer)
	return &a, nil
}

// Breakdown computes per-work analytics plus the overall roll-up
func (s *LedgerService) Breakdown(ctx context.Context, customerID uuid.UUID) (*ledger.Report, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	report := ledger.Breakdown(customer)
	return &report, nil
}
