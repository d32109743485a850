package ledger

import (
	"context"
	"errors"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddWork appends an ongoing work to the customer's registry
func (s *LedgerService) AddWork(ctx context.Context, customerID uuid.UUID, req AddWorkRequest) (*ledger.Work, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "add_work", telemetry.SpanAttrCustomerID, customerID)
	defer span.End()

	var work *ledger.Work
	err := s.mutate(ctx, span, "add_work", customerID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		customer, err := load(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		w, err := customer.AddWork(req.Title, req.Category)
		if err != nil {
			return nil, err
		}
		if err := repos.Customers().AppendWork(ctx, customer, w); err != nil {
			return nil, err
		}
		work = w
		return customer, nil
	})
	if err != nil {
		return nil, err
	}
	return work, nil
}

// ListWorks returns the works of a customer in registration order
func (s *LedgerService) ListWorks(ctx context.Context, customerID uuid.UUID) ([]ledger.Work, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return nonNil(customer.Works), nil
}

// RecordUsage draws quantity of a catalog material for a work of the
// customer. The stock decrement and the consumption entry commit together.
// A request key already recorded for the customer returns the existing
// entry without writing, so a caller may retry after a transient failure.
func (s *LedgerService) RecordUsage(ctx context.Context, customerID uuid.UUID, req RecordUsageRequest) (*UsageResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "record_usage",
		telemetry.SpanAttrCustomerID, customerID,
		telemetry.SpanAttrWorkID, req.WorkID,
		telemetry.SpanAttrMaterialID, req.MaterialID)
	defer span.End()
	if req.RequestKey != "" {
		telemetry.SetAttributes(span, telemetry.SpanAttrRequestKey, req.RequestKey)
	}

	if req.WorkID == uuid.Nil {
		return nil, shared.NewValidationError("WORK_REQUIRED", "Work is required")
	}
	if req.MaterialID == uuid.Nil {
		return nil, shared.NewValidationError("MATERIAL_REQUIRED", "Material is required")
	}
	quantity, err := ledger.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrQuantity, quantity)

	var result *UsageResult
	err = s.mutate(ctx, span, "record_usage", customerID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		result = nil
		customer, err := load(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		if existing, ok := customer.FindUsageByRequestKey(req.RequestKey); ok {
			// the stored entry wins over the retried body
			stock, err := repos.Materials().FindByID(ctx, existing.MaterialID)
			if err != nil {
				return nil, err
			}
			result = &UsageResult{Entry: *existing, RemainingStock: stock.RemainingQuantity, Replayed: true}
			return nil, nil
		}
		material, err := repos.Materials().FindByID(ctx, req.MaterialID)
		if err != nil {
			return nil, err
		}

		usage, err := customer.RecordMaterialUsage(req.WorkID, material, quantity, req.RequestKey)
		if err != nil {
			return nil, err
		}
		if err := repos.Materials().SaveConsumption(ctx, material, quantity); err != nil {
			return nil, err
		}
		if err := repos.Customers().AppendMaterialUsage(ctx, customer, usage); err != nil {
			if req.RequestKey != "" && errors.Is(err, shared.ErrAlreadyExists) {
				// a concurrent request stored the key first; re-read and replay
				return nil, shared.ErrConcurrencyConflict.WithCause(err)
			}
			return nil, err
		}
		material.ClearDomainEvents()

		result = &UsageResult{Entry: *usage, RemainingStock: material.RemainingQuantity}
		if usage.IsUnpriced() {
			result.Warnings = append(result.Warnings, WarningUnpricedMaterial)
		}
		return customer, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		telemetry.AddEvent(span, telemetry.SpanAttrIdempotent, telemetry.SpanAttrRequestKey, req.RequestKey)
		s.logger.Info("Material usage replayed for request key",
			zap.String("customer_id", customerID.String()),
			zap.String("usage_id", result.Entry.ID.String()),
			zap.String("request_key", req.RequestKey))
		return result, nil
	}
	if len(result.Warnings) > 0 {
		s.logger.Warn("Material usage recorded at zero unit price",
			zap.String("customer_id", customerID.String()),
			zap.String("material_id", req.MaterialID.String()))
	}
	return result, nil
}
