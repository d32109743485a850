package ledger

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterCustomer creates a customer with empty ledgers. The mobile number
// identifies a customer and must be unique.
func (s *LedgerService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "register_customer")
	defer span.End()

	customer, err := ledger.NewCustomer(req.Name, req.Mobile, ledger.Address{
		Line:       req.Address.Line,
		City:       req.Address.City,
		State:      req.Address.State,
		PostalCode: req.Address.PostalCode,
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, customer.ID)

	err = s.mutate(ctx, span, "register_customer", customer.ID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		existing, err := repos.Customers().FindByMobile(ctx, customer.Mobile)
		if err == nil && existing != nil {
			return nil, ledger.ErrDuplicateMobile
		}
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if err := repos.Customers().Create(ctx, customer); err != nil {
			return nil, err
		}
		return customer, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("mobile", customer.Mobile))
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetLedger returns the full ledger snapshot of a customer
func (s *LedgerService) GetLedger(ctx context.Context, customerID uuid.UUID) (*LedgerResponse, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToLedgerResponse(customer, string(s.currency))
	return &resp, nil
}

// ListCustomers returns a page of customers ordered by name
func (s *LedgerService) ListCustomers(ctx context.Context, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, Search: filter.Search, OrderBy: "name", OrderDir: "asc"}.Normalize()

	var (
		customers []ledger.Customer
		total     int64
	)
	err := s.bounded(ctx, func(ctx context.Context) error {
		var err error
		if customers, err = s.customers.FindAll(ctx, f); err != nil {
			return err
		}
		total, err = s.customers.Count(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// snapshot returns the customer from the cache, loading and caching it on
// a miss. Cache failures degrade to a database read.
func (s *LedgerService) snapshot(ctx context.Context, customerID uuid.UUID) (*ledger.Customer, error) {
	start := time.Now()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, customerID)
		if err != nil {
			s.logger.Warn("Ledger snapshot cache read failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err))
		}
		if ok {
			s.metrics.RecordOperation(ctx, "get_ledger", nil, time.Since(start))
			return cached, nil
		}
	}

	var customer *ledger.Customer
	err := s.bounded(ctx, func(ctx context.Context) error {
		var err error
		customer, err = s.customers.FindByID(ctx, customerID)
		return err
	})
	s.metrics.RecordOperation(ctx, "get_ledger", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, customer); err != nil {
			s.logger.Warn("Failed to cache ledger snapshot",
				zap.String("customer_id", customerID.String()),
				zap.Error(err))
		}
	}
	return customer, nil
}
