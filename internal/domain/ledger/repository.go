package ledger

import (
	"context"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository persists the customer aggregate. Every Append method
// inserts one ledger entry and moves the stored customer version from
// customer.Version-1 to customer.Version in the same statement batch; when
// the stored version differs it returns a concurrency error and writes
// nothing.
type CustomerRepository interface {
	// FindByID loads the customer with every ledger collection
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByMobile loads identity fields of the customer holding mobile
	FindByMobile(ctx context.Context, mobile string) (*Customer, error)

	// FindAll lists customers (identity fields only)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter search
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a newly registered customer
	Create(ctx context.Context, customer *Customer) error

	// AppendWork persists a work added to the registry
	AppendWork(ctx context.Context, customer *Customer, work *Work) error

	// AppendMaterialUsage persists a consumption entry
	AppendMaterialUsage(ctx context.Context, customer *Customer, usage *MaterialUsage) error

	// AppendPayment persists a payment
	AppendPayment(ctx context.Context, customer *Customer, payment *Payment) error

	// AppendInstallment persists an installment under its payment
	AppendInstallment(ctx context.Context, customer *Customer, installment *Installment) error

	// AppendExpense persists an expense
	AppendExpense(ctx context.Context, customer *Customer, expense *Expense) error
}

// ActivityRepository persists the activity log. Appends are not guarded by
// the customer version and use set-union semantics: appending an entry whose
// id already exists is a no-op.
type ActivityRepository interface {
	// Append stores entry for the customer
	Append(ctx context.Context, customerID uuid.UUID, entry ActivityEntry) error

	// FindByCustomer returns the newest entries first; limit <= 0 means all
	FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]ActivityEntry, error)
}
