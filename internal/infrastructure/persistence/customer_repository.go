package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements ledger.CustomerRepository using GORM.
// The customer row carries the aggregate version; every append moves it
// forward with a compare-and-set before inserting the child row.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID loads the customer and all ledger collections
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Customer, error) {
	db := r.db.WithContext(ctx)

	var m models.CustomerModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ledger.ErrCustomerNotFound)
	}
	c := m.ToDomain()

	if err := r.loadLedgers(db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *GormCustomerRepository) loadLedgers(db *gorm.DB, c *ledger.Customer) error {
	var works []models.WorkModel
	if err := db.Where("customer_id = ?", c.ID).Order("created_at ASC, id ASC").Find(&works).Error; err != nil {
		return fmt.Errorf("load works: %w", err)
	}
	for i := range works {
		c.Works = append(c.Works, works[i].ToDomain())
	}

	var usages []models.MaterialUsageModel
	if err := db.Where("customer_id = ?", c.ID).Order("added_at ASC, id ASC").Find(&usages).Error; err != nil {
		return fmt.Errorf("load material usages: %w", err)
	}
	for i := range usages {
		c.Materials = append(c.Materials, usages[i].ToDomain())
	}

	var payments []models.PaymentModel
	if err := db.Where("customer_id = ?", c.ID).Order("created_at ASC, id ASC").Find(&payments).Error; err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	var installments []models.InstallmentModel
	if err := db.Where("customer_id = ?", c.ID).Order("created_at ASC, id ASC").Find(&installments).Error; err != nil {
		return fmt.Errorf("load installments: %w", err)
	}
	byPayment := make(map[uuid.UUID][]ledger.Installment, len(payments))
	for i := range installments {
		inst := installments[i].ToDomain()
		byPayment[inst.PaymentID] = append(byPayment[inst.PaymentID], inst)
	}
	for i := range payments {
		p := payments[i].ToDomain()
		if list, ok := byPayment[p.ID]; ok {
			p.Installments = list
		}
		c.Payments = append(c.Payments, p)
	}

	var expenses []models.ExpenseModel
	if err := db.Where("customer_id = ?", c.ID).Order("created_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	for i := range expenses {
		c.Expenses = append(c.Expenses, expenses[i].ToDomain())
	}

	activities, err := findActivities(db, c.ID, 0)
	if err != nil {
		return err
	}
	c.Activities = activities
	return nil
}

// FindByMobile finds the customer holding mobile; ledgers are not loaded
func (r *GormCustomerRepository) FindByMobile(ctx context.Context, mobile string) (*ledger.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "mobile = ?", mobile).Error; err != nil {
		return nil, notFound(err, ledger.ErrCustomerNotFound)
	}
	return m.ToDomain(), nil
}

// FindAll lists customers matching the filter; ledgers are not loaded
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Customer, error) {
	var rows []models.CustomerModel
	q := applyListFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}),
		filter, CustomerSortFields, "created_at", "name", "mobile", "city")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.Customer, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts customers matching the filter search
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	q := applySearch(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter.Search, "name", "mobile", "city")
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a newly registered customer
func (r *GormCustomerRepository) Create(ctx context.Context, c *ledger.Customer) error {
	err := r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(c)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ledger.ErrDuplicateMobile
	}
	return err
}

// AppendWork persists a work added to the registry
func (r *GormCustomerRepository) AppendWork(ctx context.Context, c *ledger.Customer, w *ledger.Work) error {
	return r.appendEntry(ctx, c, models.WorkModelFromDomain(c.ID, w))
}

// AppendMaterialUsage persists a consumption entry
func (r *GormCustomerRepository) AppendMaterialUsage(ctx context.Context, c *ledger.Customer, u *ledger.MaterialUsage) error {
	return r.appendEntry(ctx, c, models.MaterialUsageModelFromDomain(c.ID, u))
}

// AppendPayment persists a payment
func (r *GormCustomerRepository) AppendPayment(ctx context.Context, c *ledger.Customer, p *ledger.Payment) error {
	return r.appendEntry(ctx, c, models.PaymentModelFromDomain(c.ID, p))
}

// AppendInstallment persists an installment under its payment
func (r *GormCustomerRepository) AppendInstallment(ctx context.Context, c *ledger.Customer, i *ledger.Installment) error {
	return r.appendEntry(ctx, c, models.InstallmentModelFromDomain(c.ID, i))
}

// AppendExpense persists an expense
func (r *GormCustomerRepository) AppendExpense(ctx context.Context, c *ledger.Customer, e *ledger.Expense) error {
	return r.appendEntry(ctx, c, models.ExpenseModelFromDomain(c.ID, e))
}

// appendEntry advances the customer version from ExpectedVersion to Version
// and inserts row. Both happen in one transaction (a savepoint when already
// inside one).
func (r *GormCustomerRepository) appendEntry(ctx context.Context, c *ledger.Customer, row any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CustomerModel{}).
			Where("id = ? AND version = ?", c.ID, c.ExpectedVersion()).
			Updates(map[string]any{
				"version":    c.Version,
				"updated_at": c.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return shared.NewConcurrencyError("CUSTOMER_VERSION_CONFLICT",
				"Customer ledger was modified by another request")
		}
		if err := tx.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists.WithCause(err)
			}
			return err
		}
		return nil
	})
}

var _ ledger.CustomerRepository = (*GormCustomerRepository)(nil)
