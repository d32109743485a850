package models

import (
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the customer aggregate root.
// Ledger collections live in their own tables.
type CustomerModel struct {
	AggregateModel
	Name       string `gorm:"type:varchar(200);not null"`
	Mobile     string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Line       string `gorm:"column:address_line;type:varchar(500)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a customer without ledger collections
func (m *CustomerModel) ToDomain() *ledger.Customer {
	return &ledger.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Mobile:            m.Mobile,
		Address: ledger.Address{
			Line:       m.Line,
			City:       m.City,
			State:      m.State,
			PostalCode: m.PostalCode,
		},
		Works:      []ledger.Work{},
		Materials:  []ledger.MaterialUsage{},
		Payments:   []ledger.Payment{},
		Expenses:   []ledger.Expense{},
		Activities: []ledger.ActivityEntry{},
	}
}

// CustomerModelFromDomain creates a persistence model from a customer
func CustomerModelFromDomain(c *ledger.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:       c.Name,
		Mobile:     c.Mobile,
		Line:       c.Address.Line,
		City:       c.Address.City,
		State:      c.Address.State,
		PostalCode: c.Address.PostalCode,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// WorkModel is a row of the work registry
type WorkModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Category   string    `gorm:"type:varchar(100);not null"`
	Status     string    `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkModel) TableName() string {
	return "works"
}

// ToDomain converts the model to a Work
func (m *WorkModel) ToDomain() ledger.Work {
	return ledger.Work{
		ID:        m.ID,
		Title:     m.Title,
		Category:  m.Category,
		Status:    ledger.WorkStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// WorkModelFromDomain creates a persistence model from a Work
func WorkModelFromDomain(customerID uuid.UUID, w *ledger.Work) *WorkModel {
	return &WorkModel{
		ID:         w.ID,
		CustomerID: customerID,
		Title:      w.Title,
		Category:   w.Category,
		Status:     string(w.Status),
		CreatedAt:  w.CreatedAt,
	}
}

// MaterialUsageModel is a row of the material consumption ledger. RequestKey
// is unique per customer when set; the partial unique index lives in the
// migrations.
type MaterialUsageModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkTitle    string          `gorm:"type:varchar(200);not null"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	Category     string          `gorm:"type:varchar(100)"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RequestKey   *string         `gorm:"type:varchar(100)"`
	AddedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MaterialUsageModel) TableName() string {
	return "material_usages"
}

// ToDomain converts the model to a MaterialUsage
func (m *MaterialUsageModel) ToDomain() ledger.MaterialUsage {
	u := ledger.MaterialUsage{
		ID:           m.ID,
		WorkID:       m.WorkID,
		WorkTitle:    m.WorkTitle,
		MaterialID:   m.MaterialID,
		MaterialName: m.MaterialName,
		Category:     m.Category,
		Unit:         m.Unit,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TotalCost:    m.TotalCost,
		AddedAt:      m.AddedAt,
	}
	if m.RequestKey != nil {
		u.RequestKey = *m.RequestKey
	}
	return u
}

// MaterialUsageModelFromDomain creates a persistence model from a MaterialUsage
func MaterialUsageModelFromDomain(customerID uuid.UUID, u *ledger.MaterialUsage) *MaterialUsageModel {
	m := &MaterialUsageModel{
		ID:           u.ID,
		CustomerID:   customerID,
		WorkID:       u.WorkID,
		WorkTitle:    u.WorkTitle,
		MaterialID:   u.MaterialID,
		MaterialName: u.MaterialName,
		Category:     u.Category,
		Unit:         u.Unit,
		Quantity:     u.Quantity,
		UnitPrice:    u.UnitPrice,
		TotalCost:    u.TotalCost,
		AddedAt:      u.AddedAt,
	}
	if u.RequestKey != "" {
		key := u.RequestKey
		m.RequestKey = &key
	}
	return m
}

// PaymentModel is a row of the payment ledger
type PaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkTitle   string          `gorm:"type:varchar(200);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a Payment with no installments attached
func (m *PaymentModel) ToDomain() ledger.Payment {
	return ledger.Payment{
		ID:           m.ID,
		WorkID:       m.WorkID,
		WorkTitle:    m.WorkTitle,
		TotalAmount:  m.TotalAmount,
		Installments: []ledger.Installment{},
		CreatedAt:    m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a Payment
func PaymentModelFromDomain(customerID uuid.UUID, p *ledger.Payment) *PaymentModel {
	return &PaymentModel{
		ID:          p.ID,
		CustomerID:  customerID,
		WorkID:      p.WorkID,
		WorkTitle:   p.WorkTitle,
		TotalAmount: p.TotalAmount,
		CreatedAt:   p.CreatedAt,
	}
}

// InstallmentModel is a row of the installments table
type InstallmentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Mode        string          `gorm:"column:payment_mode;type:varchar(20);not null"`
	Notes       string          `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the model to an Installment
func (m *InstallmentModel) ToDomain() ledger.Installment {
	return ledger.Installment{
		ID:          m.ID,
		PaymentID:   m.PaymentID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		Mode:        ledger.PaymentMode(m.Mode),
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}

// InstallmentModelFromDomain creates a persistence model from an Installment
func InstallmentModelFromDomain(customerID uuid.UUID, i *ledger.Installment) *InstallmentModel {
	return &InstallmentModel{
		ID:          i.ID,
		CustomerID:  customerID,
		PaymentID:   i.PaymentID,
		Amount:      i.Amount,
		PaymentDate: i.PaymentDate,
		Mode:        string(i.Mode),
		Notes:       i.Notes,
		CreatedAt:   i.CreatedAt,
	}
}

// ExpenseModel is a row of the expense ledger
type ExpenseModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkTitle   string          `gorm:"type:varchar(200);not null"`
	Type        string          `gorm:"column:expense_type;type:varchar(30);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpenseDate time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the model to an Expense
func (m *ExpenseModel) ToDomain() ledger.Expense {
	return ledger.Expense{
		ID:          m.ID,
		WorkID:      m.WorkID,
		WorkTitle:   m.WorkTitle,
		Type:        ledger.ExpenseType(m.Type),
		Amount:      m.Amount,
		ExpenseDate: m.ExpenseDate,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ExpenseModelFromDomain creates a persistence model from an Expense
func ExpenseModelFromDomain(customerID uuid.UUID, e *ledger.Expense) *ExpenseModel {
	return &ExpenseModel{
		ID:          e.ID,
		CustomerID:  customerID,
		WorkID:      e.WorkID,
		WorkTitle:   e.WorkTitle,
		Type:        string(e.Type),
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// ActivityModel is a row of the activity log
type ActivityModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index:idx_activities_customer_ts,priority:1"`
	Type        string    `gorm:"column:activity_type;type:varchar(40);not null"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Timestamp   time.Time `gorm:"column:occurred_at;not null;index:idx_activities_customer_ts,priority:2"`
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// ToDomain converts the model to an ActivityEntry
func (m *ActivityModel) ToDomain() ledger.ActivityEntry {
	return ledger.ActivityEntry{
		ID:          m.ID,
		Type:        ledger.ActivityType(m.Type),
		Title:       m.Title,
		Description: m.Description,
		Timestamp:   m.Timestamp,
	}
}

// ActivityModelFromDomain creates a persistence model from an ActivityEntry
func ActivityModelFromDomain(customerID uuid.UUID, a ledger.ActivityEntry) *ActivityModel {
	return &ActivityModel{
		ID:          a.ID,
		CustomerID:  customerID,
		Type:        string(a.Type),
		Title:       a.Title,
		Description: a.Description,
		Timestamp:   a.Timestamp,
	}
}

// All returns every model the ledger schema consists of, in dependency order.
func All() []any {
	return []any{
		&MaterialModel{},
		&CustomerModel{},
		&WorkModel{},
		&MaterialUsageModel{},
		&PaymentModel{},
		&InstallmentModel{},
		&ExpenseModel{},
		&ActivityModel{},
	}
}
