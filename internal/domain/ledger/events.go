package ledger

import (
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerRegistered    = "CustomerRegistered"
	EventTypeWorkAdded             = "WorkAdded"
	EventTypeMaterialUsageRecorded = "MaterialUsageRecorded"
	EventTypePaymentCreated        = "PaymentCreated"
	EventTypeInstallmentReceived   = "InstallmentReceived"
	EventTypeExpenseAdded          = "ExpenseAdded"
)

// LedgerEventTypes lists the events that produce activity log entries
var LedgerEventTypes = []string{
	EventTypeCustomerRegistered,
	EventTypeWorkAdded,
	EventTypeMaterialUsageRecorded,
	EventTypePaymentCreated,
	EventTypeInstallmentReceived,
	EventTypeExpenseAdded,
}

// CustomerRegisteredEvent is raised when a customer is registered
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
}

// NewCustomerRegisteredEvent creates a new CustomerRegisteredEvent
func NewCustomerRegisteredEvent(c *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		Name:            c.Name,
		Mobile:          c.Mobile,
	}
}

// WorkAddedEvent is raised when a work is added to a customer
type WorkAddedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	WorkID     uuid.UUID `json:"work_id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
}

// NewWorkAddedEvent creates a new WorkAddedEvent
func NewWorkAddedEvent(c *Customer, w Work) *WorkAddedEvent {
	return &WorkAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkAdded, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		WorkID:          w.ID,
		Title:           w.Title,
		Category:        w.Category,
	}
}

// MaterialUsageRecordedEvent is raised when material is consumed for a work
type MaterialUsageRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID     uuid.UUID       `json:"customer_id"`
	UsageID        uuid.UUID       `json:"usage_id"`
	WorkID         uuid.UUID       `json:"work_id"`
	WorkTitle      string          `json:"work_title"`
	MaterialID     uuid.UUID       `json:"material_id"`
	MaterialName   string          `json:"material_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	RemainingStock decimal.Decimal `json:"remaining_stock"`
}

// NewMaterialUsageRecordedEvent creates a new MaterialUsageRecordedEvent
func NewMaterialUsageRecordedEvent(c *Customer, u MaterialUsage, remaining decimal.Decimal) *MaterialUsageRecordedEvent {
	return &MaterialUsageRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialUsageRecorded, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		UsageID:         u.ID,
		WorkID:          u.WorkID,
		WorkTitle:       u.WorkTitle,
		MaterialID:      u.MaterialID,
		MaterialName:    u.MaterialName,
		Unit:            u.Unit,
		Quantity:        u.Quantity,
		TotalCost:       u.TotalCost,
		RemainingStock:  remaining,
	}
}

// PaymentCreatedEvent is raised when a contracted amount is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	WorkID      uuid.UUID       `json:"work_id"`
	WorkTitle   string          `json:"work_title"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(c *Customer, p Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		PaymentID:       p.ID,
		WorkID:          p.WorkID,
		WorkTitle:       p.WorkTitle,
		TotalAmount:     p.TotalAmount,
	}
}

// InstallmentReceivedEvent is raised when a partial receipt is recorded
type InstallmentReceivedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	WorkTitle     string          `json:"work_title"`
	Amount        decimal.Decimal `json:"amount"`
	Mode          PaymentMode     `json:"payment_mode"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// NewInstallmentReceivedEvent creates a new InstallmentReceivedEvent
func NewInstallmentReceivedEvent(c *Customer, p *Payment, i Installment) *InstallmentReceivedEvent {
	return &InstallmentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentReceived, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		PaymentID:       p.ID,
		InstallmentID:   i.ID,
		WorkTitle:       p.WorkTitle,
		Amount:          i.Amount,
		Mode:            i.Mode,
		Outstanding:     p.Outstanding(),
	}
}

// ExpenseAddedEvent is raised when an expense is recorded against a work
type ExpenseAddedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	ExpenseID   uuid.UUID       `json:"expense_id"`
	WorkID      uuid.UUID       `json:"work_id"`
	WorkTitle   string          `json:"work_title"`
	ExpenseType ExpenseType     `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewExpenseAddedEvent creates a new ExpenseAddedEvent
func NewExpenseAddedEvent(c *Customer, e Expense) *ExpenseAddedEvent {
	return &ExpenseAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseAdded, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		ExpenseID:       e.ID,
		WorkID:          e.WorkID,
		WorkTitle:       e.WorkTitle,
		ExpenseType:     e.Type,
		Amount:          e.Amount,
	}
}
