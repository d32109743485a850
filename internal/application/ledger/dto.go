package ledger

import (
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressRequest holds the optional postal fields of a customer
type AddressRequest struct {
	Line       string `json:"line" binding:"max=300"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

// RegisterCustomerRequest represents a request to register a customer
type RegisterCustomerRequest struct {
	Name    string         `json:"name" binding:"required,min=1,max=200"`
	Mobile  string         `json:"mobile" binding:"required,min=7,max=20"`
	Address AddressRequest `json:"address"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// AddWorkRequest represents a request to add a work to the registry
type AddWorkRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Category string `json:"category" binding:"required,max=100"`
}

// RecordUsageRequest represents a material consumption. Quantity is kept
// raw so the ledger reports non-numeric input as a validation error.
type RecordUsageRequest struct {
	WorkID     uuid.UUID `json:"work_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   string    `json:"quantity"`
	RequestKey string    `json:"-"`
}

// CreatePaymentRequest represents a contracted amount for a work
type CreatePaymentRequest struct {
	WorkID      uuid.UUID       `json:"work_id"`
	TotalAmount decimal.Decimal `json:"total_amount" swaggertype:"string" example:"150000.00"`
}

// AddInstallmentRequest represents a partial receipt against a payment
type AddInstallmentRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"25000.00"`
	PaymentDate *time.Time      `json:"payment_date"`
	PaymentMode string          `json:"payment_mode" binding:"required"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

// AddExpenseRequest represents a cost attributed to a work
type AddExpenseRequest struct {
	WorkID      uuid.UUID       `json:"work_id"`
	ExpenseType string          `json:"expense_type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"1800.00"`
	ExpenseDate *time.Time      `json:"expense_date"`
	Description string          `json:"description" binding:"max=1000"`
}

// AppendActivityRequest represents a manual activity log entry
type AppendActivityRequest struct {
	Type        string `json:"type" binding:"max=50"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=1000"`
}

// CustomerResponse represents customer identity fields in list responses
type CustomerResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Mobile    string         `json:"mobile"`
	Address   ledger.Address `json:"address"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *ledger.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Mobile:    c.Mobile,
		Address:   c.Address,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// PaymentSummary is a payment with its derived receipt totals
type PaymentSummary struct {
	ledger.Payment
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Settled     bool            `json:"settled"`
}

// ToPaymentSummary derives the receipt totals of p
func ToPaymentSummary(p *ledger.Payment) PaymentSummary {
	return PaymentSummary{
		Payment:     *p,
		Received:    p.Received(),
		Outstanding: p.Outstanding(),
		Settled:     p.IsSettled(),
	}
}

// LedgerResponse is the full snapshot of a customer with every ledger and
// the overall analytics computed from it.
type LedgerResponse struct {
	CustomerResponse
	Works      []ledger.Work          `json:"works"`
	Materials  []ledger.MaterialUsage `json:"materials"`
	Payments   []PaymentSummary       `json:"payments"`
	Expenses   []ledger.Expense       `json:"expenses"`
	Activities []ledger.ActivityEntry `json:"activities"`
	Overall    ledger.Analytics       `json:"overall"`
	Currency   string                 `json:"currency"`
}

// ToLedgerResponse converts a customer snapshot to LedgerResponse
func ToLedgerResponse(c *ledger.Customer, currency string) LedgerResponse {
	payments := make([]PaymentSummary, len(c.Payments))
	for i := range c.Payments {
		payments[i] = ToPaymentSummary(&c.Payments[i])
	}
	return LedgerResponse{
		CustomerResponse: ToCustomerResponse(c),
		Works:            nonNil(c.Works),
		Materials:        nonNil(c.Materials),
		Payments:         payments,
		Expenses:         nonNil(c.Expenses),
		Activities:       nonNil(c.Activities),
		Overall:          ledger.Overall(c),
		Currency:         currency,
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// UsageResult is the outcome of recording a material consumption
type UsageResult struct {
	Entry          ledger.MaterialUsage `json:"entry"`
	RemainingStock decimal.Decimal      `json:"remaining_stock"`
	Warnings       []string             `json:"warnings,omitempty"`
	// Replayed is true when the request key matched an existing entry and
	// nothing was written.
	Replayed bool `json:"replayed"`
}

// Warning texts attached to successful results
const (
	WarningUnpricedMaterial = "Material has no unit price; the entry was recorded at zero cost"
)
