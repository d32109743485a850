package ledger

import (
	"strings"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseType represents the category of a work expense
type ExpenseType string

const (
	ExpenseTypeLabour         ExpenseType = "Labour"
	ExpenseTypeTransportation ExpenseType = "Transportation"
	ExpenseTypeTools          ExpenseType = "Tools"
	ExpenseTypeMiscellaneous  ExpenseType = "Miscellaneous"
	ExpenseTypeOther          ExpenseType = "Other"
)

// ExpenseTypes lists every accepted expense type
var ExpenseTypes = []ExpenseType{
	ExpenseTypeLabour, ExpenseTypeTransportation, ExpenseTypeTools, ExpenseTypeMiscellaneous, ExpenseTypeOther,
}

// IsValid checks if the type is a valid ExpenseType
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseTypeLabour, ExpenseTypeTransportation, ExpenseTypeTools,
		ExpenseTypeMiscellaneous, ExpenseTypeOther:
		return true
	}
	return false
}

// String returns the string representation of ExpenseType
func (t ExpenseType) String() string {
	return string(t)
}

// ParseExpenseType matches raw case-insensitively against the known types
func ParseExpenseType(raw string) (ExpenseType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", shared.NewValidationError("INVALID_EXPENSE_TYPE", "Expense type is required")
	}
	for _, t := range ExpenseTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", shared.NewValidationError("INVALID_EXPENSE_TYPE",
		"Expense type must be one of: Labour, Transportation, Tools, Miscellaneous, Other")
}

// Expense is a cost attributed to a work, independent of materials
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	WorkID      uuid.UUID       `json:"work_id"`
	WorkTitle   string          `json:"work_title"`
	Type        ExpenseType     `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AddExpense records an expense against an existing work
func (c *Customer) AddExpense(workID uuid.UUID, expenseType ExpenseType, amount decimal.Decimal, expenseDate time.Time, description string) (*Expense, error) {
	if workID == uuid.Nil {
		return nil, shared.NewValidationError("WORK_REQUIRED", "Work is required")
	}
	if !expenseType.IsValid() {
		return nil, shared.NewValidationError("INVALID_EXPENSE_TYPE",
			"Expense type must be one of: Labour, Transportation, Tools, Miscellaneous, Other")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if !shared.FitsScale(amount) {
		return nil, errAmountScale
	}
	if len(description) > 1000 {
		return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}
	work, ok := c.FindWork(workID)
	if !ok {
		return nil, shared.NewNotFoundError("WORK_NOT_FOUND", "Work not found")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	expense := Expense{
		ID:          uuid.New(),
		WorkID:      workID,
		WorkTitle:   work.Title,
		Type:        expenseType,
		Amount:      amount,
		ExpenseDate: expenseDate,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}
	c.Expenses = append(c.Expenses, expense)
	c.IncrementVersion()
	c.AddDomainEvent(NewExpenseAddedEvent(c, expense))

	return &expense, nil
}
