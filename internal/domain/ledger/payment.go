package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode is how an installment was received
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "Cash"
	PaymentModeCard         PaymentMode = "Card"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeBankTransfer PaymentMode = "Bank Transfer"
	PaymentModeCheque       PaymentMode = "Cheque"
)

// PaymentModes lists every accepted payment mode
var PaymentModes = []PaymentMode{
	PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeBankTransfer, PaymentModeCheque,
}

// IsValid checks if the mode is a valid PaymentMode
func (m PaymentMode) IsValid() bool {
	for _, pm := range PaymentModes {
		if m == pm {
			return true
		}
	}
	return false
}

// ParsePaymentMode matches raw case-insensitively against the known modes
func ParsePaymentMode(raw string) (PaymentMode, error) {
	raw = strings.TrimSpace(raw)
	for _, pm := range PaymentModes {
		if strings.EqualFold(raw, string(pm)) {
			return pm, nil
		}
	}
	return "", shared.NewValidationError("INVALID_PAYMENT_MODE",
		"Payment mode must be one of: Cash, Card, UPI, Bank Transfer, Cheque")
}

// NormalizePaymentMode maps raw to its canonical mode, case-insensitively.
// An unknown mode is returned trimmed and fails PaymentMode.IsValid.
func NormalizePaymentMode(raw string) PaymentMode {
	if pm, err := ParsePaymentMode(raw); err == nil {
		return pm
	}
	return PaymentMode(strings.TrimSpace(raw))
}

// Payment is the contracted total amount owed for a work
type Payment struct {
	ID           uuid.UUID       `json:"id"`
	WorkID       uuid.UUID       `json:"work_id"`
	WorkTitle    string          `json:"work_title"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Installments []Installment   `json:"installments"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Installment is a partial receipt against a payment
type Installment struct {
	ID          uuid.UUID       `json:"id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Mode        PaymentMode     `json:"payment_mode"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Received returns the sum of all installments
func (p *Payment) Received() decimal.Decimal {
	total := decimal.Zero
	for _, i := range p.Installments {
		total = total.Add(i.Amount)
	}
	return total
}

// Outstanding returns the amount still to be received
func (p *Payment) Outstanding() decimal.Decimal {
	return p.TotalAmount.Sub(p.Received())
}

// IsSettled reports whether the payment has been received in full
func (p *Payment) IsSettled() bool {
	return !p.Outstanding().IsPositive()
}

// CreatePayment records a contracted amount for an existing work
func (c *Customer) CreatePayment(workID uuid.UUID, totalAmount decimal.Decimal) (*Payment, error) {
	if workID == uuid.Nil {
		return nil, shared.NewValidationError("WORK_REQUIRED", "Work is required")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if !shared.FitsScale(totalAmount) {
		return nil, errAmountScale
	}
	work, ok := c.FindWork(workID)
	if !ok {
		return nil, shared.NewNotFoundError("WORK_NOT_FOUND", "Work not found")
	}

	payment := Payment{
		ID:           uuid.New(),
		WorkID:       workID,
		WorkTitle:    work.Title,
		TotalAmount:  totalAmount,
		Installments: make([]Installment, 0),
		CreatedAt:    time.Now(),
	}
	c.Payments = append(c.Payments, payment)
	c.IncrementVersion()
	c.AddDomainEvent(NewPaymentCreatedEvent(c, payment))

	return &payment, nil
}

// AddInstallment records a partial receipt. The sum of installments of a
// payment never exceeds its total amount.
func (c *Customer) AddInstallment(paymentID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, mode PaymentMode, notes string) (*Installment, error) {
	payment, ok := c.FindPayment(paymentID)
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Installment amount must be positive")
	}
	if !shared.FitsScale(amount) {
		return nil, errAmountScale
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_MODE",
			"Payment mode must be one of: Cash, Card, UPI, Bank Transfer, Cheque")
	}
	if len(notes) > 1000 {
		return nil, shared.NewValidationError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}
	outstanding := payment.Outstanding()
	if amount.GreaterThan(outstanding) {
		return nil, shared.NewValidationError("OVERPAYMENT",
			fmt.Sprintf("Installment amount exceeds remaining balance. Remaining: %s", outstanding.String()))
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	installment := Installment{
		ID:          uuid.New(),
		PaymentID:   payment.ID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Mode:        mode,
		Notes:       strings.TrimSpace(notes),
		CreatedAt:   time.Now(),
	}
	payment.Installments = append(payment.Installments, installment)
	c.IncrementVersion()
	c.AddDomainEvent(NewInstallmentReceivedEvent(c, payment, installment))

	return &installment, nil
}

// ErrPaymentNotFound is returned when a payment id does not resolve for the customer
var ErrPaymentNotFound = shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")

var errAmountScale = shared.NewValidationError("INVALID_AMOUNT", "Amount supports at most 4 decimal places")
