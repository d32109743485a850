package ledger

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePayment records the contracted total amount of a work
func (s *LedgerService) CreatePayment(ctx context.Context, customerID uuid.UUID, req CreatePaymentRequest) (*PaymentSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_payment",
		telemetry.SpanAttrCustomerID, customerID,
		telemetry.SpanAttrWorkID, req.WorkID,
		telemetry.SpanAttrAmount, req.TotalAmount)
	defer span.End()

	var payment *ledger.Payment
	err := s.mutate(ctx, span, "create_payment", customerID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		customer, err := load(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		p, err := customer.CreatePayment(req.WorkID, req.TotalAmount)
		if err != nil {
			return nil, err
		}
		if err := repos.Customers().AppendPayment(ctx, customer, p); err != nil {
			return nil, err
		}
		payment = p
		return customer, nil
	})
	if err != nil {
		return nil, err
	}
	summary := ToPaymentSummary(payment)
	return &summary, nil
}

// AddInstallment records a partial receipt against a payment. The
// installments of a payment never sum past its total amount, including
// under racing calls, because the overpayment check reads the version the
// write is conditioned on.
func (s *LedgerService) AddInstallment(ctx context.Context, customerID, paymentID uuid.UUID, req AddInstallmentRequest) (*ledger.Installment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "add_installment",
		telemetry.SpanAttrCustomerID, customerID,
		telemetry.SpanAttrPaymentID, paymentID,
		telemetry.SpanAttrAmount, req.Amount)
	defer span.End()

	// validated by the aggregate after the payment is resolved
	mode := ledger.NormalizePaymentMode(req.PaymentMode)

	var paymentDate time.Time
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var installment *ledger.Installment
	err := s.mutate(ctx, span, "add_installment", customerID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		customer, err := load(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		i, err := customer.AddInstallment(paymentID, req.Amount, paymentDate, mode, req.Notes)
		if err != nil {
			return nil, err
		}
		if err := repos.Customers().AppendInstallment(ctx, customer, i); err != nil {
			return nil, err
		}
		installment = i
		return customer, nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentMode, string(mode))
	s.metrics.RecordInstallment(ctx, string(mode))
	s.logger.Info("Installment received",
		zap.String("customer_id", customerID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("amount", installment.Amount.String()),
		zap.String("mode", string(mode)))
	return installment, nil
}

// GetPaymentSummary returns a payment with its received and outstanding totals
func (s *LedgerService) GetPaymentSummary(ctx context.Context, customerID, paymentID uuid.UUID) (*PaymentSummary, error) {
	customer, err := s.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}
	payment, ok := customer.FindPayment(paymentID)
	if !ok {
		return nil, ledger.ErrPaymentNotFound
	}
	summary := ToPaymentSummary(payment)
	return &summary, nil
}
