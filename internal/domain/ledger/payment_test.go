package ledger

import (
	"testing"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMode(t *testing.T) {
	mode, err := ParsePaymentMode("bank transfer")
	require.NoError(t, err)
	assert.Equal(t, PaymentModeBankTransfer, mode)

	mode, err = ParsePaymentMode("upi")
	require.NoError(t, err)
	assert.Equal(t, PaymentModeUPI, mode)

	_, err = ParsePaymentMode("bitcoin")
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestNormalizePaymentMode(t *testing.T) {
	assert.Equal(t, PaymentModeCheque, NormalizePaymentMode(" cheque"))
	assert.Equal(t, PaymentMode("Barter"), NormalizePaymentMode(" Barter "))
	assert.False(t, NormalizePaymentMode("Barter").IsValid())
}

func TestCustomer_CreatePayment(t *testing.T) {
	t.Run("creates payment with no installments", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)

		p, err := c.CreatePayment(workID, d(5000))

		require.NoError(t, err)
		assert.Equal(t, "Balcony Grill Installation", p.WorkTitle)
		assert.Empty(t, p.Installments)
		assert.True(t, p.Outstanding().Equal(d(5000)))
		assert.False(t, p.IsSettled())
		assert.Len(t, c.Payments, 1)
	})

	t.Run("fails with empty work", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.CreatePayment(uuid.Nil, d(5000))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails with non-positive amount", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		_, err := c.CreatePayment(workID, d(0))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("fails with amount finer than stored scale", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		_, err := c.CreatePayment(workID, ds("100.00005"))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Contains(t, err.Error(), "at most 4 decimal places")
		assert.Empty(t, c.Payments)
	})

	t.Run("fails with unknown work", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.CreatePayment(uuid.New(), d(100))
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("allows several payments per work", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		_, err := c.CreatePayment(workID, d(100))
		require.NoError(t, err)
		_, err = c.CreatePayment(workID, d(200))
		require.NoError(t, err)
		assert.Len(t, c.Payments, 2)
	})
}

func TestCustomer_AddInstallment(t *testing.T) {
	t.Run("installment scenario ends settled", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		p, err := c.CreatePayment(workID, d(5000))
		require.NoError(t, err)

		_, err = c.AddInstallment(p.ID, d(2000), time.Now(), PaymentModeUPI, "advance")
		require.NoError(t, err)
		payment, _ := c.FindPayment(p.ID)
		assert.True(t, payment.Outstanding().Equal(d(3000)))

		_, err = c.AddInstallment(p.ID, d(3500), time.Now(), PaymentModeCash, "")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "OVERPAYMENT", de.Code)
		assert.Contains(t, err.Error(), "exceeds remaining balance")
		assert.Len(t, payment.Installments, 1)

		_, err = c.AddInstallment(p.ID, d(3000), time.Now(), PaymentModeCheque, "final")
		require.NoError(t, err)
		payment, _ = c.FindPayment(p.ID)
		assert.True(t, payment.Outstanding().IsZero())
		assert.True(t, payment.IsSettled())
		assert.True(t, PerWork(c, workID).Balance.IsZero())
	})

	t.Run("fails with unknown payment", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.AddInstallment(uuid.New(), d(10), time.Now(), PaymentModeCash, "")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("fails with non-positive amount", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		p, _ := c.CreatePayment(workID, d(100))
		_, err := c.AddInstallment(p.ID, d(-1), time.Now(), PaymentModeCash, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("fails with invalid mode", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		p, _ := c.CreatePayment(workID, d(100))
		_, err := c.AddInstallment(p.ID, d(10), time.Now(), PaymentMode("Barter"), "")
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("defaults payment date", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		p, _ := c.CreatePayment(workID, d(100))
		i, err := c.AddInstallment(p.ID, d(10), time.Time{}, PaymentModeCard, "")
		require.NoError(t, err)
		assert.False(t, i.PaymentDate.IsZero())
		assert.Equal(t, p.ID, i.PaymentID)
	})
}
