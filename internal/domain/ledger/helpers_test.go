package ledger

import (
	"testing"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T) *Customer {
	t.Helper()
	c, err := NewCustomer("Ravi Kumar", "98450 12345", Address{City: "Bengaluru"})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func newTestWork(t *testing.T, c *Customer) uuid.UUID {
	t.Helper()
	w, err := c.AddWork("Balcony Grill Installation", "Fabrication")
	require.NoError(t, err)
	c.ClearDomainEvents()
	return w.ID
}

func newTestMaterial(t *testing.T, price, stock int64) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial("Steel Bar", "Metal", "bar", decimal.NewFromInt(price), decimal.NewFromInt(stock))
	require.NoError(t, err)
	m.ClearDomainEvents()
	return m
}

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func ds(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
