package ledger

import (
	"testing"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr string
	}{
		{"4", ""},
		{" 2.5 ", ""},
		{"", "required"},
		{"abc", "must be a number"},
		{"0", "must be positive"},
		{"-3", "must be positive"},
		{"1.2345", ""},
		{"1.23450", ""},
		{"0.00004", "at most 4 decimal places"},
		{"9.99995", "at most 4 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q, err := ParseQuantity(tt.raw)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, q.IsPositive())
				return
			}
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCustomer_RecordMaterialUsage(t *testing.T) {
	t.Run("rejects quantity above stock and reports availability", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		m := newTestMaterial(t, 250, 10)

		_, err := c.RecordMaterialUsage(workID, m, d(12), "")

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Contains(t, err.Error(), "Available: 10")
		assert.Empty(t, c.Materials)
		assert.True(t, m.RemainingQuantity.Equal(d(10)))
		assert.Equal(t, 2, c.Version)
	})

	t.Run("records entry and decrements stock", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		m := newTestMaterial(t, 250, 10)

		u, err := c.RecordMaterialUsage(workID, m, d(4), "req-1")

		require.NoError(t, err)
		assert.True(t, m.RemainingQuantity.Equal(d(6)))
		assert.True(t, u.TotalCost.Equal(d(1000)))
		assert.True(t, u.UnitPrice.Equal(d(250)))
		assert.Equal(t, "Balcony Grill Installation", u.WorkTitle)
		assert.Equal(t, "req-1", u.RequestKey)
		assert.Len(t, c.Materials, 1)
		assert.Equal(t, 3, c.Version)
		assert.Equal(t, 2, m.Version)

		evt := c.GetDomainEvents()[0].(*MaterialUsageRecordedEvent)
		assert.True(t, evt.RemainingStock.Equal(d(6)))

		found, ok := c.FindUsageByRequestKey("req-1")
		require.True(t, ok)
		assert.Equal(t, u.ID, found.ID)
	})

	t.Run("tolerates dangling work reference", func(t *testing.T) {
		c := newTestCustomer(t)
		m := newTestMaterial(t, 250, 10)

		u, err := c.RecordMaterialUsage(uuid.New(), m, d(1), "")

		require.NoError(t, err)
		assert.Equal(t, UnknownWorkTitle, u.WorkTitle)
	})

	t.Run("permits zero price", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		m := newTestMaterial(t, 0, 10)

		u, err := c.RecordMaterialUsage(workID, m, d(2), "")

		require.NoError(t, err)
		assert.True(t, u.IsUnpriced())
		assert.True(t, u.TotalCost.IsZero())
	})

	t.Run("requires work", func(t *testing.T) {
		c := newTestCustomer(t)
		m := newTestMaterial(t, 250, 10)

		_, err := c.RecordMaterialUsage(uuid.Nil, m, d(1), "")

		require.Error(t, err)
		assert.True(t, m.RemainingQuantity.Equal(d(10)))
	})

	t.Run("historical cost survives price change", func(t *testing.T) {
		c := newTestCustomer(t)
		workID := newTestWork(t, c)
		m := newTestMaterial(t, 250, 10)

		_, err := c.RecordMaterialUsage(workID, m, d(4), "")
		require.NoError(t, err)
		require.NoError(t, m.UpdatePrice(d(400)))

		assert.True(t, c.Materials[0].UnitPrice.Equal(d(250)))
		assert.True(t, c.Materials[0].TotalCost.Equal(d(1000)))
	})
}
