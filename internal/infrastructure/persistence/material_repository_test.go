package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSteelBar(t *testing.T) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial("Steel Bar", "Metal", "kg", decimal.NewFromInt(50), decimal.NewFromInt(10))
	require.NoError(t, err)
	return m
}

func TestGormMaterialRepository_SaveConsumption(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMaterialRepository(db)
	ctx := context.Background()

	m := newSteelBar(t)
	require.NoError(t, repo.Create(ctx, m))

	first, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, first.Consume(decimal.NewFromInt(6)))
	require.NoError(t, repo.SaveConsumption(ctx, first, decimal.NewFromInt(6)))

	// the second reader still believes 10 are available
	require.NoError(t, second.Consume(decimal.NewFromInt(6)))
	err = repo.SaveConsumption(ctx, second, decimal.NewFromInt(6))
	assert.True(t, shared.IsConcurrency(err))

	stored, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingQuantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, 2, stored.Version)
}

func TestGormMaterialRepository_PriceChangeKeepsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMaterialRepository(db)
	ctx := context.Background()

	m := newSteelBar(t)
	require.NoError(t, repo.Create(ctx, m))

	loaded, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.UpdatePrice(decimal.NewFromInt(65)))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	stored, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.UnitPrice.Equal(decimal.NewFromInt(65)))
	assert.True(t, stored.RemainingQuantity.Equal(decimal.NewFromInt(10)))

	// replaying the same write is stale
	assert.True(t, shared.IsConcurrency(repo.SaveWithLock(ctx, loaded)))
}

func TestGormMaterialRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMaterialRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Tiles", "Cement", "Steel Bar"} {
		m, err := catalog.NewMaterial(name, "Civil", "pcs", decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, m))
	}

	names := func(filter shared.Filter) []string {
		list, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		out := make([]string, len(list))
		for i := range list {
			out[i] = list[i].Name
		}
		return out
	}
	assert.Equal(t, []string{"Cement", "Steel Bar", "Tiles"}, names(shared.Filter{}), "unordered filter sorts by name")
	assert.Equal(t, []string{"Tiles", "Steel Bar", "Cement"}, names(shared.Filter{OrderBy: "name", OrderDir: "desc"}))
	assert.Len(t, names(shared.DefaultFilter()), 3)

	n, err := repo.Count(ctx, shared.Filter{Search: "ti"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, newSteelBar(t).ID)
	assert.ErrorIs(t, err, catalog.ErrMaterialNotFound)
}

func TestGormMaterialRepository_ConsumptionSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormMaterialRepository(gormDB)

	m := newSteelBar(t)
	qty := decimal.NewFromInt(4)
	require.NoError(t, m.Consume(qty))

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "materials" SET "remaining_quantity"=$1,"updated_at"=$2,"version"=$3 WHERE id = $4 AND version = $5 AND remaining_quantity >= $6`)).
		WithArgs(m.RemainingQuantity, sqlmock.AnyArg(), 2, m.ID, 1, qty).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveConsumption(context.Background(), m, qty)

	assert.True(t, shared.IsConcurrency(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
