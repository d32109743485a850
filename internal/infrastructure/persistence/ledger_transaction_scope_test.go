package persistence

import (
	"context"
	"errors"
	"testing"

	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_RollsBackBothWrites(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	materials := NewGormMaterialRepository(db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	c := createCustomer(t, customers, "Meera Joshi", "9822001122")
	work, err := c.AddWork("Kitchen", "Renovation")
	require.NoError(t, err)
	require.NoError(t, customers.AppendWork(ctx, c, work))

	steel := newSteelBar(t)
	require.NoError(t, materials.Create(ctx, steel))

	// a concurrent writer moves the customer forward after our read
	stale, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	concurrent, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	w2, _ := concurrent.AddWork("Hall", "Painting")
	require.NoError(t, customers.AppendWork(ctx, concurrent, w2))

	err = scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		mat, err := repos.Materials().FindByID(ctx, steel.ID)
		if err != nil {
			return err
		}
		usage, err := stale.RecordMaterialUsage(work.ID, mat, decimal.NewFromInt(4), "")
		if err != nil {
			return err
		}
		if err := repos.Materials().SaveConsumption(ctx, mat, usage.Quantity); err != nil {
			return err
		}
		return repos.Customers().AppendMaterialUsage(ctx, stale, usage)
	})
	require.Error(t, err)
	assert.True(t, shared.IsConcurrency(err))

	mat, err := materials.FindByID(ctx, steel.ID)
	require.NoError(t, err)
	assert.True(t, mat.RemainingQuantity.Equal(decimal.NewFromInt(10)), "stock decrement must roll back")

	loaded, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Materials)
}

func TestGormTransactionScope_Commits(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	c := createCustomer(t, customers, "Meera Joshi", "9822001122")

	err := scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		cust, err := repos.Customers().FindByID(ctx, c.ID)
		if err != nil {
			return err
		}
		w, err := cust.AddWork("Kitchen", "Renovation")
		if err != nil {
			return err
		}
		return repos.Customers().AppendWork(ctx, cust, w)
	})
	require.NoError(t, err)

	sentinel := errors.New("abort")
	err = scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		cust, _ := repos.Customers().FindByID(ctx, c.ID)
		w, _ := cust.AddWork("Hall", "Painting")
		if err := repos.Customers().AppendWork(ctx, cust, w); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	loaded, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Works, 1)
	assert.Equal(t, "Kitchen", loaded.Works[0].Title)
}
