package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/cache"
	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/bizops/backend/internal/infrastructure/event"
	"github.com/bizops/backend/internal/infrastructure/persistence/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	svc   *appledger.LedgerService
	store *memory.Store
	cache *cache.InMemoryLedgerCache
	logs  *observer.ObservedLogs
}

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		OperationTimeout:   time.Second,
		MaxConflictRetries: 3,
		RetryBackoff:       time.Millisecond,
		Currency:           "INR",
		ActivityTimeout:    time.Second,
	}
}

func newFixture(t *testing.T, cfg config.LedgerConfig) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	store := memory.NewStore()
	snapshots := cache.NewInMemoryLedgerCache(time.Minute)
	t.Cleanup(func() { _ = snapshots.Close() })

	bus := event.NewInMemoryEventBus(logger)
	svc := appledger.NewLedgerService(store.Customers(), store.Activities(), store, cfg,
		appledger.WithCache(snapshots),
		appledger.WithEventPublisher(bus),
		appledger.WithLogger(logger),
	)
	bus.Subscribe(svc.ActivityRecorder())

	return &fixture{svc: svc, store: store, cache: snapshots, logs: logs}
}

func (f *fixture) registerCustomer(t *testing.T) uuid.UUID {
	t.Helper()
	c, err := f.svc.RegisterCustomer(context.Background(), appledger.RegisterCustomerRequest{
		Name:   "Asha Builders",
		Mobile: "9876543210",
	})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) addWork(t *testing.T, customerID uuid.UUID, title string) uuid.UUID {
	t.Helper()
	w, err := f.svc.AddWork(context.Background(), customerID, appledger.AddWorkRequest{Title: title, Category: "Renovation"})
	require.NoError(t, err)
	return w.ID
}

func (f *fixture) addMaterial(t *testing.T, name string, price, quantity int64) uuid.UUID {
	t.Helper()
	m, err := catalog.NewMaterial(name, "Metal", "kg", decimal.NewFromInt(price), decimal.NewFromInt(quantity))
	require.NoError(t, err)
	require.NoError(t, f.store.Materials().Create(context.Background(), m))
	return m.ID
}

func (f *fixture) remaining(t *testing.T, materialID uuid.UUID) decimal.Decimal {
	t.Helper()
	m, err := f.store.Materials().FindByID(context.Background(), materialID)
	require.NoError(t, err)
	return m.RemainingQuantity
}

func (f *fixture) stored(t *testing.T, customerID uuid.UUID) *ledger.Customer {
	t.Helper()
	c, err := f.store.Customers().FindByID(context.Background(), customerID)
	require.NoError(t, err)
	return c
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestRegisterCustomer(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()

	c, err := f.svc.RegisterCustomer(ctx, appledger.RegisterCustomerRequest{
		Name:    "Asha Builders",
		Mobile:  "98765 43210",
		Address: appledger.AddressRequest{City: "Pune"},
	})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", c.Mobile)
	assert.Equal(t, 1, c.Version)

	_, err = f.svc.RegisterCustomer(ctx, appledger.RegisterCustomerRequest{Name: "Other", Mobile: "9876543210"})
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, "DUPLICATE_MOBILE", domainCode(t, err))

	_, err = f.svc.RegisterCustomer(ctx, appledger.RegisterCustomerRequest{Name: "", Mobile: "1234567"})
	assert.True(t, shared.IsValidation(err))

	activities, err := f.svc.ListActivities(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, ledger.ActivityCustomerRegistered, activities[0].Type)
}

func TestListCustomers(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	for _, c := range []struct{ name, mobile string }{
		{"Ravi", "9000000001"}, {"Asha", "9000000002"}, {"Meera", "9000000003"},
	} {
		_, err := f.svc.RegisterCustomer(ctx, appledger.RegisterCustomerRequest{Name: c.name, Mobile: c.mobile})
		require.NoError(t, err)
	}

	page, err := f.svc.ListCustomers(ctx, appledger.CustomerListFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Asha", page.Items[0].Name)

	page, err = f.svc.ListCustomers(ctx, appledger.CustomerListFilter{Search: "mee"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Meera", page.Items[0].Name)
}

func TestGetLedger_NotFound(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	_, err := f.svc.GetLedger(context.Background(), uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestAddWork(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)

	_, err := f.svc.AddWork(ctx, customerID, appledger.AddWorkRequest{Title: " ", Category: "Renovation"})
	assert.Equal(t, "INVALID_TITLE", domainCode(t, err))
	_, err = f.svc.AddWork(ctx, customerID, appledger.AddWorkRequest{Title: "Kitchen"})
	assert.Equal(t, "INVALID_CATEGORY", domainCode(t, err))

	workID := f.addWork(t, customerID, "Kitchen")

	works, err := f.svc.ListWorks(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, workID, works[0].ID)
	assert.Equal(t, ledger.WorkStatusOngoing, works[0].Status)
	assert.Equal(t, 2, f.stored(t, customerID).Version)

	snapshot, err := f.svc.GetLedger(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, snapshot.Activities, 2)
	assert.Equal(t, "Work Added", snapshot.Activities[0].Title)
}

func TestAddWork_UnknownCustomer(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	_, err := f.svc.AddWork(context.Background(), uuid.New(), appledger.AddWorkRequest{Title: "Kitchen", Category: "Renovation"})
	assert.True(t, shared.IsNotFound(err))
}

func TestRecordUsage_SteelBarScenario(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	_, err := f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "12"})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "Available: 10")
	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(10)))

	result, err := f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "4"})
	require.NoError(t, err)
	assert.True(t, result.RemainingStock.Equal(decimal.NewFromInt(6)))
	assert.True(t, result.Entry.TotalCost.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "Kitchen", result.Entry.WorkTitle)
	assert.False(t, result.Replayed)
	assert.Empty(t, result.Warnings)

	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(6)))
	assert.Len(t, f.stored(t, customerID).Materials, 1)

	activities, err := f.svc.ListActivities(ctx, customerID, 1)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, ledger.ActivityMaterialUsed, activities[0].Type)
	assert.Contains(t, activities[0].Description, "Remaining stock: 6")
}

func TestRecordUsage_InvalidInput(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	tests := []struct {
		name string
		req  appledger.RecordUsageRequest
		code string
	}{
		{"missing quantity", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: ""}, "INVALID_QUANTITY"},
		{"non numeric", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "ten"}, "INVALID_QUANTITY"},
		{"zero", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "0"}, "INVALID_QUANTITY"},
		{"negative", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "-2"}, "INVALID_QUANTITY"},
		{"rounds to zero when stored", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "0.00004"}, "INVALID_QUANTITY"},
		{"finer than stored scale", appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "0.00005"}, "INVALID_QUANTITY"},
		{"missing work", appledger.RecordUsageRequest{MaterialID: steel, Quantity: "1"}, "WORK_REQUIRED"},
		{"missing material", appledger.RecordUsageRequest{WorkID: workID, Quantity: "1"}, "MATERIAL_REQUIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordUsage(context.Background(), customerID, tt.req)
			assert.True(t, shared.IsValidation(err))
			assert.Equal(t, tt.code, domainCode(t, err))
		})
	}
	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(10)))
	assert.Empty(t, f.stored(t, customerID).Materials)
}

func TestRecordUsage_UnknownMaterial(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")

	_, err := f.svc.RecordUsage(context.Background(), customerID,
		appledger.RecordUsageRequest{WorkID: workID, MaterialID: uuid.New(), Quantity: "1"})
	assert.True(t, shared.IsNotFound(err))
}

func TestRecordUsage_DanglingWorkAndZeroPrice(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	customerID := f.registerCustomer(t)
	sand := f.addMaterial(t, "Sand", 0, 10)

	result, err := f.svc.RecordUsage(context.Background(), customerID,
		appledger.RecordUsageRequest{WorkID: uuid.New(), MaterialID: sand, Quantity: "2.5"})
	require.NoError(t, err)

	assert.Equal(t, ledger.UnknownWorkTitle, result.Entry.WorkTitle)
	assert.True(t, result.Entry.TotalCost.IsZero())
	assert.Equal(t, []string{appledger.WarningUnpricedMaterial}, result.Warnings)
	assert.True(t, result.RemainingStock.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, 1, f.logs.FilterMessage("Material usage recorded at zero unit price").Len())
}

func TestRecordUsage_ConcurrentCallsNeverOversell(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	const callers = 2
	var (
		wg        sync.WaitGroup
		succeeded int
	)
	start := make(chan struct{})
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.RecordUsage(context.Background(), customerID,
				appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "6"})
		}(i)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, shared.IsValidation(err) || shared.IsConcurrency(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(4)))
	assert.Len(t, f.stored(t, customerID).Materials, 1)
}

func TestRecordUsage_IdempotentRetryAfterTransientFailure(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)
	req := appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "4", RequestKey: "req-001"}

	// the write commits but the caller only sees a failure
	f.store.FailOn(memory.OpAfterCommit, errors.New("connection reset by peer"), 1)
	_, err := f.svc.RecordUsage(ctx, customerID, req)
	require.Error(t, err)
	assert.True(t, shared.IsTransient(err))
	assert.True(t, shared.IsRetryable(err))

	result, err := f.svc.RecordUsage(ctx, customerID, req)
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, "req-001", result.Entry.RequestKey)
	assert.True(t, result.RemainingStock.Equal(decimal.NewFromInt(6)))

	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(6)))
	assert.Len(t, f.stored(t, customerID).Materials, 1)

	snapshot, err := f.svc.GetLedger(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Materials, 1)
}

func TestRecordUsage_ReplayReportsStockOfStoredMaterial(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)
	cement := f.addMaterial(t, "Cement", 400, 20)

	_, err := f.svc.RecordUsage(ctx, customerID,
		appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "4", RequestKey: "req-7"})
	require.NoError(t, err)

	// same key, different body: the stored entry is replayed
	result, err := f.svc.RecordUsage(ctx, customerID,
		appledger.RecordUsageRequest{WorkID: workID, MaterialID: cement, Quantity: "1", RequestKey: "req-7"})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, steel, result.Entry.MaterialID)
	assert.True(t, result.RemainingStock.Equal(decimal.NewFromInt(6)), "got %s", result.RemainingStock)
	assert.True(t, f.remaining(t, cement).Equal(decimal.NewFromInt(20)))
}

func TestRecordUsage_TimeoutIsTransient(t *testing.T) {
	cfg := testLedgerConfig()
	cfg.OperationTimeout = 20 * time.Millisecond
	f := newFixture(t, cfg)
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	f.store.SetLatency(200 * time.Millisecond)
	_, err := f.svc.RecordUsage(context.Background(), customerID,
		appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "1"})
	f.store.SetLatency(0)

	require.Error(t, err)
	assert.True(t, shared.IsTransient(err))
	assert.True(t, errors.Is(err, shared.ErrTimeout))
	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(10)))
}

func TestRecordUsage_HistoricalCostSurvivesPriceChange(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	_, err := f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "2"})
	require.NoError(t, err)

	m, err := f.store.Materials().FindByID(ctx, steel)
	require.NoError(t, err)
	require.NoError(t, m.UpdatePrice(decimal.NewFromInt(80)))
	require.NoError(t, f.store.Materials().SaveWithLock(ctx, m))

	_, err = f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "1"})
	require.NoError(t, err)

	entries := f.stored(t, customerID).Materials
	require.Len(t, entries, 2)
	assert.True(t, entries[0].TotalCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, entries[1].TotalCost.Equal(decimal.NewFromInt(80)))
}

func TestPayments_InstallmentScenario(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")

	payment, err := f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{WorkID: workID, TotalAmount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", payment.WorkTitle)
	assert.Empty(t, payment.Installments)

	add := func(amount int64) error {
		_, err := f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{
			Amount:      decimal.NewFromInt(amount),
			PaymentMode: "upi",
		})
		return err
	}

	require.NoError(t, add(2000))

	err = add(3500)
	require.Error(t, err)
	assert.Equal(t, "OVERPAYMENT", domainCode(t, err))
	assert.Contains(t, err.Error(), "Installment amount exceeds remaining balance")
	assert.Contains(t, err.Error(), "Remaining: 3000")

	require.NoError(t, add(3000))

	summary, err := f.svc.GetPaymentSummary(ctx, customerID, payment.ID)
	require.NoError(t, err)
	assert.True(t, summary.Received.Equal(decimal.NewFromInt(5000)))
	assert.True(t, summary.Outstanding.IsZero())
	assert.True(t, summary.Settled)
	require.Len(t, summary.Installments, 2)
	assert.Equal(t, ledger.PaymentModeUPI, summary.Installments[0].Mode)

	overall, err := f.svc.OverallAnalytics(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, overall.Balance.IsZero())
}

func TestAddInstallment_Rejections(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	payment, err := f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{WorkID: workID, TotalAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	_, err = f.svc.AddInstallment(ctx, customerID, uuid.New(), appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(10), PaymentMode: "Cash"})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.svc.AddInstallment(ctx, customerID, uuid.New(), appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(10), PaymentMode: "Barter"})
	assert.Equal(t, "PAYMENT_NOT_FOUND", domainCode(t, err), "unknown payment is reported before a bad mode")

	_, err = f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{Amount: decimal.Zero, PaymentMode: "Barter"})
	assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))

	_, err = f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(10), PaymentMode: "  upi "})
	require.NoError(t, err, "modes match case-insensitively")

	_, err = f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(10), PaymentMode: "Barter"})
	assert.Equal(t, "INVALID_PAYMENT_MODE", domainCode(t, err))

	_, err = f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{Amount: decimal.Zero, PaymentMode: "Cash"})
	assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))

	installments := f.stored(t, customerID).Payments[0].Installments
	require.Len(t, installments, 1)
	assert.Equal(t, ledger.PaymentModeUPI, installments[0].Mode)
}

func TestAddInstallment_ConcurrentCallsNeverOverpay(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")
	payment, err := f.svc.CreatePayment(context.Background(), customerID,
		appledger.CreatePaymentRequest{WorkID: workID, TotalAmount: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	const callers = 5
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _ = f.svc.AddInstallment(context.Background(), customerID, payment.ID,
				appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(2000), PaymentMode: "Cash"})
		}()
	}
	close(start)
	wg.Wait()

	stored, ok := f.stored(t, customerID).FindPayment(payment.ID)
	require.True(t, ok)
	assert.True(t, stored.Received().LessThanOrEqual(stored.TotalAmount))
	assert.False(t, stored.Outstanding().IsNegative())
}

func TestCreatePayment_Rejections(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")

	_, err := f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{WorkID: uuid.New(), TotalAmount: decimal.NewFromInt(100)})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{WorkID: workID, TotalAmount: decimal.NewFromInt(-5)})
	assert.True(t, shared.IsValidation(err))

	_, err = f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{TotalAmount: decimal.NewFromInt(5)})
	assert.Equal(t, "WORK_REQUIRED", domainCode(t, err))
}

func TestAddExpense(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	workID := f.addWork(t, customerID, "Kitchen")

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expense, err := f.svc.AddExpense(ctx, customerID, appledger.AddExpenseRequest{
		WorkID:      workID,
		ExpenseType: "labour",
		Amount:      decimal.NewFromInt(750),
		ExpenseDate: &date,
		Description: "Tiling crew",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.ExpenseTypeLabour, expense.Type)
	assert.True(t, expense.ExpenseDate.Equal(date))
	assert.Equal(t, "Kitchen", expense.WorkTitle)

	_, err = f.svc.AddExpense(ctx, customerID, appledger.AddExpenseRequest{WorkID: workID, ExpenseType: "Snacks", Amount: decimal.NewFromInt(1)})
	assert.Equal(t, "INVALID_EXPENSE_TYPE", domainCode(t, err))

	_, err = f.svc.AddExpense(ctx, customerID, appledger.AddExpenseRequest{WorkID: uuid.New(), ExpenseType: "Tools", Amount: decimal.NewFromInt(1)})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.svc.AddExpense(ctx, customerID, appledger.AddExpenseRequest{WorkID: workID, ExpenseType: "Tools", Amount: decimal.Zero})
	assert.Equal(t, "INVALID_AMOUNT", domainCode(t, err))

	assert.Len(t, f.stored(t, customerID).Expenses, 1)
}

func TestActivityFailureDoesNotCorruptLedger(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)

	f.store.FailOn(memory.OpAppendActivity, errors.New("disk full"), 0)

	workID := f.addWork(t, customerID, "Kitchen")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)
	_, err := f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: workID, MaterialID: steel, Quantity: "3"})
	require.NoError(t, err)

	entry, err := f.svc.AppendActivity(ctx, customerID, appledger.AppendActivityRequest{Title: "Site visit"})
	require.NoError(t, err)
	assert.Equal(t, ledger.ActivityManual, entry.Type)

	assert.Equal(t, 3, f.logs.FilterMessage("Failed to append activity entry").Len())

	stored := f.stored(t, customerID)
	assert.Len(t, stored.Works, 1)
	assert.Len(t, stored.Materials, 1)
	assert.Equal(t, 3, stored.Version)
	assert.True(t, f.remaining(t, steel).Equal(decimal.NewFromInt(7)))

	f.store.ClearFailures()
	activities, err := f.svc.ListActivities(ctx, customerID, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, ledger.ActivityCustomerRegistered, activities[0].Type)
}

func TestAppendActivity(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)

	_, err := f.svc.AppendActivity(ctx, customerID, appledger.AppendActivityRequest{Title: " "})
	assert.True(t, shared.IsValidation(err))

	_, err = f.svc.AppendActivity(ctx, uuid.New(), appledger.AppendActivityRequest{Title: "Call"})
	assert.True(t, shared.IsNotFound(err))

	entry, err := f.svc.AppendActivity(ctx, customerID, appledger.AppendActivityRequest{
		Type:        "note",
		Title:       "Called customer",
		Description: "Confirmed tile colour",
	})
	require.NoError(t, err)

	snapshot, err := f.svc.GetLedger(ctx, customerID)
	require.NoError(t, err)
	require.NotEmpty(t, snapshot.Activities)
	assert.Equal(t, entry.ID, snapshot.Activities[0].ID)
	assert.Equal(t, 1, snapshot.Version)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	kitchen := f.addWork(t, customerID, "Kitchen")
	bathroom := f.addWork(t, customerID, "Bathroom")
	steel := f.addMaterial(t, "Steel Bar", 50, 10)

	payment, err := f.svc.CreatePayment(ctx, customerID, appledger.CreatePaymentRequest{WorkID: kitchen, TotalAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	_, err = f.svc.AddInstallment(ctx, customerID, payment.ID, appledger.AddInstallmentRequest{Amount: decimal.NewFromInt(600), PaymentMode: "Cash"})
	require.NoError(t, err)
	_, err = f.svc.RecordUsage(ctx, customerID, appledger.RecordUsageRequest{WorkID: kitchen, MaterialID: steel, Quantity: "4"})
	require.NoError(t, err)
	_, err = f.svc.AddExpense(ctx, customerID, appledger.AddExpenseRequest{WorkID: kitchen, ExpenseType: "Transportation", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	a, err := f.svc.WorkAnalytics(ctx, customerID, kitchen)
	require.NoError(t, err)
	assert.True(t, a.MaterialsCost.Equal(decimal.NewFromInt(200)))
	assert.True(t, a.TotalCost.Equal(decimal.NewFromInt(300)))
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(400)))
	assert.True(t, a.Profit.Equal(decimal.NewFromInt(300)))
	assert.True(t, a.ProfitPercentage.Equal(decimal.NewFromInt(30)))
	assert.True(t, a.IsConsistent())

	empty, err := f.svc.WorkAnalytics(ctx, customerID, bathroom)
	require.NoError(t, err)
	assert.True(t, empty.TotalRevenue.IsZero())
	assert.True(t, empty.ProfitPercentage.IsZero())

	_, err = f.svc.WorkAnalytics(ctx, customerID, uuid.New())
	assert.True(t, shared.IsNotFound(err))

	report, err := f.svc.Breakdown(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, report.Works, 2)
	assert.Equal(t, "Kitchen", report.Works[0].WorkTitle)
	assert.True(t, report.Overall.Profit.Equal(decimal.NewFromInt(300)))
}

func TestGetLedger_ServedFromSnapshotCache(t *testing.T) {
	f := newFixture(t, testLedgerConfig())
	ctx := context.Background()
	customerID := f.registerCustomer(t)
	f.addWork(t, customerID, "Kitchen")

	f.store.FailOn(memory.OpFindCustomer, errors.New("database is down"), 0)
	snapshot, err := f.svc.GetLedger(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Works, 1)
	assert.Equal(t, 2, snapshot.Version)
	assert.Equal(t, "INR", snapshot.Currency)

	require.NoError(t, f.cache.Invalidate(ctx, customerID))
	_, err = f.svc.GetLedger(ctx, customerID)
	assert.True(t, errors.Is(err, shared.ErrUnavailable))
}

func TestMutation_ConflictRetryBudget(t *testing.T) {
	cfg := testLedgerConfig()
	cfg.MaxConflictRetries = 1
	f := newFixture(t, cfg)
	customerID := f.registerCustomer(t)

	f.store.FailOn(memory.OpAppendCustomer, shared.ErrConcurrencyConflict, 2)
	_, err := f.svc.AddWork(context.Background(), customerID, appledger.AddWorkRequest{Title: "Kitchen", Category: "Renovation"})
	assert.True(t, shared.IsConcurrency(err))

	f.store.FailOn(memory.OpAppendCustomer, shared.ErrConcurrencyConflict, 1)
	_, err = f.svc.AddWork(context.Background(), customerID, appledger.AddWorkRequest{Title: "Kitchen", Category: "Renovation"})
	assert.NoError(t, err)
	assert.Len(t, f.stored(t, customerID).Works, 1)
}
