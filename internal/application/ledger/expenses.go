package ledger

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// AddExpense records a cost attributed to a work of the customer
func (s *LedgerService) AddExpense(ctx context.Context, customerID uuid.UUID, req AddExpenseRequest) (*ledger.Expense, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "add_expense",
		telemetry.SpanAttrCustomerID, customerID,
		telemetry.SpanAttrWorkID, req.WorkID,
		telemetry.SpanAttrAmount, req.Amount)
	defer span.End()

	expenseType, err := ledger.ParseExpenseType(req.ExpenseType)
	if err != nil {
		return nil, err
	}
	var expenseDate time.Time
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	var expense *ledger.Expense
	err = s.mutate(ctx, span, "add_expense", customerID, func(ctx context.Context, repos TransactionalRepositories) (*ledger.Customer, error) {
		customer, err := load(ctx, repos, customerID)
		if err != nil {
			return nil, err
		}
		e, err := customer.AddExpense(req.WorkID, expenseType, req.Amount, expenseDate, req.Description)
		if err != nil {
			return nil, err
		}
		if err := repos.Customers().AppendExpense(ctx, customer, e); err != nil {
			return nil, err
		}
		expense = e
		return customer, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExpense(ctx, expenseType.String())
	return expense, nil
}
