package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Analytics is the cost and revenue roll-up of a work or of a whole
// customer. Values are derived on every call and never persisted.
type Analytics struct {
	WorkID           uuid.UUID       `json:"work_id,omitempty"`
	WorkTitle        string          `json:"work_title,omitempty"`
	MaterialsCost    decimal.Decimal `json:"materials_cost"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	Balance          decimal.Decimal `json:"balance"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
}

// IsConsistent reports whether the roll-up satisfies the ledger
// invariants. A negative balance means installments exceeded a payment.
func (a Analytics) IsConsistent() bool {
	return !a.Balance.IsNegative()
}

// IsProfitable reports whether receipts exceed costs
func (a Analytics) IsProfitable() bool {
	return a.Profit.IsPositive()
}

// Report is the per-work breakdown of a customer plus the overall roll-up
type Report struct {
	CustomerID uuid.UUID   `json:"customer_id"`
	Works      []Analytics `json:"works"`
	Overall    Analytics   `json:"overall"`
}

// PerWork computes the analytics of a single work. A work without entries
// yields zero values, with profit percentage 0.
func PerWork(c *Customer, workID uuid.UUID) Analytics {
	a := compute(c, func(id uuid.UUID) bool { return id == workID })
	a.WorkID = workID
	a.WorkTitle = c.WorkTitle(workID)
	return a
}

// Overall computes the analytics across every work of the customer,
// including entries whose work reference does not resolve.
func Overall(c *Customer) Analytics {
	return compute(c, func(uuid.UUID) bool { return true })
}

// Breakdown computes PerWork for each work in registration order and the
// overall roll-up.
func Breakdown(c *Customer) Report {
	works := make([]Analytics, 0, len(c.Works))
	for _, w := range c.Works {
		works = append(works, PerWork(c, w.ID))
	}
	return Report{
		CustomerID: c.ID,
		Works:      works,
		Overall:    Overall(c),
	}
}

func compute(c *Customer, match func(workID uuid.UUID) bool) Analytics {
	a := Analytics{
		MaterialsCost: decimal.Zero,
		TotalExpenses: decimal.Zero,
		TotalRevenue:  decimal.Zero,
		TotalReceived: decimal.Zero,
	}

	for _, u := range c.Materials {
		if match(u.WorkID) {
			a.MaterialsCost = a.MaterialsCost.Add(u.TotalCost)
		}
	}
	for _, e := range c.Expenses {
		if match(e.WorkID) {
			a.TotalExpenses = a.TotalExpenses.Add(e.Amount)
		}
	}
	for i := range c.Payments {
		p := &c.Payments[i]
		if match(p.WorkID) {
			a.TotalRevenue = a.TotalRevenue.Add(p.TotalAmount)
			a.TotalReceived = a.TotalReceived.Add(p.Received())
		}
	}

	a.TotalCost = a.MaterialsCost.Add(a.TotalExpenses)
	a.Balance = a.TotalRevenue.Sub(a.TotalReceived)
	a.Profit = a.TotalReceived.Sub(a.TotalCost)
	a.ProfitPercentage = decimal.Zero
	if a.TotalRevenue.IsPositive() {
		a.ProfitPercentage = a.Profit.Div(a.TotalRevenue).Mul(hundred).Round(2)
	}
	return a
}
