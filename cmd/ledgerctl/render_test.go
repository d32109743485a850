package main

import (
	"testing"

	appcatalog "github.com/bizops/backend/internal/application/catalog"
	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMaterialsMarkdown(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		md := materialsMarkdown(nil, 0, valueobject.INR)
		assert.Contains(t, md, "0 in catalog")
		assert.Contains(t, md, "_No materials found._")
	})

	t.Run("rows with priced and unpriced materials", func(t *testing.T) {
		md := materialsMarkdown([]appcatalog.MaterialResponse{
			{Name: "Cement", Category: "Civil", Unit: "bag", UnitPrice: decimal.NewFromInt(1500), RemainingQuantity: decimal.NewFromInt(40), Priced: true},
			{Name: "Sand | fine", RemainingQuantity: decimal.NewFromInt(3)},
		}, 2, valueobject.INR)

		assert.Contains(t, md, "| Cement | Civil | bag |")
		assert.Contains(t, md, "1,500.00")
		assert.Contains(t, md, `Sand \| fine`)
		assert.Contains(t, md, "| unpriced | 3 |")
	})
}

func TestReportMarkdown(t *testing.T) {
	workID := uuid.New()
	analytics := ledger.Analytics{
		WorkID:           workID,
		WorkTitle:        "Kitchen",
		MaterialsCost:    decimal.NewFromInt(300),
		TotalExpenses:    decimal.NewFromInt(500),
		TotalCost:        decimal.NewFromInt(800),
		TotalRevenue:     decimal.NewFromInt(1000),
		TotalReceived:    decimal.NewFromInt(400),
		Balance:          decimal.NewFromInt(600),
		Profit:           decimal.NewFromInt(-400),
		ProfitPercentage: decimal.NewFromInt(-40),
	}
	snapshot := &appledger.LedgerResponse{
		CustomerResponse: appledger.CustomerResponse{
			Name:    "Asha Rao",
			Mobile:  "9876543210",
			Address: ledger.Address{City: "Pune"},
		},
		Payments: []appledger.PaymentSummary{
			{
				Payment:     ledger.Payment{WorkTitle: "Kitchen", TotalAmount: decimal.NewFromInt(1000)},
				Received:    decimal.NewFromInt(400),
				Outstanding: decimal.NewFromInt(600),
			},
			{
				Payment:  ledger.Payment{WorkTitle: "Porch", TotalAmount: decimal.NewFromInt(50)},
				Received: decimal.NewFromInt(50),
				Settled:  true,
			},
		},
	}
	report := &ledger.Report{Works: []ledger.Analytics{analytics}, Overall: analytics}

	md := reportMarkdown(snapshot, report, valueobject.INR)

	assert.Contains(t, md, "# Asha Rao")
	assert.Contains(t, md, "Mobile 9876543210, Pune")
	assert.Contains(t, md, "| Profit % | -40.00% |")
	assert.Contains(t, md, "| Kitchen |")
	assert.Contains(t, md, "## Outstanding payments")
	assert.NotContains(t, md, "| Porch |")
}

func TestReportMarkdown_NoWorks(t *testing.T) {
	md := reportMarkdown(&appledger.LedgerResponse{
		CustomerResponse: appledger.CustomerResponse{Name: "Nobody", Mobile: "1"},
	}, &ledger.Report{}, valueobject.INR)

	assert.Contains(t, md, "_No works registered._")
	assert.NotContains(t, md, "Outstanding payments")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "-", cell(""))
	assert.Equal(t, `a\|b c`, cell("a|b\nc"))
}
