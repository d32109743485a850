package main

import (
	"fmt"
	"strings"

	appcatalog "github.com/bizops/backend/internal/application/catalog"
	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared/valueobject"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
)

const wordWrap = 110

// printMarkdown renders md for the terminal, falling back to the raw text
// when rendering fails or -plain is set.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func materialsMarkdown(items []appcatalog.MaterialResponse, total int64, currency valueobject.Currency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Materials\n\n%d in catalog\n\n", total)
	if len(items) == 0 {
		b.WriteString("_No materials found._\n")
		return b.String()
	}

	b.WriteString("| Name | Category | Unit | Unit price | In stock |\n")
	b.WriteString("|:---|:---|:---|---:|---:|\n")
	for _, m := range items {
		price := display(m.UnitPrice, currency)
		if !m.Priced {
			price = "unpriced"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(m.Name), cell(m.Category), cell(m.Unit), price, m.RemainingQuantity.String())
	}
	return b.String()
}

func reportMarkdown(snapshot *appledger.LedgerResponse, report *ledger.Report, currency valueobject.Currency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cell(snapshot.Name))
	fmt.Fprintf(&b, "Mobile %s", snapshot.Mobile)
	if snapshot.Address.City != "" {
		fmt.Fprintf(&b, ", %s", snapshot.Address.City)
	}
	b.WriteString("\n\n")

	b.WriteString("## Overall\n\n")
	writeAnalytics(&b, report.Overall, currency)

	b.WriteString("\n## Works\n\n")
	if len(report.Works) == 0 {
		b.WriteString("_No works registered._\n")
	} else {
		b.WriteString("| Work | Cost | Revenue | Received | Balance | Profit | Profit % |\n")
		b.WriteString("|:---|---:|---:|---:|---:|---:|---:|\n")
		for _, w := range report.Works {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s%% |\n",
				cell(w.WorkTitle),
				display(w.TotalCost, currency),
				display(w.TotalRevenue, currency),
				display(w.TotalReceived, currency),
				display(w.Balance, currency),
				display(w.Profit, currency),
				w.ProfitPercentage.StringFixed(2),
			)
		}
	}

	var open []appledger.PaymentSummary
	for _, p := range snapshot.Payments {
		if !p.Settled {
			open = append(open, p)
		}
	}
	if len(open) > 0 {
		b.WriteString("\n## Outstanding payments\n\n")
		b.WriteString("| Work | Total | Received | Outstanding |\n")
		b.WriteString("|:---|---:|---:|---:|\n")
		for _, p := range open {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				cell(p.WorkTitle),
				display(p.TotalAmount, currency),
				display(p.Received, currency),
				display(p.Outstanding, currency),
			)
		}
	}
	return b.String()
}

func writeAnalytics(b *strings.Builder, a ledger.Analytics, currency valueobject.Currency) {
	rows := []struct {
		label string
		value string
	}{
		{"Materials", display(a.MaterialsCost, currency)},
		{"Expenses", display(a.TotalExpenses, currency)},
		{"Total cost", display(a.TotalCost, currency)},
		{"Revenue", display(a.TotalRevenue, currency)},
		{"Received", display(a.TotalReceived, currency)},
		{"Balance", display(a.Balance, currency)},
		{"Profit", display(a.Profit, currency)},
		{"Profit %", a.ProfitPercentage.StringFixed(2) + "%"},
	}
	b.WriteString("| | |\n|:---|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, r.value)
	}
}

func display(amount decimal.Decimal, currency valueobject.Currency) string {
	return valueobject.Of(amount, currency).Display()
}

// cell escapes the characters that would break a markdown table row
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
