package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	appcatalog "github.com/bizops/backend/internal/application/catalog"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type materialsCmd struct {
	search   string
	page     int
	pageSize int
}

func (*materialsCmd) Name() string     { return "materials" }
func (*materialsCmd) Synopsis() string { return "list the material catalog with stock and prices" }
func (*materialsCmd) Usage() string {
	return `ledgerctl materials [-search <text>] [-page <n>] [-page-size <n>]

  Lists catalog materials with their remaining stock and current unit price.
`
}

func (c *materialsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Filter by name or category")
	f.IntVar(&c.page, "page", 1, "Page number")
	f.IntVar(&c.pageSize, "page-size", 50, "Materials per page (max 100)")
}

func (c *materialsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	page, err := a.materials.List(ctx, appcatalog.MaterialListFilter{
		Search:   c.search,
		Page:     c.page,
		PageSize: c.pageSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(materialsMarkdown(page.Items, page.Total, a.ledger.Currency()))
	return subcommands.ExitSuccess
}

type addMaterialCmd struct {
	name     string
	category string
	unit     string
	price    string
	quantity string
}

func (*addMaterialCmd) Name() string     { return "add-material" }
func (*addMaterialCmd) Synopsis() string { return "add a material to the catalog" }
func (*addMaterialCmd) Usage() string {
	return `ledgerctl add-material -name <name> [-category <c>] [-unit <u>] [-price <p>] [-quantity <q>]

  Adds a material with its opening stock. A material without a price is
  consumed at zero cost until a price is set.
`
}

func (c *addMaterialCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Material name (required)")
	f.StringVar(&c.category, "category", "", "Category")
	f.StringVar(&c.unit, "unit", "", "Unit of measure, e.g. bag or kg")
	f.StringVar(&c.price, "price", "0", "Unit price")
	f.StringVar(&c.quantity, "quantity", "0", "Opening stock")
}

func (c *addMaterialCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -price %q\n", c.price)
		return subcommands.ExitUsageError
	}
	quantity, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -quantity %q\n", c.quantity)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	material, err := a.materials.Create(ctx, appcatalog.CreateMaterialRequest{
		Name:      c.name,
		Category:  c.category,
		Unit:      c.unit,
		UnitPrice: price,
		Quantity:  quantity,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Added %s (%s)\n", material.Name, material.ID)
	return subcommands.ExitSuccess
}
