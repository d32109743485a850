package catalog

import (
	"fmt"
	"strings"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material is one SKU of the shared material catalog. RemainingQuantity is the
// single source of truth for stock visible to every customer ledger and is
// guarded by the aggregate version.
type Material struct {
	shared.BaseAggregateRoot
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
}

// NewMaterial creates a catalog entry with its opening stock
func NewMaterial(name, category, unit string, unitPrice, quantity decimal.Decimal) (*Material, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	unit = strings.TrimSpace(unit)

	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Opening quantity cannot be negative")
	}
	if !shared.FitsScale(unitPrice) {
		return nil, errPriceScale
	}
	if !shared.FitsScale(quantity) {
		return nil, errQuantityScale
	}
	if unit == "" {
		unit = "pcs"
	}

	m := &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Category:          category,
		Unit:              unit,
		UnitPrice:         unitPrice,
		RemainingQuantity: quantity,
	}
	m.AddDomainEvent(NewMaterialCreatedEvent(m))
	return m, nil
}

// CheckAvailable validates that quantity can be drawn from stock without mutating it
func (m *Material) CheckAvailable(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !shared.FitsScale(quantity) {
		return errQuantityScale
	}
	if quantity.GreaterThan(m.RemainingQuantity) {
		return shared.NewValidationError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s. Available: %s", m.Name, m.RemainingQuantity.String()))
	}
	return nil
}

// Consume decrements the remaining stock. Stock never goes below zero.
func (m *Material) Consume(quantity decimal.Decimal) error {
	if err := m.CheckAvailable(quantity); err != nil {
		return err
	}

	m.RemainingQuantity = m.RemainingQuantity.Sub(quantity)
	m.IncrementVersion()
	m.AddDomainEvent(NewStockConsumedEvent(m, quantity))
	return nil
}

// AdjustStock applies a stock delta. Only negative deltas are accepted since
// restocking is handled outside the ledger.
func (m *Material) AdjustStock(delta decimal.Decimal) error {
	if !delta.IsNegative() {
		return shared.NewValidationError("INVALID_ADJUSTMENT", "Stock adjustment must be negative")
	}
	return m.Consume(delta.Neg())
}

// UpdatePrice changes the current unit price. Consumption entries already
// recorded keep the price captured when they were created.
func (m *Material) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !shared.FitsScale(price) {
		return errPriceScale
	}
	if price.Equal(m.UnitPrice) {
		return nil
	}

	old := m.UnitPrice
	m.UnitPrice = price
	m.IncrementVersion()
	m.AddDomainEvent(NewMaterialPriceChangedEvent(m, old))
	return nil
}

// IsPriced reports whether the material carries a non-zero price
func (m *Material) IsPriced() bool {
	return m.UnitPrice.IsPositive()
}

// ErrMaterialNotFound is returned when a material id does not resolve
var ErrMaterialNotFound = shared.NewNotFoundError("MATERIAL_NOT_FOUND", "Material not found")

var (
	errPriceScale    = shared.NewValidationError("INVALID_PRICE", "Unit price supports at most 4 decimal places")
	errQuantityScale = shared.NewValidationError("INVALID_QUANTITY", "Quantity supports at most 4 decimal places")
)
