package ledger

import (
	"strings"
	"time"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialUsage is one consumption entry of the material ledger. UnitPrice
// is the catalog price captured when the entry was recorded and never
// changes afterwards.
type MaterialUsage struct {
	ID           uuid.UUID       `json:"id"`
	WorkID       uuid.UUID       `json:"work_id"`
	WorkTitle    string          `json:"work_title"`
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	RequestKey   string          `json:"request_key,omitempty"`
	AddedAt      time.Time       `json:"added_at"`
}

// IsUnpriced reports whether the entry was recorded at zero price
func (u MaterialUsage) IsUnpriced() bool {
	return u.UnitPrice.IsZero()
}

// ParseQuantity parses a caller supplied quantity, rejecting non-numeric
// and non-positive values
func ParseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, shared.NewValidationError("INVALID_QUANTITY", "Quantity is required")
	}
	q, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be a number")
	}
	if !q.IsPositive() {
		return decimal.Zero, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !shared.FitsScale(q) {
		return decimal.Zero, shared.NewValidationError("INVALID_QUANTITY", "Quantity supports at most 4 decimal places")
	}
	return q, nil
}

// RecordMaterialUsage draws quantity from the material and appends the
// matching consumption entry. Both aggregates are mutated in memory only;
// the caller must persist them in one transaction. On error neither
// aggregate is changed.
func (c *Customer) RecordMaterialUsage(workID uuid.UUID, material *catalog.Material, quantity decimal.Decimal, requestKey string) (*MaterialUsage, error) {
	if workID == uuid.Nil {
		return nil, shared.NewValidationError("WORK_REQUIRED", "Work is required")
	}
	if material == nil {
		return nil, shared.NewValidationError("MATERIAL_REQUIRED", "Material is required")
	}
	if len(requestKey) > 100 {
		return nil, shared.NewValidationError("INVALID_REQUEST_KEY", "Request key cannot exceed 100 characters")
	}
	if err := material.Consume(quantity); err != nil {
		return nil, err
	}

	usage := MaterialUsage{
		ID:           uuid.New(),
		WorkID:       workID,
		WorkTitle:    c.WorkTitle(workID),
		MaterialID:   material.ID,
		MaterialName: material.Name,
		Category:     material.Category,
		Unit:         material.Unit,
		Quantity:     quantity,
		UnitPrice:    material.UnitPrice,
		TotalCost:    quantity.Mul(material.UnitPrice).Round(shared.DecimalScale),
		RequestKey:   requestKey,
		AddedAt:      time.Now(),
	}
	c.Materials = append(c.Materials, usage)
	c.IncrementVersion()
	c.AddDomainEvent(NewMaterialUsageRecordedEvent(c, usage, material.RemainingQuantity))

	return &usage, nil
}
