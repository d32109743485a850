package catalog

import (
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeMaterial = "Material"

// Event type constants
const (
	EventTypeMaterialCreated      = "MaterialCreated"
	EventTypeStockConsumed        = "StockConsumed"
	EventTypeMaterialPriceChanged = "MaterialPriceChanged"
)

// MaterialCreatedEvent is raised when a material is added to the catalog
type MaterialCreatedEvent struct {
	shared.BaseDomainEvent
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// NewMaterialCreatedEvent creates a new MaterialCreatedEvent
func NewMaterialCreatedEvent(m *Material) *MaterialCreatedEvent {
	return &MaterialCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialCreated, AggregateTypeMaterial, m.ID),
		MaterialID:      m.ID,
		Name:            m.Name,
		UnitPrice:       m.UnitPrice,
		Quantity:        m.RemainingQuantity,
	}
}

// StockConsumedEvent is raised when stock is drawn from the catalog
type StockConsumedEvent struct {
	shared.BaseDomainEvent
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// NewStockConsumedEvent creates a new StockConsumedEvent
func NewStockConsumedEvent(m *Material, quantity decimal.Decimal) *StockConsumedEvent {
	return &StockConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsumed, AggregateTypeMaterial, m.ID),
		MaterialID:      m.ID,
		Name:            m.Name,
		Quantity:        quantity,
		Remaining:       m.RemainingQuantity,
	}
}

// MaterialPriceChangedEvent is raised when the catalog price changes
type MaterialPriceChangedEvent struct {
	shared.BaseDomainEvent
	MaterialID uuid.UUID       `json:"material_id"`
	OldPrice   decimal.Decimal `json:"old_price"`
	NewPrice   decimal.Decimal `json:"new_price"`
}

// NewMaterialPriceChangedEvent creates a new MaterialPriceChangedEvent
func NewMaterialPriceChangedEvent(m *Material, oldPrice decimal.Decimal) *MaterialPriceChangedEvent {
	return &MaterialPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaterialPriceChanged, AggregateTypeMaterial, m.ID),
		MaterialID:      m.ID,
		OldPrice:        oldPrice,
		NewPrice:        m.UnitPrice,
	}
}
