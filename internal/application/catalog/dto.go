package catalog

import (
	"time"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest represents a request to add a material to the catalog
type CreateMaterialRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Category  string          `json:"category" binding:"max=100"`
	Unit      string          `json:"unit" binding:"max=20"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0" swaggertype:"string" example:"420.00"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gte0" swaggertype:"string" example:"50"`
}

// UpdatePriceRequest represents a request to change the current unit price
type UpdatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0" swaggertype:"string" example:"435.50"`
}

// AdjustStockRequest represents a manual stock correction. Delta must be negative.
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta" swaggertype:"string" example:"-2"`
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// MaterialResponse represents a catalog material in API responses
type MaterialResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Priced            bool            `json:"priced"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToMaterialResponse converts a domain Material to MaterialResponse
func ToMaterialResponse(m *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:                m.ID,
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		UnitPrice:         m.UnitPrice,
		RemainingQuantity: m.RemainingQuantity,
		Priced:            m.IsPriced(),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Version:           m.Version,
	}
}

// ToMaterialResponses converts a slice of materials
func ToMaterialResponses(materials []catalog.Material) []MaterialResponse {
	out := make([]MaterialResponse, len(materials))
	for i := range materials {
		out[i] = ToMaterialResponse(&materials[i])
	}
	return out
}
