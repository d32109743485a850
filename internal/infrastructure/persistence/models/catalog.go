package models

import (
	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for a catalog material
type MaterialModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(200);not null;index"`
	Category          string          `gorm:"type:varchar(100)"`
	Unit              string          `gorm:"type:varchar(20);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;check:remaining_quantity >= 0"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a catalog Material
func (m *MaterialModel) ToDomain() *catalog.Material {
	return &catalog.Material{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		UnitPrice:         m.UnitPrice,
		RemainingQuantity: m.RemainingQuantity,
	}
}

// MaterialModelFromDomain creates a persistence model from a catalog Material
func MaterialModelFromDomain(mat *catalog.Material) *MaterialModel {
	m := &MaterialModel{
		Name:              mat.Name,
		Category:          mat.Category,
		Unit:              mat.Unit,
		UnitPrice:         mat.UnitPrice,
		RemainingQuantity: mat.RemainingQuantity,
	}
	m.FromDomainAggregateRoot(mat.BaseAggregateRoot)
	return m
}
