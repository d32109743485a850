package catalog

import (
	"context"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialRepository defines the interface for material catalog persistence
type MaterialRepository interface {
	// FindByID finds a material by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindAll lists catalog materials ordered by name
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)

	// Count counts materials matching the filter search
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new material
	Create(ctx context.Context, material *Material) error

	// SaveWithLock persists stock and price changes, conditioned on the
	// stored version equal to material.Version-1. Returns a concurrency
	// error when the precondition does not hold.
	SaveWithLock(ctx context.Context, material *Material) error

	// SaveConsumption persists a stock decrement of quantity. Besides the
	// version precondition the stored remaining quantity must still cover
	// quantity, so stock can never be driven negative by a stale writer.
	SaveConsumption(ctx context.Context, material *Material, quantity decimal.Decimal) error
}
