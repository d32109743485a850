package persistence

import (
	"context"
	"errors"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMaterialRepository implements catalog.MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var m models.MaterialModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrMaterialNotFound)
	}
	return m.ToDomain(), nil
}

// FindAll lists materials, by name unless the filter orders otherwise
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	var rows []models.MaterialModel
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "name", "asc"
	}
	q := applyListFilter(r.db.WithContext(ctx).Model(&models.MaterialModel{}),
		filter, MaterialSortFields, "name", "name", "category")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Material, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts materials matching the filter search
func (r *GormMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	q := applySearch(r.db.WithContext(ctx).Model(&models.MaterialModel{}), filter.Search, "name", "category")
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a new material
func (r *GormMaterialRepository) Create(ctx context.Context, m *catalog.Material) error {
	err := r.db.WithContext(ctx).Create(models.MaterialModelFromDomain(m)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves price and stock with optimistic locking (checks version)
func (r *GormMaterialRepository) SaveWithLock(ctx context.Context, m *catalog.Material) error {
	res := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ? AND version = ?", m.ID, m.ExpectedVersion()).
		Updates(map[string]any{
			"unit_price":         m.UnitPrice,
			"remaining_quantity": m.RemainingQuantity,
			"version":            m.Version,
			"updated_at":         m.UpdatedAt,
		})
	return lockResult(res)
}

// SaveConsumption persists a stock decrement. The stored row must still be
// at the expected version and hold at least quantity.
func (r *GormMaterialRepository) SaveConsumption(ctx context.Context, m *catalog.Material, quantity decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ? AND version = ? AND remaining_quantity >= ?", m.ID, m.ExpectedVersion(), quantity).
		Updates(map[string]any{
			"remaining_quantity": m.RemainingQuantity,
			"version":            m.Version,
			"updated_at":         m.UpdatedAt,
		})
	return lockResult(res)
}

func lockResult(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.NewConcurrencyError("MATERIAL_VERSION_CONFLICT",
			"Material stock was modified by another request")
	}
	return nil
}

var _ catalog.MaterialRepository = (*GormMaterialRepository)(nil)
