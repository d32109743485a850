package persistence

import (
	"context"
	"fmt"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormActivityRepository implements ledger.ActivityRepository using GORM.
// Inserts ignore an existing id, so a redelivered entry is a no-op.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Append stores entry for the customer
func (r *GormActivityRepository) Append(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(models.ActivityModelFromDomain(customerID, entry)).Error
}

// FindByCustomer returns the newest entries first; limit <= 0 means all
func (r *GormActivityRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]ledger.ActivityEntry, error) {
	return findActivities(r.db.WithContext(ctx), customerID, limit)
}

func findActivities(db *gorm.DB, customerID uuid.UUID, limit int) ([]ledger.ActivityEntry, error) {
	var rows []models.ActivityModel
	q := db.Where("customer_id = ?", customerID).Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	out := make([]ledger.ActivityEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ ledger.ActivityRepository = (*GormActivityRepository)(nil)
