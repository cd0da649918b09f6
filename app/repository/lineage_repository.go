package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// lineageRepository implements the LineageRepository interface. Lineage is
// append-only: there is intentionally no update or delete operation.
type lineageRepository struct {
	db *gorm.DB
}

// NewLineageRepository creates a new lineage repository instance
func NewLineageRepository(db *gorm.DB) LineageRepository {
	return &lineageRepository{db: db}
}

func (r *lineageRepository) Append(l *models.Lineage) error {
	if l.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Create(l).Error
}

func (r *lineageRepository) ByEntity(tenantID uint, entityType, entityID string) ([]models.Lineage, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var rows []models.Lineage
	err := r.db.Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("created_at, id").Find(&rows).Error
	return rows, err
}
