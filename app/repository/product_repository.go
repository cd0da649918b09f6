package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Upsert inserts the record or updates the existing (tenant, part_id) row.
// Returns whether a new row was created.
func (r *productRepository) Upsert(record *models.ProductRecord) (bool, error) {
	if record.TenantID == 0 {
		return false, ErrTenantRequired
	}

	var existing models.ProductRecord
	err := r.db.Where("tenant_id = ? AND part_id = ?", record.TenantID, record.PartID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if cerr := r.db.Create(record).Error; cerr != nil {
			if IsDuplicateKey(cerr) {
				return false, r.updateExisting(record)
			}
			return false, cerr
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.CreatedBy = existing.CreatedBy
	return false, r.db.Save(record).Error
}

func (r *productRepository) updateExisting(record *models.ProductRecord) error {
	var existing models.ProductRecord
	if err := r.db.Where("tenant_id = ? AND part_id = ?", record.TenantID, record.PartID).First(&existing).Error; err != nil {
		return err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	return r.db.Save(record).Error
}

func (r *productRepository) GetByPartID(tenantID uint, partID string) (*models.ProductRecord, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var record models.ProductRecord
	err := r.db.Where("tenant_id = ? AND part_id = ?", tenantID, partID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *productRepository) List(tenantID uint, offset, limit int) ([]models.ProductRecord, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	var total int64
	if err := r.db.Model(&models.ProductRecord{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.ProductRecord
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("part_id").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

func (r *productRepository) Count(tenantID uint) (int64, error) {
	if tenantID == 0 {
		return 0, ErrTenantRequired
	}
	var count int64
	err := r.db.Model(&models.ProductRecord{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}

// Sample returns up to limit records in deterministic insertion order, used
// for the capped AI context.
func (r *productRepository) Sample(tenantID uint, limit int) ([]models.ProductRecord, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var records []models.ProductRecord
	err := r.db.Where("tenant_id = ?", tenantID).Order("id").Limit(limit).Find(&records).Error
	return records, err
}
