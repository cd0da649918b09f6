package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// vcdbRepository implements the VCDBRepository interface
type vcdbRepository struct {
	db *gorm.DB
}

// NewVCDBRepository creates a new VCDB repository instance
func NewVCDBRepository(db *gorm.DB) VCDBRepository {
	return &vcdbRepository{db: db}
}

// Upsert inserts the record or, when the (tenant, year, make, model, submodel,
// drive_type) key already exists, updates the non-key fields in place.
// Returns whether a new row was created.
func (r *vcdbRepository) Upsert(record *models.VCDBRecord) (bool, error) {
	if record.TenantID == 0 {
		return false, ErrTenantRequired
	}

	var existing models.VCDBRecord
	err := r.db.Where(
		"tenant_id = ? AND year = ? AND make = ? AND model = ? AND submodel = ? AND drive_type = ?",
		record.TenantID, record.Year, record.Make, record.Model, record.Submodel, record.DriveType,
	).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		if cerr := r.db.Create(record).Error; cerr != nil {
			if IsDuplicateKey(cerr) {
				// lost a concurrent race; re-run as update
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

func (r *vcdbRepository) updateExisting(record *models.VCDBRecord) error {
	var existing models.VCDBRecord
	err := r.db.Where(
		"tenant_id = ? AND year = ? AND make = ? AND model = ? AND submodel = ? AND drive_type = ?",
		record.TenantID, record.Year, record.Make, record.Model, record.Submodel, record.DriveType,
	).First(&existing).Error
	if err != nil {
		return err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	return r.db.Save(record).Error
}

func (r *vcdbRepository) GetByIDs(tenantID uint, ids []uint) ([]models.VCDBRecord, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var records []models.VCDBRecord
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&records).Error
	return records, err
}

func (r *vcdbRepository) List(tenantID uint, offset, limit int) ([]models.VCDBRecord, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	var total int64
	if err := r.db.Model(&models.VCDBRecord{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.VCDBRecord
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("year, make, model").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

func (r *vcdbRepository) Count(tenantID uint) (int64, error) {
	if tenantID == 0 {
		return 0, ErrTenantRequired
	}
	var count int64
	err := r.db.Model(&models.VCDBRecord{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}

// Sample returns up to limit records in deterministic insertion order, used
// for the capped AI context.
func (r *vcdbRepository) Sample(tenantID uint, limit int) ([]models.VCDBRecord, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var records []models.VCDBRecord
	err := r.db.Where("tenant_id = ?", tenantID).Order("id").Limit(limit).Find(&records).Error
	return records, err
}
