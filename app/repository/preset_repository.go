package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// presetRepository implements the PresetRepository interface
type presetRepository struct {
	db *gorm.DB
}

// NewPresetRepository creates a new preset repository instance
func NewPresetRepository(db *gorm.DB) PresetRepository {
	return &presetRepository{db: db}
}

func (r *presetRepository) Create(p *models.Preset) error {
	if p.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Create(p).Error
}

func (r *presetRepository) GetByUUID(tenantID uint, uuid string) (*models.Preset, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var p models.Preset
	err := r.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *presetRepository) List(tenantID uint) ([]models.Preset, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var presets []models.Preset
	err := r.db.Where("tenant_id = ?", tenantID).Order("name").Find(&presets).Error
	return presets, err
}

func (r *presetRepository) Update(p *models.Preset) error {
	if p.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(p).Error
}

func (r *presetRepository) Delete(tenantID uint, uuid string) error {
	if tenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).Delete(&models.Preset{}).Error
}
