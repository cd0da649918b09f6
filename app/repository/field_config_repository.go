package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// fieldConfigRepository implements the FieldConfigRepository interface.
// Every mutation records a FieldConfigurationHistory row in the same
// transaction.
type fieldConfigRepository struct {
	db *gorm.DB
}

// NewFieldConfigRepository creates a new field configuration repository
func NewFieldConfigRepository(db *gorm.DB) FieldConfigRepository {
	return &fieldConfigRepository{db: db}
}

func (r *fieldConfigRepository) Create(cfg *models.FieldConfiguration, changedBy string) error {
	if cfg.TenantID == 0 {
		return ErrTenantRequired
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cfg).Error; err != nil {
			return err
		}
		return tx.Create(r.historyRow(cfg, models.FieldConfigActionCreated, nil, cfg, changedBy)).Error
	})
}

func (r *fieldConfigRepository) Update(cfg *models.FieldConfiguration, old *models.FieldConfiguration, changedBy string) error {
	if cfg.TenantID == 0 {
		return ErrTenantRequired
	}
	// name and reference_type are immutable after creation
	cfg.Name = old.Name
	cfg.ReferenceType = old.ReferenceType
	cfg.ID = old.ID
	if err := cfg.Validate(); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
		return tx.Create(r.historyRow(cfg, models.FieldConfigActionUpdated, old, cfg, changedBy)).Error
	})
}

func (r *fieldConfigRepository) Delete(tenantID uint, name, referenceType, changedBy string) error {
	if tenantID == 0 {
		return ErrTenantRequired
	}
	existing, err := r.Get(tenantID, name, referenceType)
	if err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FieldConfiguration{}, existing.ID).Error; err != nil {
			return err
		}
		return tx.Create(r.historyRow(existing, models.FieldConfigActionDeleted, existing, nil, changedBy)).Error
	})
}

func (r *fieldConfigRepository) ToggleEnabled(tenantID uint, name, referenceType string, enabled bool, changedBy string) error {
	if tenantID == 0 {
		return ErrTenantRequired
	}
	existing, err := r.Get(tenantID, name, referenceType)
	if err != nil {
		return err
	}
	old := *existing
	existing.IsEnabled = enabled
	action := models.FieldConfigActionEnabled
	if !enabled {
		action = models.FieldConfigActionDisabled
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		return tx.Create(r.historyRow(existing, action, &old, existing, changedBy)).Error
	})
}

func (r *fieldConfigRepository) Get(tenantID uint, name, referenceType string) (*models.FieldConfiguration, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var cfg models.FieldConfiguration
	err := r.db.Where("tenant_id = ? AND name = ? AND reference_type = ?", tenantID, name, referenceType).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List returns configurations for the tenant ordered by display_order, name.
// An empty referenceType lists all; otherwise the requested type plus "both".
func (r *fieldConfigRepository) List(tenantID uint, referenceType string) ([]models.FieldConfiguration, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	q := r.db.Where("tenant_id = ?", tenantID)
	if referenceType != "" {
		q = q.Where("reference_type IN ?", []string{referenceType, models.ReferenceBoth})
	}
	var configs []models.FieldConfiguration
	err := q.Order("display_order, name").Find(&configs).Error
	return configs, err
}

func (r *fieldConfigRepository) ListEnabled(tenantID uint, referenceType string) ([]models.FieldConfiguration, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var configs []models.FieldConfiguration
	err := r.db.Where("tenant_id = ? AND is_enabled = ? AND reference_type IN ?",
		tenantID, true, []string{referenceType, models.ReferenceBoth}).
		Order("display_order, name").Find(&configs).Error
	return configs, err
}

func (r *fieldConfigRepository) History(tenantID uint, fieldName string, limit int) ([]models.FieldConfigurationHistory, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	q := r.db.Where("tenant_id = ?", tenantID)
	if fieldName != "" {
		q = q.Where("field_name = ?", fieldName)
	}
	if limit <= 0 {
		limit = 100
	}
	var rows []models.FieldConfigurationHistory
	err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *fieldConfigRepository) historyRow(cfg *models.FieldConfiguration, action string, old, new_ *models.FieldConfiguration, changedBy string) *models.FieldConfigurationHistory {
	row := &models.FieldConfigurationHistory{
		TenantID:      cfg.TenantID,
		FieldConfigID: cfg.ID,
		FieldName:     cfg.Name,
		ReferenceType: cfg.ReferenceType,
		Action:        action,
		ChangedBy:     changedBy,
	}
	if old != nil {
		row.OldValues = models.JSONFrom(old)
	}
	if new_ != nil {
		row.NewValues = models.JSONFrom(new_)
	}
	return row
}
