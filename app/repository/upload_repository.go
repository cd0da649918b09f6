package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// uploadRepository implements the UploadRepository interface
type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new upload session repository
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(session *models.UploadSession) error {
	if session.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Create(session).Error
}

func (r *uploadRepository) GetByUUID(tenantID uint, uuid string) (*models.UploadSession, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var session models.UploadSession
	err := r.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *uploadRepository) List(tenantID uint, offset, limit int) ([]models.UploadSession, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	var total int64
	if err := r.db.Model(&models.UploadSession{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sessions []models.UploadSession
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *uploadRepository) Update(session *models.UploadSession) error {
	if session.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(session).Error
}
