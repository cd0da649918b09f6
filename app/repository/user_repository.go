package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	if user.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(tenantID, id uint) (*models.User, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var user models.User
	if err := r.db.Where("tenant_id = ?", tenantID).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(tenantID uint, email string) (*models.User, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var user models.User
	if err := r.db.Where("tenant_id = ? AND email = ?", tenantID, email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(tenantID uint, offset, limit int) ([]models.User, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var users []models.User
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

func (r *userRepository) Update(user *models.User) error {
	if user.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(user).Error
}
