package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// vcdbCategoryRepository implements the VCDBCategoryRepository interface.
// Categories are global reference data, deliberately not tenant-scoped.
type vcdbCategoryRepository struct {
	db *gorm.DB
}

// NewVCDBCategoryRepository creates a new VCDB category repository
func NewVCDBCategoryRepository(db *gorm.DB) VCDBCategoryRepository {
	return &vcdbCategoryRepository{db: db}
}

func (r *vcdbCategoryRepository) Create(c *models.VCDBCategory) error {
	return r.db.Create(c).Error
}

func (r *vcdbCategoryRepository) List(activeOnly bool) ([]models.VCDBCategory, error) {
	q := r.db.Order("sort_order, name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var categories []models.VCDBCategory
	err := q.Find(&categories).Error
	return categories, err
}

func (r *vcdbCategoryRepository) Update(c *models.VCDBCategory) error {
	return r.db.Save(c).Error
}

func (r *vcdbCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.VCDBCategory{}, id).Error
}
