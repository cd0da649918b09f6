package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// fitmentRepository implements the FitmentRepository interface
type fitmentRepository struct {
	db *gorm.DB
}

// NewFitmentRepository creates a new fitment repository instance
func NewFitmentRepository(db *gorm.DB) FitmentRepository {
	return &fitmentRepository{db: db}
}

// Create inserts a new live fitment. A soft-deleted row keeps its hash, so
// re-creating the same logical pair collides on the hash index; that row is
// revived in place instead. Collisions with a live row stay duplicate errors.
func (r *fitmentRepository) Create(f *models.Fitment) error {
	if f.TenantID == 0 {
		return ErrTenantRequired
	}
	err := r.db.Create(f).Error
	if err == nil || !IsDuplicateKey(err) {
		return err
	}

	hash := f.Hash
	if hash == "" {
		hash = models.FitmentHash(f.TenantID, f.PartID, f.Year, f.MakeName, f.ModelName, f.Submodel)
	}
	existing, lookupErr := r.GetByHashAny(f.TenantID, hash)
	if lookupErr != nil || !existing.IsDeleted {
		return err
	}
	reviveFitment(existing, f)
	if saveErr := r.db.Save(existing).Error; saveErr != nil {
		return saveErr
	}
	*f = *existing
	return nil
}

// reviveFitment reactivates a soft-deleted row with the attributes of the
// incoming fitment. Identity columns, the hash and the original creation
// audit are preserved.
func reviveFitment(existing, incoming *models.Fitment) {
	existing.ItemStatus = incoming.ItemStatus
	existing.ItemStatusCode = incoming.ItemStatusCode
	existing.BaseVehicleID = incoming.BaseVehicleID
	existing.DriveType = incoming.DriveType
	existing.FuelType = incoming.FuelType
	existing.NumDoors = incoming.NumDoors
	existing.BodyType = incoming.BodyType
	existing.PTID = incoming.PTID
	existing.PartTypeDescriptor = incoming.PartTypeDescriptor
	existing.UOM = incoming.UOM
	existing.Quantity = incoming.Quantity
	existing.Title = incoming.Title
	existing.Description = incoming.Description
	existing.Notes = incoming.Notes
	existing.Position = incoming.Position
	existing.PositionID = incoming.PositionID
	existing.LiftHeight = incoming.LiftHeight
	existing.WheelType = incoming.WheelType
	existing.FitmentType = incoming.FitmentType
	existing.ConfidenceScore = incoming.ConfidenceScore
	existing.AIDescription = incoming.AIDescription
	existing.AIReasoningRef = incoming.AIReasoningRef
	existing.DynamicFields = incoming.DynamicFields
	existing.UpdatedBy = incoming.CreatedBy
	existing.MarkRestored(incoming.CreatedBy)
}

// CreateBatch inserts all fitments in one statement. On duplicate-key errors
// the caller falls back to per-row Create with idempotency checks so partial
// batches still succeed.
func (r *fitmentRepository) CreateBatch(fitments []*models.Fitment) error {
	if len(fitments) == 0 {
		return nil
	}
	for _, f := range fitments {
		if f.TenantID == 0 {
			return ErrTenantRequired
		}
	}
	return r.db.Create(&fitments).Error
}

func (r *fitmentRepository) GetByHash(tenantID uint, hash string) (*models.Fitment, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var f models.Fitment
	err := r.db.Where("tenant_id = ? AND hash = ? AND is_deleted = ?", tenantID, hash, false).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fitmentRepository) GetByHashAny(tenantID uint, hash string) (*models.Fitment, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var f models.Fitment
	err := r.db.Where("tenant_id = ? AND hash = ?", tenantID, hash).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ExistsLive reports whether a live fitment already occupies the logical pair.
func (r *fitmentRepository) ExistsLive(tenantID uint, partID string, year int, make, model, submodel string) (bool, error) {
	if tenantID == 0 {
		return false, ErrTenantRequired
	}
	var count int64
	err := r.db.Model(&models.Fitment{}).
		Where("tenant_id = ? AND part_id = ? AND year = ? AND make_name = ? AND model_name = ? AND submodel = ? AND is_deleted = ?",
			tenantID, partID, year, make, model, submodel, false).
		Count(&count).Error
	return count > 0, err
}

func (r *fitmentRepository) List(tenantID uint, filter FitmentFilter, offset, limit int) ([]models.Fitment, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	q := r.db.Model(&models.Fitment{}).Where("tenant_id = ?", tenantID)
	if !filter.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	q = applyContains(q, "part_id", filter.PartID)
	q = applyContains(q, "make_name", filter.MakeName)
	q = applyContains(q, "model_name", filter.ModelName)
	q = applyContains(q, "submodel", filter.Submodel)
	q = applyContains(q, "position", filter.Position)
	if filter.FitmentType != "" {
		q = q.Where("fitment_type = ?", filter.FitmentType)
	}
	if filter.ItemStatus != "" {
		q = q.Where("item_status = ?", filter.ItemStatus)
	}
	if filter.YearFrom > 0 {
		q = q.Where("year >= ?", filter.YearFrom)
	}
	if filter.YearTo > 0 {
		q = q.Where("year <= ?", filter.YearTo)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		q = q.Where(
			"LOWER(part_id) LIKE ? OR LOWER(make_name) LIKE ? OR LOWER(model_name) LIKE ? OR LOWER(title) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var fitments []models.Fitment
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&fitments).Error
	return fitments, total, err
}

func (r *fitmentRepository) Update(f *models.Fitment) error {
	if f.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(f).Error
}

func (r *fitmentRepository) SoftDelete(tenantID uint, hash, by string) error {
	f, err := r.GetByHash(tenantID, hash)
	if err != nil {
		return err
	}
	f.MarkDeleted(by)
	return r.db.Save(f).Error
}

// SoftDeleteBulk marks every matching live fitment deleted; unknown hashes
// are skipped. Returns the number of rows flagged.
func (r *fitmentRepository) SoftDeleteBulk(tenantID uint, hashes []string, by string) (int64, error) {
	if tenantID == 0 {
		return 0, ErrTenantRequired
	}
	if len(hashes) == 0 {
		return 0, nil
	}
	now := time.Now()
	res := r.db.Model(&models.Fitment{}).
		Where("tenant_id = ? AND hash IN ? AND is_deleted = ?", tenantID, hashes, false).
		Updates(map[string]interface{}{
			"is_deleted":  true,
			"deleted_at":  now,
			"deleted_by":  by,
			"live_marker": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *fitmentRepository) CountByType(tenantID uint) (map[string]int64, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var rows []struct {
		FitmentType string
		Count       int64
	}
	err := r.db.Model(&models.Fitment{}).
		Select("fitment_type, COUNT(*) as count").
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false).
		Group("fitment_type").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.FitmentType] = row.Count
	}
	return out, nil
}

func applyContains(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(strings.TrimSpace(value))+"%")
}
