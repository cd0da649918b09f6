package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// MakeModelCoverage is one row of the per-make/model breakdown: how many
// vehicle configurations exist for the pair and how many carry at least one
// live fitment.
type MakeModelCoverage struct {
	Make           string `json:"make"`
	Model          string `json:"model"`
	Configurations int64  `json:"configurations"`
	Covered        int64  `json:"covered"`
	Fitments       int64  `json:"fitments"`
}

// TrendPoint is one month of fitment creation volume.
type TrendPoint struct {
	Month    string `json:"month"`
	Created  int64  `json:"created"`
	AICount  int64  `json:"ai_count"`
	ManCount int64  `json:"manual_count"`
}

// CoverageRepository answers aggregate questions about how much of the
// tenant's vehicle database its live fitments reach.
type CoverageRepository interface {
	CoveredConfigCount(tenantID uint) (int64, error)
	BreakdownByMakeModel(tenantID uint) ([]MakeModelCoverage, error)
	MonthlyTrend(tenantID uint, months int) ([]TrendPoint, error)
	UncoveredConfigs(tenantID uint, offset, limit int) ([]models.VCDBRecord, int64, error)
}

type coverageRepository struct {
	db *gorm.DB
}

// NewCoverageRepository creates a new coverage repository instance
func NewCoverageRepository(db *gorm.DB) CoverageRepository {
	return &coverageRepository{db: db}
}

// CoveredConfigCount counts vehicle configurations reached by at least one
// live fitment. Matching is on the (year, make, model, submodel) tuple.
func (r *coverageRepository) CoveredConfigCount(tenantID uint) (int64, error) {
	if tenantID == 0 {
		return 0, ErrTenantRequired
	}
	var count int64
	err := r.db.Model(&models.VCDBRecord{}).
		Where("vcdb_records.tenant_id = ?", tenantID).
		Where(`EXISTS (
			SELECT 1 FROM fitments f
			WHERE f.tenant_id = vcdb_records.tenant_id
			  AND f.is_deleted = FALSE
			  AND f.year = vcdb_records.year
			  AND f.make_name = vcdb_records.make
			  AND f.model_name = vcdb_records.model
			  AND (f.submodel = vcdb_records.submodel OR (f.submodel = '' AND vcdb_records.submodel = ''))
		)`).
		Count(&count).Error
	return count, err
}

func (r *coverageRepository) BreakdownByMakeModel(tenantID uint) ([]MakeModelCoverage, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var rows []MakeModelCoverage
	err := r.db.Raw(`
		SELECT v.make AS make,
		       v.model AS model,
		       COUNT(DISTINCT v.id) AS configurations,
		       COUNT(DISTINCT CASE WHEN f.id IS NOT NULL THEN v.id END) AS covered,
		       COUNT(DISTINCT f.id) AS fitments
		FROM vcdb_records v
		LEFT JOIN fitments f
		  ON f.tenant_id = v.tenant_id
		 AND f.is_deleted = FALSE
		 AND f.year = v.year
		 AND f.make_name = v.make
		 AND f.model_name = v.model
		WHERE v.tenant_id = ?
		GROUP BY v.make, v.model
		ORDER BY v.make, v.model`, tenantID).
		Scan(&rows).Error
	return rows, err
}

// MonthlyTrend returns per-month creation counts for the last N months,
// oldest first. Months without activity are absent from the result.
func (r *coverageRepository) MonthlyTrend(tenantID uint, months int) ([]TrendPoint, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	if months <= 0 {
		months = 12
	}
	var rows []TrendPoint
	err := r.db.Raw(`
		SELECT DATE_FORMAT(created_at, '%Y-%m') AS month,
		       COUNT(*) AS created,
		       SUM(CASE WHEN fitment_type IN (?, ?) THEN 1 ELSE 0 END) AS ai_count,
		       SUM(CASE WHEN fitment_type = ? THEN 1 ELSE 0 END) AS man_count
		FROM fitments
		WHERE tenant_id = ?
		  AND is_deleted = FALSE
		  AND created_at >= DATE_SUB(CURDATE(), INTERVAL ? MONTH)
		GROUP BY DATE_FORMAT(created_at, '%Y-%m')
		ORDER BY month`,
		models.FitmentTypeAI, models.FitmentTypePotential, models.FitmentTypeManual,
		tenantID, months).
		Scan(&rows).Error
	return rows, err
}

// UncoveredConfigs pages through vehicle configurations with no live fitment.
func (r *coverageRepository) UncoveredConfigs(tenantID uint, offset, limit int) ([]models.VCDBRecord, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	q := r.db.Model(&models.VCDBRecord{}).
		Where("vcdb_records.tenant_id = ?", tenantID).
		Where(`NOT EXISTS (
			SELECT 1 FROM fitments f
			WHERE f.tenant_id = vcdb_records.tenant_id
			  AND f.is_deleted = FALSE
			  AND f.year = vcdb_records.year
			  AND f.make_name = vcdb_records.make
			  AND f.model_name = vcdb_records.model
		)`)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.VCDBRecord
	err := q.Order("make, model, year").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}
