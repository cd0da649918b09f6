package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// TenantRepository defines tenant lookup and administration operations.
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetByUUID(uuid string) (*models.Tenant, error)
	GetBySlug(slug string) (*models.Tenant, error)
	GetDefault() (*models.Tenant, error)
	List() ([]models.Tenant, error)
	Update(tenant *models.Tenant) error
}

// UserRepository defines tenant-scoped user operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(tenantID, id uint) (*models.User, error)
	GetByEmail(tenantID uint, email string) (*models.User, error)
	List(tenantID uint, offset, limit int) ([]models.User, error)
	Update(user *models.User) error
}

// FieldConfigRepository persists the dynamic field schema and its audit trail.
type FieldConfigRepository interface {
	Create(cfg *models.FieldConfiguration, changedBy string) error
	Update(cfg *models.FieldConfiguration, old *models.FieldConfiguration, changedBy string) error
	Delete(tenantID uint, name, referenceType, changedBy string) error
	ToggleEnabled(tenantID uint, name, referenceType string, enabled bool, changedBy string) error
	Get(tenantID uint, name, referenceType string) (*models.FieldConfiguration, error)
	List(tenantID uint, referenceType string) ([]models.FieldConfiguration, error)
	ListEnabled(tenantID uint, referenceType string) ([]models.FieldConfiguration, error)
	History(tenantID uint, fieldName string, limit int) ([]models.FieldConfigurationHistory, error)
}

// UploadRepository persists upload sessions.
type UploadRepository interface {
	Create(session *models.UploadSession) error
	GetByUUID(tenantID uint, uuid string) (*models.UploadSession, error)
	List(tenantID uint, offset, limit int) ([]models.UploadSession, int64, error)
	Update(session *models.UploadSession) error
}

// VCDBRepository upserts and reads tenant-scoped vehicle configurations.
type VCDBRepository interface {
	Upsert(record *models.VCDBRecord) (created bool, err error)
	GetByIDs(tenantID uint, ids []uint) ([]models.VCDBRecord, error)
	List(tenantID uint, offset, limit int) ([]models.VCDBRecord, int64, error)
	Count(tenantID uint) (int64, error)
	Sample(tenantID uint, limit int) ([]models.VCDBRecord, error)
}

// ProductRepository upserts and reads tenant-scoped catalog parts.
type ProductRepository interface {
	Upsert(record *models.ProductRecord) (created bool, err error)
	GetByPartID(tenantID uint, partID string) (*models.ProductRecord, error)
	List(tenantID uint, offset, limit int) ([]models.ProductRecord, int64, error)
	Count(tenantID uint) (int64, error)
	Sample(tenantID uint, limit int) ([]models.ProductRecord, error)
}

// FitmentFilter captures the query surface of the fitments listing endpoint.
// String fields apply as case-insensitive contains; numeric bounds as ranges.
type FitmentFilter struct {
	PartID         string
	MakeName       string
	ModelName      string
	Submodel       string
	Position       string
	FitmentType    string
	ItemStatus     string
	YearFrom       int
	YearTo         int
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	IncludeDeleted bool
	Search         string
}

// FitmentRepository persists fitments with live-pair uniqueness and soft
// deletion.
type FitmentRepository interface {
	Create(f *models.Fitment) error
	CreateBatch(fitments []*models.Fitment) error
	GetByHash(tenantID uint, hash string) (*models.Fitment, error)
	// GetByHashAny also returns soft-deleted rows (admin/update paths).
	GetByHashAny(tenantID uint, hash string) (*models.Fitment, error)
	ExistsLive(tenantID uint, partID string, year int, make, model, submodel string) (bool, error)
	List(tenantID uint, filter FitmentFilter, offset, limit int) ([]models.Fitment, int64, error)
	Update(f *models.Fitment) error
	SoftDelete(tenantID uint, hash, by string) error
	SoftDeleteBulk(tenantID uint, hashes []string, by string) (int64, error)
	CountByType(tenantID uint) (map[string]int64, error)
}

// ProposalRepository persists AI fitment proposals through review.
type ProposalRepository interface {
	CreateBatch(proposals []*models.AIFitmentProposal) error
	GetByUUID(tenantID uint, uuid string) (*models.AIFitmentProposal, error)
	ListByStatus(tenantID uint, status string, sessionID *uint) ([]models.AIFitmentProposal, error)
	ListByUUIDs(tenantID uint, uuids []string) ([]models.AIFitmentProposal, error)
	Update(p *models.AIFitmentProposal) error
}

// JobRepository persists job records; MySQL is the source of truth for status.
type JobRepository interface {
	Create(job *models.Job) error
	GetByUUID(tenantID uint, uuid string) (*models.Job, error)
	GetByUUIDAny(uuid string) (*models.Job, error)
	List(tenantID uint, jobType string, offset, limit int) ([]models.Job, int64, error)
	Update(job *models.Job) error
	UpdateProgress(jobID uint, progress int, currentStep string, completedSteps int) error
	Cancel(tenantID uint, uuid string) error
	DeleteTerminalOlderThan(cutoff time.Time, jobTypes []string) (int64, error)
}

// LineageRepository appends and reads provenance edges. Append-only by
// contract; no delete operation exists.
type LineageRepository interface {
	Append(l *models.Lineage) error
	ByEntity(tenantID uint, entityType, entityID string) ([]models.Lineage, error)
}

// VCDBCategoryRepository manages global (cross-tenant) reference categories.
type VCDBCategoryRepository interface {
	Create(c *models.VCDBCategory) error
	List(activeOnly bool) ([]models.VCDBCategory, error)
	Update(c *models.VCDBCategory) error
	Delete(id uint) error
}

// PresetRepository manages tenant-scoped ai-map presets.
type PresetRepository interface {
	Create(p *models.Preset) error
	GetByUUID(tenantID uint, uuid string) (*models.Preset, error)
	List(tenantID uint) ([]models.Preset, error)
	Update(p *models.Preset) error
	Delete(tenantID uint, uuid string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Tenant       TenantRepository
	User         UserRepository
	FieldConfig  FieldConfigRepository
	Upload       UploadRepository
	VCDB         VCDBRepository
	Product      ProductRepository
	Fitment      FitmentRepository
	Proposal     ProposalRepository
	Job          JobRepository
	Lineage      LineageRepository
	VCDBCategory VCDBCategoryRepository
	Preset       PresetRepository
	Coverage     CoverageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:       NewTenantRepository(db),
		User:         NewUserRepository(db),
		FieldConfig:  NewFieldConfigRepository(db),
		Upload:       NewUploadRepository(db),
		VCDB:         NewVCDBRepository(db),
		Product:      NewProductRepository(db),
		Fitment:      NewFitmentRepository(db),
		Proposal:     NewProposalRepository(db),
		Job:          NewJobRepository(db),
		Lineage:      NewLineageRepository(db),
		VCDBCategory: NewVCDBCategoryRepository(db),
		Preset:       NewPresetRepository(db),
		Coverage:     NewCoverageRepository(db),
	}
}
