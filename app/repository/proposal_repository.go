package repository

import (
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// proposalRepository implements the ProposalRepository interface
type proposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new AI fitment proposal repository
func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) CreateBatch(proposals []*models.AIFitmentProposal) error {
	if len(proposals) == 0 {
		return nil
	}
	for _, p := range proposals {
		if p.TenantID == 0 {
			return ErrTenantRequired
		}
	}
	return r.db.Create(&proposals).Error
}

func (r *proposalRepository) GetByUUID(tenantID uint, uuid string) (*models.AIFitmentProposal, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var p models.AIFitmentProposal
	err := r.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepository) ListByStatus(tenantID uint, status string, sessionID *uint) ([]models.AIFitmentProposal, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	q := r.db.Where("tenant_id = ? AND status = ?", tenantID, status)
	if sessionID != nil {
		q = q.Where("session_id = ?", *sessionID)
	}
	var proposals []models.AIFitmentProposal
	err := q.Order("confidence_score DESC, id").Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) ListByUUIDs(tenantID uint, uuids []string) ([]models.AIFitmentProposal, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	if len(uuids) == 0 {
		return nil, nil
	}
	var proposals []models.AIFitmentProposal
	err := r.db.Where("tenant_id = ? AND uuid IN ?", tenantID, uuids).Find(&proposals).Error
	return proposals, err
}

func (r *proposalRepository) Update(p *models.AIFitmentProposal) error {
	if p.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(p).Error
}
