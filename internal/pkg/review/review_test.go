package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
)

type proposalStore struct {
	byUUID    map[string]*models.AIFitmentProposal
	updateErr error
}

func newProposalStore(proposals ...*models.AIFitmentProposal) *proposalStore {
	s := &proposalStore{byUUID: map[string]*models.AIFitmentProposal{}}
	for _, p := range proposals {
		s.byUUID[p.UUID] = p
	}
	return s
}

func (s *proposalStore) CreateBatch(proposals []*models.AIFitmentProposal) error {
	for _, p := range proposals {
		s.byUUID[p.UUID] = p
	}
	return nil
}

func (s *proposalStore) GetByUUID(tenantID uint, uuid string) (*models.AIFitmentProposal, error) {
	if p, ok := s.byUUID[uuid]; ok {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (s *proposalStore) ListByStatus(tenantID uint, status string, sessionID *uint) ([]models.AIFitmentProposal, error) {
	out := []models.AIFitmentProposal{}
	for _, p := range s.byUUID {
		if p.TenantID != tenantID || p.Status != status {
			continue
		}
		if sessionID != nil && p.SessionID != *sessionID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *proposalStore) ListByUUIDs(tenantID uint, uuids []string) ([]models.AIFitmentProposal, error) {
	out := []models.AIFitmentProposal{}
	for _, id := range uuids {
		if p, ok := s.byUUID[id]; ok && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *proposalStore) Update(p *models.AIFitmentProposal) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	clone := *p
	s.byUUID[p.UUID] = &clone
	return nil
}

type fitmentStore struct {
	byHash map[string]*models.Fitment
}

func newFitmentStore() *fitmentStore {
	return &fitmentStore{byHash: map[string]*models.Fitment{}}
}

func (s *fitmentStore) hashOf(f *models.Fitment) string {
	return models.FitmentHash(f.TenantID, f.PartID, f.Year, f.MakeName, f.ModelName, f.Submodel)
}

func (s *fitmentStore) Create(f *models.Fitment) error {
	hash := s.hashOf(f)
	if _, ok := s.byHash[hash]; ok {
		return errors.New("duplicate entry for key idx_fitments_live")
	}
	f.Hash = hash
	s.byHash[hash] = f
	return nil
}

func (s *fitmentStore) CreateBatch(fitments []*models.Fitment) error {
	for _, f := range fitments {
		if err := s.Create(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *fitmentStore) GetByHash(tenantID uint, hash string) (*models.Fitment, error) {
	f, ok := s.byHash[hash]
	if !ok || f.IsDeleted {
		return nil, errors.New("record not found")
	}
	return f, nil
}

func (s *fitmentStore) GetByHashAny(tenantID uint, hash string) (*models.Fitment, error) {
	if f, ok := s.byHash[hash]; ok {
		return f, nil
	}
	return nil, errors.New("record not found")
}

func (s *fitmentStore) ExistsLive(tenantID uint, partID string, year int, make, model, submodel string) (bool, error) {
	f, ok := s.byHash[models.FitmentHash(tenantID, partID, year, make, model, submodel)]
	return ok && !f.IsDeleted, nil
}

func (s *fitmentStore) List(tenantID uint, filter repository.FitmentFilter, offset, limit int) ([]models.Fitment, int64, error) {
	return nil, 0, nil
}

func (s *fitmentStore) Update(f *models.Fitment) error {
	s.byHash[f.Hash] = f
	return nil
}

func (s *fitmentStore) SoftDelete(tenantID uint, hash, by string) error {
	f, ok := s.byHash[hash]
	if !ok {
		return errors.New("record not found")
	}
	f.MarkDeleted(by)
	return nil
}

func (s *fitmentStore) SoftDeleteBulk(tenantID uint, hashes []string, by string) (int64, error) {
	var n int64
	for _, h := range hashes {
		if f, ok := s.byHash[h]; ok && !f.IsDeleted {
			f.MarkDeleted(by)
			n++
		}
	}
	return n, nil
}

func (s *fitmentStore) CountByType(tenantID uint) (map[string]int64, error) { return nil, nil }

func pendingProposal(uuid string, year int) *models.AIFitmentProposal {
	return &models.AIFitmentProposal{
		UUID:            uuid,
		TenantID:        1,
		PartID:          "P-1",
		PartDescription: "Brake pad set",
		Year:            year,
		MakeName:        "Ford",
		ModelName:       "F-150",
		Quantity:        1,
		UOM:             "EA",
		ConfidenceScore: 0.8,
		Status:          models.ProposalStatusPending,
	}
}

func newReviewService(proposals *proposalStore, fitments *fitmentStore) *Service {
	return NewService(&repository.Repositories{Proposal: proposals, Fitment: fitments}, nil)
}

func TestApprovePromotesPendingProposals(t *testing.T) {
	proposals := newProposalStore(pendingProposal("a", 2020), pendingProposal("b", 2021))
	fitments := newFitmentStore()
	svc := newReviewService(proposals, fitments)

	result, err := svc.Approve(1, []string{"a", "b"}, "reviewer", "looks right")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Approved)
	assert.Equal(t, 2, result.Promoted)
	assert.Empty(t, result.Skipped)

	stored := proposals.byUUID["a"]
	assert.Equal(t, models.ProposalStatusApproved, stored.Status)
	assert.Equal(t, "reviewer", stored.ReviewedBy)
	assert.Equal(t, "looks right", stored.ReviewNotes)
	assert.NotNil(t, stored.ReviewedAt)

	assert.Len(t, fitments.byHash, 2)
	for _, f := range fitments.byHash {
		assert.Equal(t, models.FitmentTypeAI, f.FitmentType)
	}
}

func TestApproveSkipsUnknownAndTerminal(t *testing.T) {
	rejected := pendingProposal("done", 2022)
	rejected.Status = models.ProposalStatusRejected
	proposals := newProposalStore(pendingProposal("a", 2020), rejected)
	svc := newReviewService(proposals, newFitmentStore())

	result, err := svc.Approve(1, []string{"a", "ghost", "done"}, "reviewer", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Approved)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "ghost", result.Skipped[0].UUID)
	assert.Equal(t, "proposal not found", result.Skipped[0].Reason)
	assert.Equal(t, "done", result.Skipped[1].UUID)
	assert.Contains(t, result.Skipped[1].Reason, "already rejected")
}

func TestApproveExistingFitmentNotPromoted(t *testing.T) {
	proposals := newProposalStore(pendingProposal("a", 2020))
	fitments := newFitmentStore()
	require.NoError(t, fitments.Create(&models.Fitment{
		TenantID: 1, PartID: "P-1", Year: 2020, MakeName: "Ford", ModelName: "F-150",
	}))
	svc := newReviewService(proposals, fitments)

	result, err := svc.Approve(1, []string{"a"}, "reviewer", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Approved, "approval itself still succeeds")
	assert.Equal(t, 0, result.Promoted)
	assert.Equal(t, models.ProposalStatusApproved, proposals.byUUID["a"].Status)
}

func TestRejectLeavesNoFitments(t *testing.T) {
	proposals := newProposalStore(pendingProposal("a", 2020))
	fitments := newFitmentStore()
	svc := newReviewService(proposals, fitments)

	result, err := svc.Reject(1, []string{"a"}, "reviewer", "bad match")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rejected)
	assert.Empty(t, fitments.byHash)
	assert.Equal(t, models.ProposalStatusRejected, proposals.byUUID["a"].Status)
	assert.Equal(t, "bad match", proposals.byUUID["a"].ReviewNotes)
}

func TestPublishApprovedProposals(t *testing.T) {
	first := pendingProposal("a", 2020)
	first.Status = models.ProposalStatusApproved
	second := pendingProposal("b", 2021)
	second.Status = models.ProposalStatusApproved
	stillPending := pendingProposal("c", 2022)

	proposals := newProposalStore(first, second, stillPending)
	fitments := newFitmentStore()
	// the 2021 pair already exists live
	require.NoError(t, fitments.Create(&models.Fitment{
		TenantID: 1, PartID: "P-1", Year: 2021, MakeName: "Ford", ModelName: "F-150",
	}))
	svc := newReviewService(proposals, fitments)

	result, err := svc.Publish(1, nil, "publisher")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Promoted)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "b", result.Skipped[0].UUID)
	assert.Len(t, fitments.byHash, 2, "pending proposals are not published")
}

func TestUpdateFitmentRestoresSoftDeleted(t *testing.T) {
	fitments := newFitmentStore()
	f := &models.Fitment{TenantID: 1, PartID: "P-1", Year: 2020, MakeName: "Ford", ModelName: "F-150"}
	require.NoError(t, fitments.Create(f))
	f.MarkDeleted("admin")

	svc := newReviewService(newProposalStore(), fitments)
	updated, err := svc.UpdateFitment(1, f.Hash, "editor", func(m *models.Fitment) {
		m.Notes = "refreshed"
	})
	require.NoError(t, err)
	assert.False(t, updated.IsDeleted)
	require.NotNil(t, updated.LiveMarker)
	assert.True(t, *updated.LiveMarker)
	assert.Equal(t, "refreshed", updated.Notes)
	assert.Equal(t, "editor", updated.UpdatedBy)
}

func TestUpdateFitmentUnknownHash(t *testing.T) {
	svc := newReviewService(newProposalStore(), newFitmentStore())
	_, err := svc.UpdateFitment(1, "no-such-hash", "editor", func(*models.Fitment) {})
	require.Error(t, err)
}

func TestDeleteFitmentsCountsFlaggedOnly(t *testing.T) {
	fitments := newFitmentStore()
	f := &models.Fitment{TenantID: 1, PartID: "P-1", Year: 2020, MakeName: "Ford", ModelName: "F-150"}
	require.NoError(t, fitments.Create(f))

	svc := newReviewService(newProposalStore(), fitments)
	deleted, err := svc.DeleteFitments(1, []string{f.Hash, "missing"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.True(t, fitments.byHash[f.Hash].IsDeleted)
}
