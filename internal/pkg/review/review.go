// Package review drives the proposal state machine and the fitment
// soft-delete lifecycle. Proposals move pending to approved or rejected;
// approval materializes a live fitment.
package review

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/lineage"
)

// Skipped explains why one proposal id in a bulk request was not transitioned.
type Skipped struct {
	UUID   string `json:"id"`
	Reason string `json:"reason"`
}

// Result summarizes one bulk review operation.
type Result struct {
	Approved  int       `json:"approved"`
	Rejected  int       `json:"rejected"`
	Promoted  int       `json:"promoted"`
	Skipped   []Skipped `json:"skipped"`
	Reviewer  string    `json:"reviewer"`
	Timestamp time.Time `json:"timestamp"`
}

// Service applies review transitions for one tenant at a time.
type Service struct {
	proposals repository.ProposalRepository
	fitments  repository.FitmentRepository
	lineage   *lineage.Recorder
}

// NewService wires the review service.
func NewService(repos *repository.Repositories, recorder *lineage.Recorder) *Service {
	return &Service{
		proposals: repos.Proposal,
		fitments:  repos.Fitment,
		lineage:   recorder,
	}
}

// Approve transitions the given pending proposals to approved and
// materializes each into a live fitment. Unknown or already-terminal ids are
// skipped with a warning, never a failure.
func (s *Service) Approve(tenantID uint, uuids []string, reviewedBy, notes string) (*Result, error) {
	result := &Result{Skipped: []Skipped{}, Reviewer: reviewedBy, Timestamp: time.Now()}

	proposals, err := s.proposals.ListByUUIDs(tenantID, uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}
	found := map[string]*models.AIFitmentProposal{}
	for i := range proposals {
		found[proposals[i].UUID] = &proposals[i]
	}

	for _, id := range uuids {
		p, ok := found[id]
		if !ok {
			result.skip(id, "proposal not found")
			continue
		}
		if p.IsTerminal() {
			result.skip(id, fmt.Sprintf("proposal already %s", p.Status))
			continue
		}

		s.markReviewed(p, models.ProposalStatusApproved, reviewedBy, notes)
		if err := s.proposals.Update(p); err != nil {
			result.skip(id, "failed to update proposal")
			log.Errorf("[Review] Failed to approve proposal %s: %v", id, err)
			continue
		}
		result.Approved++

		if s.promote(tenantID, p, reviewedBy) {
			result.Promoted++
		}
	}
	return result, nil
}

// Reject transitions the given pending proposals to rejected. Rejection is
// terminal; nothing is materialized.
func (s *Service) Reject(tenantID uint, uuids []string, reviewedBy, notes string) (*Result, error) {
	result := &Result{Skipped: []Skipped{}, Reviewer: reviewedBy, Timestamp: time.Now()}

	proposals, err := s.proposals.ListByUUIDs(tenantID, uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}
	found := map[string]*models.AIFitmentProposal{}
	for i := range proposals {
		found[proposals[i].UUID] = &proposals[i]
	}

	for _, id := range uuids {
		p, ok := found[id]
		if !ok {
			result.skip(id, "proposal not found")
			continue
		}
		if p.IsTerminal() {
			result.skip(id, fmt.Sprintf("proposal already %s", p.Status))
			continue
		}
		s.markReviewed(p, models.ProposalStatusRejected, reviewedBy, notes)
		if err := s.proposals.Update(p); err != nil {
			result.skip(id, "failed to update proposal")
			log.Errorf("[Review] Failed to reject proposal %s: %v", id, err)
			continue
		}
		result.Rejected++
	}
	return result, nil
}

// Publish promotes every approved proposal for the tenant (optionally scoped
// to one upload session) into live fitments. Only approved proposals of the
// same tenant are eligible; proposals whose fitment already exists count as
// skipped.
func (s *Service) Publish(tenantID uint, sessionID *uint, publishedBy string) (*Result, error) {
	result := &Result{Skipped: []Skipped{}, Reviewer: publishedBy, Timestamp: time.Now()}

	approved, err := s.proposals.ListByStatus(tenantID, models.ProposalStatusApproved, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved proposals: %w", err)
	}

	for i := range approved {
		p := &approved[i]
		if s.promote(tenantID, p, publishedBy) {
			result.Promoted++
		} else {
			result.skip(p.UUID, "fitment already exists")
		}
	}
	return result, nil
}

// promote materializes one approved proposal. Duplicate live pairs are not an
// error; the existing fitment wins and the proposal stays approved.
func (s *Service) promote(tenantID uint, p *models.AIFitmentProposal, by string) bool {
	f := p.ToFitment(by)
	err := s.fitments.Create(f)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			log.Warnf("[Review] Proposal %s maps to an existing live fitment, skipping", p.UUID)
		} else {
			log.Errorf("[Review] Failed to materialize proposal %s: %v", p.UUID, err)
		}
		return false
	}
	if s.lineage != nil {
		s.lineage.RecordFitmentFromProposal(tenantID, f.Hash, p.UUID, map[string]interface{}{
			"confidence": p.ConfidenceScore,
		})
	}
	return true
}

func (s *Service) markReviewed(p *models.AIFitmentProposal, status, by, notes string) {
	now := time.Now()
	p.Status = status
	p.ReviewedAt = &now
	p.ReviewedBy = by
	p.ReviewNotes = notes
	p.UpdatedBy = by
}

func (r *Result) skip(id, reason string) {
	r.Skipped = append(r.Skipped, Skipped{UUID: id, Reason: reason})
	log.Warnf("[Review] Skipping proposal %s: %s", id, reason)
}
