// Package lineage records provenance edges for uploads, jobs, proposals and
// fitments. The log is append-only; nothing in the system deletes from it.
package lineage

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
)

// Recorder writes provenance edges. A failed write never fails the calling
// operation; it is logged and dropped.
type Recorder struct {
	repo repository.LineageRepository
}

// NewRecorder creates a lineage recorder over the given repository.
func NewRecorder(repo repository.LineageRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one edge: entity derived-from parent, with optional metadata.
func (r *Recorder) Record(tenantID uint, entityType, entityID, parentType, parentID string, meta map[string]interface{}) {
	entry := &models.Lineage{
		TenantID:         tenantID,
		EntityType:       entityType,
		EntityID:         entityID,
		ParentEntityType: parentType,
		ParentEntityID:   parentID,
	}
	if meta != nil {
		entry.Meta = models.JSONFrom(meta)
	}
	if err := r.repo.Append(entry); err != nil {
		log.Errorf("[Lineage] Failed to record %s %s: %v", entityType, entityID, err)
	}
}

// RecordUpload links an upload session to its source file reference.
func (r *Recorder) RecordUpload(tenantID uint, sessionUUID, fileRef string, meta map[string]interface{}) {
	r.Record(tenantID, models.LineageEntityUpload, sessionUUID, "", fileRef, meta)
}

// RecordJob links a job to the upload session that spawned it.
func (r *Recorder) RecordJob(tenantID uint, jobUUID, sessionUUID string, meta map[string]interface{}) {
	r.Record(tenantID, models.LineageEntityJob, jobUUID, models.LineageEntityUpload, sessionUUID, meta)
}

// RecordProposal links an AI proposal to the job that produced it.
func (r *Recorder) RecordProposal(tenantID uint, proposalUUID, jobUUID string, meta map[string]interface{}) {
	r.Record(tenantID, models.LineageEntityProposal, proposalUUID, models.LineageEntityJob, jobUUID, meta)
}

// RecordFitmentFromJob links a created fitment to its producing job.
func (r *Recorder) RecordFitmentFromJob(tenantID uint, fitmentHash, jobUUID string, meta map[string]interface{}) {
	r.Record(tenantID, models.LineageEntityFitment, fitmentHash, models.LineageEntityJob, jobUUID, meta)
}

// RecordFitmentFromProposal links a promoted fitment to its approved proposal.
func (r *Recorder) RecordFitmentFromProposal(tenantID uint, fitmentHash, proposalUUID string, meta map[string]interface{}) {
	r.Record(tenantID, models.LineageEntityFitment, fitmentHash, models.LineageEntityProposal, proposalUUID, meta)
}

// Trace returns all edges recorded for one entity, oldest first.
func (r *Recorder) Trace(tenantID uint, entityType, entityID string) ([]models.Lineage, error) {
	return r.repo.ByEntity(tenantID, entityType, entityID)
}
