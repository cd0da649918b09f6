package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/jobqueue"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
)

// HandleApplyAIFitments accepts a VCDB file and a parts file, ingests both
// and returns AI fitment proposals synchronously. The ingested rows stay in
// the tenant store like any other upload.
func HandleApplyAIFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	by := requestUser(c)

	session := &models.UploadSession{
		TenantID:  tenantID,
		Status:    models.UploadStatusUploading,
		Auditable: models.Auditable{CreatedBy: by, UpdatedBy: by},
	}

	vcdbHeader, err := c.FormFile("vcdb_file")
	if err != nil {
		return badRequest(c, "vcdb_file is required")
	}
	partsHeader, err := c.FormFile("parts_file")
	if err != nil {
		return badRequest(c, "parts_file is required")
	}

	if err := storeSessionFile(c.Context(), session, jobqueue.TargetVCDB, vcdbHeader); err != nil {
		return internalError(c, "failed to store vcdb file")
	}
	if err := storeSessionFile(c.Context(), session, jobqueue.TargetProducts, partsHeader); err != nil {
		return internalError(c, "failed to store parts file")
	}
	_ = session.TransitionTo(models.UploadStatusProcessing)
	if err := deps.Repos.Upload.Create(session); err != nil {
		return internalError(c, "failed to create upload session")
	}
	deps.Lineage.RecordUpload(tenantID, session.UUID, session.VCDBFileRef, map[string]interface{}{
		"kind": "apply_ai_fitments",
	})

	vcdbCount, err := ingestStoredFile(c, tenantID, session.VCDBFileRef, session.VCDBFilename, true)
	if err != nil {
		return badRequest(c, err.Error())
	}
	partsCount, err := ingestStoredFile(c, tenantID, session.ProductsFileRef, session.ProductsFilename, false)
	if err != nil {
		return badRequest(c, err.Error())
	}
	session.VCDBRecords = vcdbCount
	session.ProductsRecords = partsCount
	_ = session.TransitionTo(models.UploadStatusCompleted)
	_ = deps.Repos.Upload.Update(session)

	// generation runs in-request; a job row keeps the audit trail consistent
	// with queued runs
	job := &models.Job{
		TenantID:  tenantID,
		SessionID: &session.ID,
		JobType:   models.JobTypeAIFitment,
		Status:    models.JobStatusQueued,
		CreatedBy: by,
	}
	if err := deps.Repos.Job.Create(job); err != nil {
		return internalError(c, "failed to create job record")
	}
	job.MarkProcessing()
	_ = deps.Repos.Job.Update(job)

	instructions := c.FormValue("instructions")
	if tenant := middleware.CurrentTenant(c); tenant != nil && tenant.AIInstructions != "" {
		instructions = tenant.AIInstructions + "\n" + instructions
	}

	proposals, err := deps.Generator.GenerateAIProposals(c.Context(), tenantID, fitment.AIRequest{
		SessionID:    session.ID,
		JobID:        job.ID,
		JobUUID:      job.UUID,
		Instructions: instructions,
		CreatedBy:    by,
	})
	if err != nil {
		_ = job.Finish(models.JobStatusFailed, nil, err.Error())
		_ = deps.Repos.Job.Update(job)
		fiberlog.Errorf("[Apply] AI generation failed: %v", err)
		return internalError(c, "failed to generate fitment proposals")
	}

	job.FitmentsCreated = len(proposals)
	_ = job.Finish(models.JobStatusCompleted, models.JSONFrom(map[string]interface{}{
		"proposals_created": len(proposals),
	}), "")
	_ = deps.Repos.Job.Update(job)

	return c.JSON(fiber.Map{
		"tenant_id":  tenantID,
		"session_id": session.UUID,
		"job_id":     job.UUID,
		"proposals":  proposals,
	})
}

// ingestStoredFile parses a stored upload and upserts its rows into the
// tenant store. Rows missing their natural key are skipped.
func ingestStoredFile(c *fiber.Ctx, tenantID uint, ref, filename string, isVCDB bool) (int, error) {
	data, err := deps.Store.Load(c.Context(), ref)
	if err != nil {
		return 0, err
	}
	parsed, err := tabular.Parse(data, filename)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, raw := range parsed.Stream.Rows() {
		row := tabular.CanonicalRow(raw)
		if isVCDB {
			if row["year"] == "" || row["make"] == "" || row["model"] == "" {
				continue
			}
			if _, err := deps.Repos.VCDB.Upsert(jobqueue.VCDBRecordFromRow(tenantID, raw, filename)); err != nil {
				fiberlog.Errorf("[Apply] VCDB upsert failed: %v", err)
				continue
			}
		} else {
			if row["part_id"] == "" {
				continue
			}
			if _, err := deps.Repos.Product.Upsert(jobqueue.ProductRecordFromRow(tenantID, raw, filename)); err != nil {
				fiberlog.Errorf("[Apply] Product upsert failed: %v", err)
				continue
			}
		}
		count++
	}
	return count, nil
}

// HandleApplyFitments creates fitments directly from a JSON payload.
func HandleApplyFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req struct {
		Fitments []fitmentRequest `json:"fitments"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Fitments) == 0 {
		return badRequest(c, "fitments array is empty")
	}

	by := requestUser(c)
	created, skipped := 0, 0
	errors := []string{}
	for i := range req.Fitments {
		r := &req.Fitments[i]
		if r.PartID == "" || r.Year == 0 || r.MakeName == "" || r.ModelName == "" {
			skipped++
			continue
		}
		f := fitmentFromRequest(tenantID, r, by)
		if err := deps.Repos.Fitment.Create(f); err != nil {
			if repository.IsDuplicateKey(err) {
				skipped++
				continue
			}
			errors = append(errors, err.Error())
			continue
		}
		created++
		deps.Lineage.Record(tenantID, models.LineageEntityFitment, f.Hash, "", "", map[string]interface{}{
			"source": "apply_fitments",
		})
	}

	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"created":   created,
		"skipped":   skipped,
		"errors":    errors,
	})
}
