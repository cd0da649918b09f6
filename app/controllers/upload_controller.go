package controllers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/jobqueue"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
	"github.com/mft-data/fitmenthub/internal/pkg/storage"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
	"github.com/mft-data/fitmenthub/internal/pkg/upload"
)

// HandleCreateUpload accepts the multipart upload of a VCDB file, a products
// file, or both, stores the bytes and queues a preflight job per stored file.
func HandleCreateUpload(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	session := &models.UploadSession{
		TenantID:  tenantID,
		Status:    models.UploadStatusUploading,
		Auditable: models.Auditable{CreatedBy: requestUser(c), UpdatedBy: requestUser(c)},
	}

	stored := 0
	for _, field := range []struct {
		name   string
		target string
	}{
		{"vcdb_file", jobqueue.TargetVCDB},
		{"products_file", jobqueue.TargetProducts},
		{"file", jobqueue.TargetVCDB},
	} {
		header, err := c.FormFile(field.name)
		if err != nil {
			continue
		}
		if field.name == "file" && stored > 0 {
			continue
		}
		if err := storeSessionFile(c.Context(), session, field.target, header); err != nil {
			fiberlog.Errorf("[Upload] Failed to store %s: %v", header.Filename, err)
			return internalError(c, "failed to store uploaded file")
		}
		stored++
	}
	if stored == 0 {
		return badRequest(c, "no file provided")
	}

	_ = session.TransitionTo(models.UploadStatusUploaded)
	if err := deps.Repos.Upload.Create(session); err != nil {
		fiberlog.Errorf("[Upload] Failed to create session: %v", err)
		return internalError(c, "failed to create upload session")
	}

	deps.Lineage.RecordUpload(tenantID, session.UUID, session.VCDBFileRef, map[string]interface{}{
		"vcdb_filename":     session.VCDBFilename,
		"products_filename": session.ProductsFilename,
	})

	for _, target := range sessionTargets(session) {
		if _, err := submitSessionJob(session, models.JobTypePreflight, target, requestUser(c), c.FormValue("preset_id")); err != nil {
			fiberlog.Errorf("[Upload] Failed to queue preflight for session %s: %v", session.UUID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        session.UUID,
		"tenant_id": tenantID,
		"message":   "Upload received, preflight queued.",
	})
}

func storeSessionFile(ctx context.Context, session *models.UploadSession, target string, header *multipart.FileHeader) error {
	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidateTabularBySniff(header.Filename, head); err != nil {
		return err
	}

	key := storage.UploadKey(header.Filename)
	ref, err := deps.Store.Save(ctx, key, data)
	if err != nil {
		return err
	}

	if target == jobqueue.TargetVCDB {
		session.VCDBFileRef = ref
		session.VCDBFilename = header.Filename
		session.VCDBFileSize = header.Size
	} else {
		session.ProductsFileRef = ref
		session.ProductsFilename = header.Filename
		session.ProductsFileSize = header.Size
	}
	return nil
}

func sessionTargets(session *models.UploadSession) []string {
	targets := []string{}
	if session.VCDBFileRef != "" {
		targets = append(targets, jobqueue.TargetVCDB)
	}
	if session.ProductsFileRef != "" {
		targets = append(targets, jobqueue.TargetProducts)
	}
	return targets
}

func submitSessionJob(session *models.UploadSession, jobType, target, createdBy, presetID string) (*models.Job, error) {
	params := map[string]interface{}{
		"session_uuid": session.UUID,
		"target":       target,
	}
	if presetID != "" {
		params["preset_id"] = presetID
	}
	job := &models.Job{
		TenantID:  session.TenantID,
		SessionID: &session.ID,
		JobType:   jobType,
		Status:    models.JobStatusQueued,
		Params:    models.JSONFrom(params),
		CreatedBy: createdBy,
	}
	if err := deps.Manager.Submit(job); err != nil {
		return nil, err
	}
	deps.Lineage.RecordJob(session.TenantID, job.UUID, session.UUID, map[string]interface{}{
		"job_type": jobType,
		"target":   target,
	})
	return job, nil
}

// HandleListUploads lists the tenant's upload sessions.
func HandleListUploads(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)

	sessions, total, err := deps.Repos.Upload.List(tenantID, offset, limit)
	if err != nil {
		return internalError(c, "failed to list upload sessions")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"uploads":   sessions,
	})
}

// HandleGetUpload returns one session.
func HandleGetUpload(c *fiber.Ctx) error {
	session, err := deps.Repos.Upload.GetByUUID(middleware.TenantID(c), c.Params("id"))
	if err != nil {
		return notFound(c)
	}
	return c.JSON(session)
}

// HandleReplaceUploadFile overwrites one file of an existing session. The
// replacement resets that file's validation state and re-runs preflight.
func HandleReplaceUploadFile(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	session, err := deps.Repos.Upload.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}

	target := c.FormValue("target", jobqueue.TargetVCDB)
	if target != jobqueue.TargetVCDB && target != jobqueue.TargetProducts {
		return badRequest(c, "target must be vcdb or products")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "no file provided")
	}

	if err := storeSessionFile(c.Context(), session, target, header); err != nil {
		fiberlog.Errorf("[Upload] Failed to replace file on session %s: %v", session.UUID, err)
		return internalError(c, "failed to store uploaded file")
	}

	if target == jobqueue.TargetVCDB {
		session.VCDBValid = false
		session.VCDBRecords = 0
	} else {
		session.ProductsValid = false
		session.ProductsRecords = 0
	}
	session.UpdatedBy = requestUser(c)
	if err := deps.Repos.Upload.Update(session); err != nil {
		return internalError(c, "failed to update upload session")
	}

	if _, err := submitSessionJob(session, models.JobTypePreflight, target, requestUser(c), ""); err != nil {
		fiberlog.Errorf("[Upload] Failed to queue preflight for session %s: %v", session.UUID, err)
	}

	return c.JSON(fiber.Map{"id": session.UUID, "message": "File replaced, preflight queued."})
}

// HandleUploadAIMap queues a column-mapping job and returns the alias-table
// suggestions immediately so callers can render a first guess.
func HandleUploadAIMap(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	session, err := deps.Repos.Upload.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}

	target := c.FormValue("target", jobqueue.TargetVCDB)
	job, err := submitSessionJob(session, models.JobTypeAIMap, target, requestUser(c), c.FormValue("preset_id"))
	if err != nil {
		return internalError(c, "failed to queue mapping job")
	}

	// quick synchronous suggestion from the stored headers
	suggestions := map[string]string{}
	ref := session.VCDBFileRef
	filename := session.VCDBFilename
	if target == jobqueue.TargetProducts {
		ref, filename = session.ProductsFileRef, session.ProductsFilename
	}
	if ref != "" {
		if data, err := deps.Store.Load(c.Context(), ref); err == nil {
			if parsed, err := tabular.Parse(data, filename); err == nil {
				suggestions = tabular.MappingSuggestions(parsed.Stream.Headers)
			}
		}
	}

	return c.JSON(fiber.Map{
		"tenant_id":   tenantID,
		"job_id":      job.UUID,
		"suggestions": suggestions,
	})
}

// HandleUploadValidate queues validation jobs for the session's files.
func HandleUploadValidate(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	session, err := deps.Repos.Upload.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}

	jobIDs := []string{}
	for _, target := range sessionTargets(session) {
		job, err := submitSessionJob(session, models.JobTypeValidateCSV, target, requestUser(c), "")
		if err != nil {
			fiberlog.Errorf("[Upload] Failed to queue validation for session %s: %v", session.UUID, err)
			return internalError(c, "failed to queue validation job")
		}
		jobIDs = append(jobIDs, job.UUID)
	}
	if len(jobIDs) == 0 {
		return badRequest(c, "session has no files to validate")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"tenant_id": tenantID,
		"job_ids":   jobIDs,
		"message":   fmt.Sprintf("Validation queued for %d file(s).", len(jobIDs)),
	})
}

// HandleUploadPublish queues a publish job promoting the session's approved
// proposals.
func HandleUploadPublish(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	session, err := deps.Repos.Upload.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}

	job, err := submitSessionJob(session, models.JobTypePublish, "", requestUser(c), "")
	if err != nil {
		return internalError(c, "failed to queue publish job")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"tenant_id": tenantID,
		"job_id":    job.UUID,
		"message":   "Publish queued.",
	})
}
