package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/metrics/counter"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleListJobs lists the tenant's jobs, newest first. ?job_type= narrows
// the list to one kind.
func HandleListJobs(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)

	jobs, total, err := deps.Repos.Job.List(tenantID, c.Query("job_type"), offset, limit)
	if err != nil {
		return internalError(c, "failed to list jobs")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"jobs":      jobs,
	})
}

// HandleJobStats returns the tenant's processing counters alongside the
// current queue depth.
func HandleJobStats(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	stats, err := counter.Snapshot(tenantID)
	if err != nil {
		return internalError(c, "failed to read counters")
	}
	pending, _ := deps.Manager.GetQueue().PendingSize(c.Context())
	processing, _ := deps.Manager.GetQueue().ProcessingSize(c.Context())

	return c.JSON(fiber.Map{
		"tenant_id":  tenantID,
		"counters":   stats,
		"pending":    pending,
		"processing": processing,
	})
}

// HandleGetJob returns one job with its progress and result document.
func HandleGetJob(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	job, err := deps.Repos.Job.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}
	return c.JSON(job)
}

// HandleCancelJob requests cancellation. Queued jobs cancel immediately;
// processing jobs stop at their next checkpoint.
func HandleCancelJob(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	uuid := c.Params("id")
	job, err := deps.Repos.Job.GetByUUID(tenantID, uuid)
	if err != nil {
		return notFound(c)
	}
	if job.IsTerminal() {
		return badRequest(c, "job has already finished")
	}

	if err := deps.Manager.RequestCancel(tenantID, uuid); err != nil {
		fiberlog.Errorf("[Job] Cancel request for %s failed: %v", uuid, err)
		return internalError(c, "failed to request cancellation")
	}
	return c.JSON(fiber.Map{
		"id":      uuid,
		"message": "Cancellation requested.",
	})
}

type jobSubmitRequest struct {
	JobType      string                 `json:"job_type"`
	SessionID    string                 `json:"session_id"`
	Params       map[string]interface{} `json:"params"`
	Instructions string                 `json:"instructions"`
	PartIDs      []string               `json:"part_ids"`
	VehicleIDs   []uint                 `json:"vehicle_ids"`
	ProductIDs   []uint                 `json:"product_ids"`
}

// HandleSubmitJob queues a fitment generation job. Only the generation kinds
// are accepted here; validation and preflight jobs are queued by their upload
// endpoints.
func HandleSubmitJob(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req jobSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	switch req.JobType {
	case models.JobTypeManualFitment, models.JobTypeAIFitment:
	default:
		return badRequest(c, "job_type must be manual-fitment or ai-fitment")
	}

	params := map[string]interface{}{}
	for k, v := range req.Params {
		params[k] = v
	}
	if req.Instructions != "" {
		params["instructions"] = req.Instructions
	}
	if len(req.PartIDs) > 0 {
		params["part_ids"] = req.PartIDs
	}
	if len(req.VehicleIDs) > 0 {
		params["vehicle_ids"] = req.VehicleIDs
	}
	if len(req.ProductIDs) > 0 {
		params["product_ids"] = req.ProductIDs
	}

	var sessionID *uint
	if req.SessionID != "" {
		session, err := deps.Repos.Upload.GetByUUID(tenantID, req.SessionID)
		if err != nil {
			return notFound(c)
		}
		sessionID = &session.ID
		params["session_uuid"] = session.UUID
	}
	if req.JobType == models.JobTypeManualFitment && len(req.VehicleIDs) == 0 {
		return badRequest(c, "vehicle_ids is required for manual-fitment jobs")
	}

	job := &models.Job{
		TenantID:  tenantID,
		SessionID: sessionID,
		JobType:   req.JobType,
		Status:    models.JobStatusQueued,
		Params:    models.JSONFrom(params),
		CreatedBy: requestUser(c),
	}
	if err := deps.Manager.Submit(job); err != nil {
		fiberlog.Errorf("[Job] Submit %s failed: %v", req.JobType, err)
		return internalError(c, "failed to submit job")
	}
	deps.Lineage.RecordJob(tenantID, job.UUID, req.SessionID, map[string]interface{}{
		"job_type": req.JobType,
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":       job.UUID,
		"job_type": job.JobType,
		"status":   job.Status,
		"message":  "Job queued.",
	})
}
