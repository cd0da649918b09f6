package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/jobqueue"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleProductConfig returns the product-side schema: the enabled field
// configurations plus the tenant's required-product-field setting.
func HandleProductConfig(c *fiber.Ctx) error {
	tenant := middleware.CurrentTenant(c)

	configs, err := deps.Registry.List(tenant.ID, models.ReferenceProduct)
	if err != nil {
		return internalError(c, "failed to list product field configurations")
	}
	return c.JSON(fiber.Map{
		"tenant_id":       tenant.ID,
		"fields":          configs,
		"required_fields": tenant.FitmentSettings.AsMap()[models.SettingRequiredProductFields],
	})
}

// HandleUpdateProductConfig stores the tenant's required-product-field
// selection.
func HandleUpdateProductConfig(c *fiber.Ctx) error {
	tenant := middleware.CurrentTenant(c)

	var req struct {
		RequiredFields []string `json:"required_fields"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	settings := tenant.FitmentSettings.AsMap()
	settings[models.SettingRequiredProductFields] = req.RequiredFields
	tenant.FitmentSettings = models.JSONFrom(settings)
	tenant.UpdatedBy = requestUser(c)

	if err := deps.Repos.Tenant.Update(tenant); err != nil {
		fiberlog.Errorf("[Product] Failed to update tenant settings: %v", err)
		return internalError(c, "failed to update product configuration")
	}
	return c.JSON(fiber.Map{"tenant_id": tenant.ID, "required_fields": req.RequiredFields})
}

// HandleProductUpload accepts a products file, stores it on a new session and
// queues validation.
func HandleProductUpload(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "no file provided")
	}

	session := &models.UploadSession{
		TenantID:  tenantID,
		Status:    models.UploadStatusUploading,
		Auditable: models.Auditable{CreatedBy: requestUser(c), UpdatedBy: requestUser(c)},
	}
	if err := storeSessionFile(c.Context(), session, jobqueue.TargetProducts, header); err != nil {
		fiberlog.Errorf("[Product] Failed to store %s: %v", header.Filename, err)
		return internalError(c, "failed to store uploaded file")
	}
	_ = session.TransitionTo(models.UploadStatusUploaded)
	if err := deps.Repos.Upload.Create(session); err != nil {
		return internalError(c, "failed to create upload session")
	}
	deps.Lineage.RecordUpload(tenantID, session.UUID, session.ProductsFileRef, map[string]interface{}{
		"products_filename": session.ProductsFilename,
	})

	job, err := submitSessionJob(session, models.JobTypeValidateCSV, jobqueue.TargetProducts, requestUser(c), "")
	if err != nil {
		return internalError(c, "failed to queue validation job")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"tenant_id":  tenantID,
		"session_id": session.UUID,
		"job_id":     job.UUID,
		"message":    "Products upload received, validation queued.",
	})
}

// HandleProductData lists the tenant's normalized products.
func HandleProductData(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)

	products, total, err := deps.Repos.Product.List(tenantID, offset, limit)
	if err != nil {
		return internalError(c, "failed to list products")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"products":  products,
	})
}

// HandleVCDBData lists the tenant's normalized vehicle configurations.
func HandleVCDBData(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)

	records, total, err := deps.Repos.VCDB.List(tenantID, offset, limit)
	if err != nil {
		return internalError(c, "failed to list vehicle configurations")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"records":   records,
	})
}
