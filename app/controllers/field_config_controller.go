package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleListFieldConfigs returns the tenant's field configurations for a
// reference type (default: all).
func HandleListFieldConfigs(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	configs, err := deps.Registry.List(tenantID, c.Query("reference_type"))
	if err != nil {
		return internalError(c, "failed to list field configurations")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"fields":    configs,
	})
}

// HandleCreateFieldConfig creates one field configuration.
func HandleCreateFieldConfig(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var cfg models.FieldConfiguration
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}
	cfg.ID = 0
	cfg.TenantID = tenantID
	cfg.CreatedBy = requestUser(c)
	cfg.UpdatedBy = requestUser(c)

	if err := cfg.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := deps.Registry.Create(&cfg, requestUser(c)); err != nil {
		fiberlog.Errorf("[FieldConfig] Create failed: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "field configuration already exists"})
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

// HandleUpdateFieldConfig updates constraints of an existing field. Name and
// reference type are immutable.
func HandleUpdateFieldConfig(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	name := c.Params("name")
	referenceType := c.Query("reference_type", models.ReferenceBoth)

	var cfg models.FieldConfiguration
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}
	cfg.TenantID = tenantID
	cfg.Name = name
	cfg.ReferenceType = referenceType

	if err := cfg.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	if err := deps.Registry.Update(tenantID, name, referenceType, &cfg, requestUser(c)); err != nil {
		return notFound(c)
	}
	return c.JSON(cfg)
}

// HandleDeleteFieldConfig removes a field configuration and records the
// deletion in the audit history.
func HandleDeleteFieldConfig(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	referenceType := c.Query("reference_type", models.ReferenceBoth)

	if err := deps.Registry.Delete(tenantID, c.Params("name"), referenceType, requestUser(c)); err != nil {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"message": "Field configuration deleted."})
}

// HandleToggleFieldConfig enables or disables a field.
func HandleToggleFieldConfig(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	referenceType := c.Query("reference_type", models.ReferenceBoth)

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := deps.Registry.ToggleEnabled(tenantID, c.Params("name"), referenceType, req.Enabled, requestUser(c)); err != nil {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"name": c.Params("name"), "enabled": req.Enabled})
}

// HandleFieldValidationRules returns the resolved validation schema for a
// reference type, the shape the dynamic validator consumes.
func HandleFieldValidationRules(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	referenceType := c.Query("reference_type", models.ReferenceVCDB)

	schema, err := deps.Registry.Resolve(tenantID, referenceType)
	if err != nil {
		return internalError(c, "failed to resolve field schema")
	}
	return c.JSON(schema)
}

// HandleFieldConfigHistory returns the audit trail of one field.
func HandleFieldConfigHistory(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	_, limit := pagination(c)

	history, err := deps.Registry.History(tenantID, c.Params("name"), limit)
	if err != nil {
		return internalError(c, "failed to load field history")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"history":   history,
	})
}
