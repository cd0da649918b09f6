package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleListPresets lists the tenant's column-mapping presets.
func HandleListPresets(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	presets, err := deps.Repos.Preset.List(tenantID)
	if err != nil {
		return internalError(c, "failed to list presets")
	}
	return c.JSON(fiber.Map{"tenant_id": tenantID, "presets": presets})
}

// HandleGetPreset returns one preset by uuid.
func HandleGetPreset(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	preset, err := deps.Repos.Preset.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}
	return c.JSON(preset)
}

type presetRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Priorities  map[string]interface{} `json:"priorities"`
	IsDefault   *bool                  `json:"is_default"`
}

// HandleCreatePreset creates a named attribute-priority preset. Names are
// unique per tenant.
func HandleCreatePreset(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req presetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}

	by := requestUser(c)
	preset := &models.Preset{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Priorities:  models.JSONFrom(req.Priorities),
		Auditable:   models.Auditable{CreatedBy: by, UpdatedBy: by},
	}
	if req.IsDefault != nil {
		preset.IsDefault = *req.IsDefault
	}

	if err := deps.Repos.Preset.Create(preset); err != nil {
		if repository.IsDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a preset with this name already exists",
			})
		}
		return internalError(c, "failed to create preset")
	}
	return c.Status(fiber.StatusCreated).JSON(preset)
}

// HandleUpdatePreset updates description, priorities or the default flag.
func HandleUpdatePreset(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	preset, err := deps.Repos.Preset.GetByUUID(tenantID, c.Params("id"))
	if err != nil {
		return notFound(c)
	}

	var req presetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name != "" {
		preset.Name = req.Name
	}
	if req.Description != "" {
		preset.Description = req.Description
	}
	if req.Priorities != nil {
		preset.Priorities = models.JSONFrom(req.Priorities)
	}
	if req.IsDefault != nil {
		preset.IsDefault = *req.IsDefault
	}
	preset.UpdatedBy = requestUser(c)

	if err := deps.Repos.Preset.Update(preset); err != nil {
		if repository.IsDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a preset with this name already exists",
			})
		}
		return internalError(c, "failed to update preset")
	}
	return c.JSON(preset)
}

// HandleDeletePreset removes one preset.
func HandleDeletePreset(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	uuid := c.Params("id")
	if err := deps.Repos.Preset.Delete(tenantID, uuid); err != nil {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"deleted": uuid})
}
