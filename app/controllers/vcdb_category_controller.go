package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleListVCDBCategories lists the global category catalog. Pass
// ?active_only=true to hide retired entries. The tenant's own selection is
// echoed alongside so clients can render the checked state.
func HandleListVCDBCategories(c *fiber.Ctx) error {
	categories, err := deps.Repos.VCDBCategory.List(c.QueryBool("active_only", false))
	if err != nil {
		return internalError(c, "failed to list categories")
	}

	selected := []string{}
	if tenant := middleware.CurrentTenant(c); tenant != nil {
		selected = tenant.VCDBCategories()
	}
	return c.JSON(fiber.Map{
		"categories": categories,
		"selected":   selected,
	})
}

type vcdbCategoryRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// HandleCreateVCDBCategory adds a category to the global catalog.
func HandleCreateVCDBCategory(c *fiber.Ctx) error {
	var req vcdbCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}

	category := &models.VCDBCategory{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if category.DisplayName == "" {
		category.DisplayName = category.Name
	}

	if err := deps.Repos.VCDBCategory.Create(category); err != nil {
		if repository.IsDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a category with this name already exists",
			})
		}
		return internalError(c, "failed to create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateVCDBCategory updates display fields of one category. The name
// is immutable once created.
func HandleUpdateVCDBCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid category id")
	}

	categories, err := deps.Repos.VCDBCategory.List(false)
	if err != nil {
		return internalError(c, "failed to load categories")
	}
	var category *models.VCDBCategory
	for i := range categories {
		if categories[i].ID == uint(id) {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		return notFound(c)
	}

	var req vcdbCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.DisplayName != "" {
		category.DisplayName = req.DisplayName
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != 0 {
		category.SortOrder = req.SortOrder
	}

	if err := deps.Repos.VCDBCategory.Update(category); err != nil {
		return internalError(c, "failed to update category")
	}
	return c.JSON(category)
}

// HandleDeleteVCDBCategory removes a category from the global catalog.
func HandleDeleteVCDBCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "invalid category id")
	}
	if err := deps.Repos.VCDBCategory.Delete(uint(id)); err != nil {
		return internalError(c, "failed to delete category")
	}
	return c.JSON(fiber.Map{"deleted": id})
}

// HandleUpdateTenantVCDBCategories stores the tenant's category selection.
func HandleUpdateTenantVCDBCategories(c *fiber.Ctx) error {
	tenant := middleware.CurrentTenant(c)

	var req struct {
		Categories []string `json:"categories"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	settings := tenant.FitmentSettings.AsMap()
	settings[models.SettingVCDBCategories] = req.Categories
	tenant.FitmentSettings = models.JSONFrom(settings)
	tenant.UpdatedBy = requestUser(c)

	if err := deps.Repos.Tenant.Update(tenant); err != nil {
		return internalError(c, "failed to update tenant categories")
	}
	return c.JSON(fiber.Map{"tenant_id": tenant.ID, "categories": req.Categories})
}
