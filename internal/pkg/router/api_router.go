package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mft-data/fitmenthub/app/controllers"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

type ApiRouter struct {
	tenants repository.TenantRepository
}

func NewApiRouter(tenants repository.TenantRepository) *ApiRouter {
	return &ApiRouter{tenants: tenants}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", limiter.New(limiter.Config{Max: 300}), middleware.TenantResolver(h.tenants))

	uploads := api.Group("/uploads")
	uploads.Post("/", controllers.HandleCreateUpload)
	uploads.Get("/", controllers.HandleListUploads)
	uploads.Get("/:id", controllers.HandleGetUpload)
	uploads.Put("/:id/file", controllers.HandleReplaceUploadFile)
	uploads.Post("/:id/ai-map", controllers.HandleUploadAIMap)
	uploads.Post("/:id/vcdb-validate", controllers.HandleUploadValidate)
	uploads.Post("/:id/publish", controllers.HandleUploadPublish)

	fitments := api.Group("/fitments")
	fitments.Get("/", controllers.HandleListFitments)
	fitments.Post("/", controllers.HandleCreateFitment)
	fitments.Delete("/", controllers.HandleBulkDeleteFitments)
	fitments.Post("/validate", controllers.HandleValidateFitments)
	fitments.Post("/submit/:session_id", controllers.HandleSubmitFitments)
	fitments.Get("/coverage", controllers.HandleCoverageSummary)
	fitments.Get("/coverage/detailed", controllers.HandleCoverageDetailed)
	fitments.Get("/coverage/trends", controllers.HandleCoverageTrends)
	fitments.Get("/coverage/gaps", controllers.HandleCoverageGaps)
	fitments.Get("/export", controllers.HandleExportFitments)
	fitments.Get("/export-advanced-csv", controllers.HandleExportAdvancedCSV)
	fitments.Get("/export-advanced-xlsx", controllers.HandleExportAdvancedXLSX)
	fitments.Put("/:hash/update", controllers.HandleUpdateFitment)
	fitments.Delete("/:hash/delete", controllers.HandleDeleteFitment)
	fitments.Get("/:hash/lineage", controllers.HandleFitmentLineage)

	apply := api.Group("/apply")
	apply.Post("/ai-fitments", controllers.HandleApplyAIFitments)
	apply.Post("/apply-fitments", controllers.HandleApplyFitments)

	review := api.Group("/review")
	review.Get("/proposals", controllers.HandleListProposals)
	review.Get("/proposals/:id/lineage", controllers.HandleProposalLineage)
	review.Post("/approve", controllers.HandleApproveProposals)
	review.Post("/reject", controllers.HandleRejectProposals)

	fields := api.Group("/field-config/fields")
	fields.Get("/", controllers.HandleListFieldConfigs)
	fields.Post("/", controllers.HandleCreateFieldConfig)
	fields.Get("/validation_rules", controllers.HandleFieldValidationRules)
	fields.Put("/:name", controllers.HandleUpdateFieldConfig)
	fields.Delete("/:name", controllers.HandleDeleteFieldConfig)
	fields.Patch("/:name/toggle", controllers.HandleToggleFieldConfig)
	fields.Get("/:name/history", controllers.HandleFieldConfigHistory)

	categories := api.Group("/vcdb-categories")
	categories.Get("/categories", controllers.HandleListVCDBCategories)
	categories.Post("/categories", controllers.HandleCreateVCDBCategory)
	categories.Put("/categories/:id", controllers.HandleUpdateVCDBCategory)
	categories.Delete("/categories/:id", controllers.HandleDeleteVCDBCategory)
	categories.Put("/selection", controllers.HandleUpdateTenantVCDBCategories)

	products := api.Group("/products")
	products.Get("/config", controllers.HandleProductConfig)
	products.Post("/config", controllers.HandleUpdateProductConfig)
	products.Post("/upload", controllers.HandleProductUpload)
	products.Get("/data", controllers.HandleProductData)

	api.Get("/vcdb/data", controllers.HandleVCDBData)

	presets := api.Group("/presets")
	presets.Get("/", controllers.HandleListPresets)
	presets.Post("/", controllers.HandleCreatePreset)
	presets.Get("/:id", controllers.HandleGetPreset)
	presets.Put("/:id", controllers.HandleUpdatePreset)
	presets.Delete("/:id", controllers.HandleDeletePreset)

	jobs := api.Group("/jobs")
	jobs.Get("/", controllers.HandleListJobs)
	jobs.Post("/", controllers.HandleSubmitJob)
	jobs.Get("/stats", controllers.HandleJobStats)
	jobs.Get("/:id", controllers.HandleGetJob)
	jobs.Post("/:id/cancel", controllers.HandleCancelJob)
}
