package controllers

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
	"github.com/mft-data/fitmenthub/internal/pkg/storage"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
	"github.com/mft-data/fitmenthub/internal/pkg/validation"
)

// HandleListFitments returns a filtered, paginated fitment listing. String
// filters apply as case-insensitive contains, numeric and date filters as
// ranges.
// fitmentFilterFromQuery maps the listing/export query surface onto a filter.
func fitmentFilterFromQuery(c *fiber.Ctx) repository.FitmentFilter {
	filter := repository.FitmentFilter{
		PartID:         c.Query("part_id"),
		MakeName:       c.Query("make"),
		ModelName:      c.Query("model"),
		Submodel:       c.Query("submodel"),
		Position:       c.Query("position"),
		FitmentType:    c.Query("fitment_type"),
		ItemStatus:     c.Query("item_status"),
		YearFrom:       c.QueryInt("year_from", 0),
		YearTo:         c.QueryInt("year_to", 0),
		IncludeDeleted: c.QueryBool("include_deleted", false),
		Search:         c.Query("search"),
	}
	if v := c.Query("created_after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if v := c.Query("created_before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedBefore = &t
		}
	}
	return filter
}

func HandleListFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)
	filter := fitmentFilterFromQuery(c)

	fitments, total, err := deps.Repos.Fitment.List(tenantID, filter, offset, limit)
	if err != nil {
		fiberlog.Errorf("[Fitment] List failed: %v", err)
		return internalError(c, "failed to list fitments")
	}

	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"fitments":  fitments,
	})
}

type fitmentRequest struct {
	PartID      string `json:"part_id"`
	Year        int    `json:"year"`
	MakeName    string `json:"make_name"`
	ModelName   string `json:"model_name"`
	Submodel    string `json:"submodel"`
	DriveType   string `json:"drive_type"`
	FuelType    string `json:"fuel_type"`
	NumDoors    int    `json:"num_doors"`
	BodyType    string `json:"body_type"`
	Position    string `json:"position"`
	Quantity    int    `json:"quantity"`
	UOM         string `json:"uom"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	LiftHeight  string `json:"lift_height"`
	WheelType   string `json:"wheel_type"`
}

// HandleCreateFitment creates one manual fitment.
func HandleCreateFitment(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req fitmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PartID == "" || req.Year == 0 || req.MakeName == "" || req.ModelName == "" {
		return badRequest(c, "part_id, year, make_name and model_name are required")
	}

	f := fitmentFromRequest(tenantID, &req, requestUser(c))
	if err := deps.Repos.Fitment.Create(f); err != nil {
		if repository.IsDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "fitment already exists"})
		}
		fiberlog.Errorf("[Fitment] Create failed: %v", err)
		return internalError(c, "failed to create fitment")
	}

	deps.Lineage.Record(tenantID, models.LineageEntityFitment, f.Hash, "", "", map[string]interface{}{
		"source": "manual_create",
	})
	return c.Status(fiber.StatusCreated).JSON(f)
}

func fitmentFromRequest(tenantID uint, req *fitmentRequest, by string) *models.Fitment {
	position := req.Position
	if position == "" {
		position = fitment.DefaultPosition
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = fitment.DefaultQuantity
	}
	uom := req.UOM
	if uom == "" {
		uom = fitment.DefaultUOM
	}
	return &models.Fitment{
		TenantID:    tenantID,
		PartID:      req.PartID,
		ItemStatus:  models.ItemStatusActive,
		Year:        req.Year,
		MakeName:    req.MakeName,
		ModelName:   req.ModelName,
		Submodel:    req.Submodel,
		DriveType:   req.DriveType,
		FuelType:    req.FuelType,
		NumDoors:    req.NumDoors,
		BodyType:    req.BodyType,
		Position:    position,
		Quantity:    quantity,
		UOM:         uom,
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
		LiftHeight:  req.LiftHeight,
		WheelType:   req.WheelType,
		FitmentType: models.FitmentTypeManual,
		Auditable:   models.Auditable{CreatedBy: by, UpdatedBy: by},
	}
}

// HandleUpdateFitment updates a fitment by hash. A soft-deleted fitment is
// restored as part of the update.
func HandleUpdateFitment(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	hash := c.Params("hash")

	var req fitmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	f, err := deps.Review.UpdateFitment(tenantID, hash, requestUser(c), func(f *models.Fitment) {
		// the logical key (part, year, make, model, submodel) is immutable;
		// only install attributes and descriptions change
		if req.Position != "" {
			f.Position = req.Position
		}
		if req.Quantity > 0 {
			f.Quantity = req.Quantity
		}
		if req.UOM != "" {
			f.UOM = req.UOM
		}
		if req.DriveType != "" {
			f.DriveType = req.DriveType
		}
		if req.FuelType != "" {
			f.FuelType = req.FuelType
		}
		if req.NumDoors > 0 {
			f.NumDoors = req.NumDoors
		}
		if req.BodyType != "" {
			f.BodyType = req.BodyType
		}
		if req.Title != "" {
			f.Title = req.Title
		}
		if req.Description != "" {
			f.Description = req.Description
		}
		if req.Notes != "" {
			f.Notes = req.Notes
		}
		if req.LiftHeight != "" {
			f.LiftHeight = req.LiftHeight
		}
		if req.WheelType != "" {
			f.WheelType = req.WheelType
		}
	})
	if err != nil {
		return notFound(c)
	}
	return c.JSON(f)
}

// HandleDeleteFitment soft-deletes one fitment by hash.
func HandleDeleteFitment(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	if err := deps.Review.DeleteFitment(tenantID, c.Params("hash"), requestUser(c)); err != nil {
		return notFound(c)
	}
	return c.JSON(fiber.Map{"message": "Fitment deleted."})
}

// HandleBulkDeleteFitments soft-deletes the fitments named in ?hashes=.
func HandleBulkDeleteFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	raw := c.Query("hashes")
	if raw == "" {
		return badRequest(c, "hashes query parameter is required")
	}
	hashes := []string{}
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hashes = append(hashes, h)
		}
	}

	deleted, err := deps.Review.DeleteFitments(tenantID, hashes, requestUser(c))
	if err != nil {
		return internalError(c, "failed to delete fitments")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"requested": len(hashes),
		"deleted":   deleted,
	})
}

// HandleValidateFitments validates an uploaded fitments file without
// persisting rows. The file is kept on a session so a follow-up submit can
// materialize it.
func HandleValidateFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	header, err := c.FormFile("fitments")
	if err != nil {
		if header, err = c.FormFile("file"); err != nil {
			return badRequest(c, "no fitments file provided")
		}
	}
	f, err := header.Open()
	if err != nil {
		return internalError(c, "failed to read uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return internalError(c, "failed to read uploaded file")
	}

	parsed, err := tabular.Parse(data, header.Filename)
	if err != nil {
		return badRequest(c, err.Error())
	}

	schema, err := deps.Registry.Resolve(tenantID, models.ReferenceBoth)
	if err != nil {
		return internalError(c, "failed to resolve field schema")
	}
	report := validation.Validate(parsed.Stream, schema)

	key := storage.UploadKey(header.Filename)
	ref, err := deps.Store.Save(c.Context(), key, data)
	if err != nil {
		return internalError(c, "failed to store uploaded file")
	}

	session := &models.UploadSession{
		TenantID:         tenantID,
		Status:           models.UploadStatusUploaded,
		ProductsFileRef:  ref,
		ProductsFilename: header.Filename,
		ProductsFileSize: header.Size,
		ProductsValid:    report.IsValid,
		ValidationErrors: models.JSONFrom(map[string]interface{}{"fitments": report.Errors}),
		Auditable:        models.Auditable{CreatedBy: requestUser(c), UpdatedBy: requestUser(c)},
	}
	if err := deps.Repos.Upload.Create(session); err != nil {
		return internalError(c, "failed to create upload session")
	}
	deps.Lineage.RecordUpload(tenantID, session.UUID, ref, map[string]interface{}{"kind": "fitments"})

	return c.JSON(fiber.Map{
		"tenant_id":       tenantID,
		"session_id":      session.UUID,
		"repaired_rows":   len(report.Repairs),
		"invalid_rows":    len(report.InvalidRows()),
		"ignored_columns": report.IgnoredColumns,
		"totals": fiber.Map{
			"rows":   report.RowCount,
			"errors": len(report.Errors),
		},
	})
}

// HandleSubmitFitments materializes the fitments file validated earlier on
// the session. Repairs are re-derived and applied; invalid rows are skipped.
func HandleSubmitFitments(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	session, err := deps.Repos.Upload.GetByUUID(tenantID, c.Params("session_id"))
	if err != nil {
		return notFound(c)
	}
	if session.ProductsFileRef == "" {
		return badRequest(c, "session has no fitments file")
	}

	data, err := deps.Store.Load(c.Context(), session.ProductsFileRef)
	if err != nil {
		return internalError(c, "failed to load stored file")
	}
	parsed, err := tabular.Parse(data, session.ProductsFilename)
	if err != nil {
		return badRequest(c, err.Error())
	}

	schema, err := deps.Registry.Resolve(tenantID, models.ReferenceBoth)
	if err != nil {
		return internalError(c, "failed to resolve field schema")
	}
	report := validation.Validate(parsed.Stream, schema)
	rows := parsed.Stream.Rows()
	validation.ApplyRepairs(rows, report.Repairs)
	invalid := report.InvalidRows()

	created, skipped := 0, 0
	errors := []string{}
	by := requestUser(c)
	for i, raw := range rows {
		if invalid[i+1] {
			skipped++
			continue
		}
		row := tabular.CanonicalRow(raw)
		year, _ := strconv.Atoi(row["year"])
		quantity := atoiDefault(row["quantity"], fitment.DefaultQuantity)
		req := fitmentRequest{
			PartID:    row["part_id"],
			Year:      year,
			MakeName:  row["make"],
			ModelName: row["model"],
			Submodel:  row["submodel"],
			DriveType: row["drive_type"],
			FuelType:  row["fuel_type"],
			NumDoors:  atoiDefault(row["num_doors"], 0),
			BodyType:  row["body_type"],
			Position:  row["position"],
			Quantity:  quantity,
			UOM:       row["uom"],
			Title:     row["description"],
		}
		if req.PartID == "" || req.Year == 0 || req.MakeName == "" || req.ModelName == "" {
			skipped++
			continue
		}

		f := fitmentFromRequest(tenantID, &req, by)
		if err := deps.Repos.Fitment.Create(f); err != nil {
			if repository.IsDuplicateKey(err) {
				skipped++
				continue
			}
			errors = append(errors, err.Error())
			continue
		}
		created++
		deps.Lineage.Record(tenantID, models.LineageEntityFitment, f.Hash, models.LineageEntityUpload, session.UUID, nil)
	}

	_ = session.TransitionTo(models.UploadStatusCompleted)
	session.ProductsRecords = created
	session.UpdatedBy = by
	if err := deps.Repos.Upload.Update(session); err != nil {
		fiberlog.Errorf("[Fitment] Failed to update session %s: %v", session.UUID, err)
	}

	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"created":   created,
		"skipped":   skipped,
		"errors":    errors,
	})
}
