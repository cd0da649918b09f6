package controllers

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/xuri/excelize/v2"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// exportPageSize bounds per-query memory while streaming large exports.
const exportPageSize = 1000

var exportColumns = []string{
	"part_id", "year", "make", "model", "submodel",
	"drive_type", "fuel_type", "num_doors", "body_type",
	"position", "quantity", "uom", "title", "description", "notes",
	"lift_height", "wheel_type", "fitment_type", "item_status",
	"confidence_score", "created_at", "created_by",
}

func exportValue(f *models.Fitment, column string) string {
	switch column {
	case "part_id":
		return f.PartID
	case "year":
		return strconv.Itoa(f.Year)
	case "make":
		return f.MakeName
	case "model":
		return f.ModelName
	case "submodel":
		return f.Submodel
	case "drive_type":
		return f.DriveType
	case "fuel_type":
		return f.FuelType
	case "num_doors":
		return strconv.Itoa(f.NumDoors)
	case "body_type":
		return f.BodyType
	case "position":
		return f.Position
	case "quantity":
		return strconv.Itoa(f.Quantity)
	case "uom":
		return f.UOM
	case "title":
		return f.Title
	case "description":
		return f.Description
	case "notes":
		return f.Notes
	case "lift_height":
		return f.LiftHeight
	case "wheel_type":
		return f.WheelType
	case "fitment_type":
		return f.FitmentType
	case "item_status":
		return f.ItemStatus
	case "confidence_score":
		return strconv.FormatFloat(f.ConfidenceScore, 'f', 3, 64)
	case "created_at":
		return f.CreatedAt.Format(time.RFC3339)
	case "created_by":
		return f.CreatedBy
	default:
		return ""
	}
}

// requestedColumns narrows the export to ?columns=, keeping declaration order.
func requestedColumns(c *fiber.Ctx) []string {
	raw := c.Query("columns")
	if raw == "" {
		return exportColumns
	}
	wanted := map[string]bool{}
	for _, col := range strings.Split(raw, ",") {
		wanted[strings.TrimSpace(strings.ToLower(col))] = true
	}
	columns := make([]string, 0, len(exportColumns))
	for _, col := range exportColumns {
		if wanted[col] {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return exportColumns
	}
	return columns
}

func exportFilename(ext string) string {
	return fmt.Sprintf("fitments_%s.%s", time.Now().Format("20060102_150405"), ext)
}

// HandleExportFitments streams the tenant's live fitments as CSV with the
// full column set.
func HandleExportFitments(c *fiber.Ctx) error {
	return streamFitmentCSV(c, repository.FitmentFilter{}, exportColumns)
}

// HandleExportAdvancedCSV streams a filtered, column-selected CSV export.
func HandleExportAdvancedCSV(c *fiber.Ctx) error {
	return streamFitmentCSV(c, fitmentFilterFromQuery(c), requestedColumns(c))
}

func streamFitmentCSV(c *fiber.Ctx, filter repository.FitmentFilter, columns []string) error {
	tenantID := middleware.TenantID(c)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename("csv")+`"`)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return
		}

		record := make([]string, len(columns))
		for offset := 0; ; offset += exportPageSize {
			fitments, _, err := deps.Repos.Fitment.List(tenantID, filter, offset, exportPageSize)
			if err != nil {
				fiberlog.Errorf("[Export] CSV page at offset %d failed: %v", offset, err)
				return
			}
			for i := range fitments {
				for j, col := range columns {
					record[j] = exportValue(&fitments[i], col)
				}
				if err := cw.Write(record); err != nil {
					return
				}
			}
			cw.Flush()
			if len(fitments) < exportPageSize {
				return
			}
		}
	})
	return nil
}

// HandleExportAdvancedXLSX builds a filtered, column-selected XLSX workbook.
func HandleExportAdvancedXLSX(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	filter := fitmentFilterFromQuery(c)
	columns := requestedColumns(c)

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Fitments"
	wb.SetSheetName(wb.GetSheetName(0), sheet)

	sw, err := wb.NewStreamWriter(sheet)
	if err != nil {
		return internalError(c, "failed to create workbook")
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return internalError(c, "failed to write workbook header")
	}

	rowNum := 2
	for offset := 0; ; offset += exportPageSize {
		fitments, _, err := deps.Repos.Fitment.List(tenantID, filter, offset, exportPageSize)
		if err != nil {
			fiberlog.Errorf("[Export] XLSX page at offset %d failed: %v", offset, err)
			return internalError(c, "failed to export fitments")
		}
		for i := range fitments {
			row := make([]interface{}, len(columns))
			for j, col := range columns {
				row[j] = exportValue(&fitments[i], col)
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := sw.SetRow(cell, row); err != nil {
				return internalError(c, "failed to write workbook row")
			}
			rowNum++
		}
		if len(fitments) < exportPageSize {
			break
		}
	}
	if err := sw.Flush(); err != nil {
		return internalError(c, "failed to finalize workbook")
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return internalError(c, "failed to serialize workbook")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename("xlsx")+`"`)
	return c.Send(buf.Bytes())
}
