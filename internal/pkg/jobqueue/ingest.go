package jobqueue

import (
	"strconv"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
)

// Canonical columns consumed directly into typed record fields. Everything
// else lands in the dynamic-fields document.
var vcdbTypedColumns = map[string]bool{
	"year": true, "make": true, "model": true, "submodel": true,
	"drive_type": true, "fuel_type": true, "num_doors": true,
	"body_type": true, "engine_type": true, "transmission": true,
	"trim_level": true,
}

var productTypedColumns = map[string]bool{
	"part_id": true, "description": true, "category": true,
	"part_type": true, "compatibility": true, "brand": true, "sku": true,
}

// VCDBRecordFromRow maps one canonicalized row to a vehicle configuration.
func VCDBRecordFromRow(tenantID uint, raw tabular.Row, sourceFile string) *models.VCDBRecord {
	row := tabular.CanonicalRow(raw)

	year, _ := strconv.Atoi(row["year"])
	numDoors, _ := strconv.Atoi(row["num_doors"])

	record := &models.VCDBRecord{
		TenantID:     tenantID,
		Year:         year,
		Make:         row["make"],
		Model:        row["model"],
		Submodel:     row["submodel"],
		DriveType:    row["drive_type"],
		FuelType:     row["fuel_type"],
		NumDoors:     numDoors,
		BodyType:     row["body_type"],
		EngineType:   row["engine_type"],
		Transmission: row["transmission"],
		TrimLevel:    row["trim_level"],
		SourceFile:   sourceFile,
	}

	extras := map[string]interface{}{}
	for k, v := range row {
		if !vcdbTypedColumns[k] && v != "" {
			extras[k] = v
		}
	}
	if len(extras) > 0 {
		record.DynamicFields = models.JSONFrom(extras)
	}
	return record
}

// ProductRecordFromRow maps one canonicalized row to a catalog part.
func ProductRecordFromRow(tenantID uint, raw tabular.Row, sourceFile string) *models.ProductRecord {
	row := tabular.CanonicalRow(raw)

	record := &models.ProductRecord{
		TenantID:      tenantID,
		PartID:        row["part_id"],
		Description:   row["description"],
		Category:      row["category"],
		PartType:      row["part_type"],
		Compatibility: row["compatibility"],
		Brand:         row["brand"],
		SKU:           row["sku"],
		SourceFile:    sourceFile,
	}

	extras := map[string]interface{}{}
	for k, v := range row {
		if !productTypedColumns[k] && v != "" {
			extras[k] = v
		}
	}
	if len(extras) > 0 {
		record.Specifications = models.JSONFrom(extras)
	}
	return record
}
