package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
)

func TestVCDBRecordFromRow(t *testing.T) {
	row := tabular.Row{
		"Model Year":   "2020",
		"Make Name":    "Ford",
		"Model":        "F-150",
		"Sub-Model":    "XLT",
		"DriveTrain":   "4WD",
		"Fuel":         "Gas",
		"Doors":        "4",
		"Body Type":    "Truck",
		"Axle Ratio":   "3.55",
		"Empty Custom": "",
	}

	record := VCDBRecordFromRow(7, row, "vehicles.csv")
	assert.Equal(t, uint(7), record.TenantID)
	assert.Equal(t, 2020, record.Year)
	assert.Equal(t, "Ford", record.Make)
	assert.Equal(t, "F-150", record.Model)
	assert.Equal(t, "XLT", record.Submodel)
	assert.Equal(t, "4WD", record.DriveType)
	assert.Equal(t, "Gas", record.FuelType)
	assert.Equal(t, 4, record.NumDoors)
	assert.Equal(t, "Truck", record.BodyType)
	assert.Equal(t, "vehicles.csv", record.SourceFile)

	extras := record.DynamicFields.AsMap()
	assert.Equal(t, "3.55", extras["axle_ratio"], "unknown columns land in dynamic fields")
	assert.NotContains(t, extras, "year", "typed columns never duplicate into dynamic fields")
	assert.NotContains(t, extras, "empty_custom", "empty extras are dropped")
}

func TestVCDBRecordFromRowBadNumbers(t *testing.T) {
	record := VCDBRecordFromRow(1, tabular.Row{"year": "twenty", "num_doors": "several"}, "f.csv")
	assert.Equal(t, 0, record.Year)
	assert.Equal(t, 0, record.NumDoors)
}

func TestProductRecordFromRow(t *testing.T) {
	row := tabular.Row{
		"Part Number":   "P-100",
		"Description":   "Brake pad set",
		"Category":      "Brakes",
		"Part Type":     "Pad",
		"Compatibility": "Ford F-150 2015-2022",
		"Brand":         "Acme",
		"Material":      "Ceramic",
	}

	record := ProductRecordFromRow(3, row, "products.csv")
	assert.Equal(t, uint(3), record.TenantID)
	assert.Equal(t, "P-100", record.PartID)
	assert.Equal(t, "Brake pad set", record.Description)
	assert.Equal(t, "Brakes", record.Category)
	assert.Equal(t, "Pad", record.PartType)
	assert.Equal(t, "Ford F-150 2015-2022", record.Compatibility)
	assert.Equal(t, "Acme", record.Brand)

	specs := record.Specifications.AsMap()
	assert.Equal(t, "Ceramic", specs["material"])
	assert.NotContains(t, specs, "part_id")
}

func TestProductRecordFromRowNoExtras(t *testing.T) {
	record := ProductRecordFromRow(1, tabular.Row{"part_id": "P-1"}, "p.csv")
	assert.Empty(t, record.Specifications)
}

func TestParamAccessors(t *testing.T) {
	// params arrive through JSON decoding, so numbers are float64
	params := map[string]interface{}{
		"instructions": "trucks only",
		"session_id":   float64(42),
		"batch":        "17",
		"negative":     float64(-3),
		"part_ids":     []interface{}{"P-1", "P-2", 3},
		"vehicle_ids":  []interface{}{float64(1), float64(2), "x", float64(-9)},
	}

	assert.Equal(t, "trucks only", paramString(params, "instructions"))
	assert.Equal(t, "", paramString(params, "missing"))

	assert.Equal(t, 42, paramInt(params, "session_id"))
	assert.Equal(t, 17, paramInt(params, "batch"))
	assert.Equal(t, 0, paramInt(params, "missing"))

	assert.Equal(t, uint(42), paramUint(params, "session_id"))
	assert.Equal(t, uint(0), paramUint(params, "negative"))

	assert.Equal(t, []string{"P-1", "P-2"}, paramStringSlice(params, "part_ids"))
	assert.Nil(t, paramStringSlice(params, "missing"))

	assert.Equal(t, []uint{1, 2}, paramUintSlice(params, "vehicle_ids"))
	assert.Nil(t, paramUintSlice(params, "missing"))
}

func TestCanonicalizationSharedWithTabular(t *testing.T) {
	// the ingest mapping and the validator must agree on column identity
	row := tabular.Row{"Manufacturer": "Ford"}
	record := VCDBRecordFromRow(1, row, "f.csv")
	require.Equal(t, "Ford", record.Make)
}
