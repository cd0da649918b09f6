package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/internal/pkg/fieldconfig"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
)

func parseCSV(t *testing.T, data string) *tabular.Stream {
	t.Helper()
	result, err := tabular.Parse([]byte(data), "test.csv")
	require.NoError(t, err)
	return result.Stream
}

func testSchema(fields map[string]*fieldconfig.FieldRule) *fieldconfig.Schema {
	return &fieldconfig.Schema{TenantID: 1, ReferenceType: "vcdb", Fields: fields}
}

func TestValidateRequiredFieldMissing(t *testing.T) {
	stream := parseCSV(t, "make,model\nFord,F-150\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year": {Name: "year", Type: "integer", Required: true},
		"make": {Name: "make", Type: "string"},
	})

	report := Validate(stream, schema)
	assert.False(t, report.IsValid)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, FieldStatusMissing, report.FieldStatus["year"])
	assert.Equal(t, 0, report.Errors[0].Row)
}

func TestValidateRequiredFieldAllEmpty(t *testing.T) {
	stream := parseCSV(t, "year,make\n,Ford\n,Toyota\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year": {Name: "year", Type: "integer", Required: true},
		"make": {Name: "make", Type: "string"},
	})

	report := Validate(stream, schema)
	assert.False(t, report.IsValid)
	assert.Equal(t, FieldStatusMissing, report.FieldStatus["year"])
}

func TestValidateDisabledFieldPresent(t *testing.T) {
	stream := parseCSV(t, "year,trim_level\n2020,XLT\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year":       {Name: "year", Type: "integer"},
		"trim_level": {Name: "trim_level", Type: "string", Disabled: true},
	})

	report := Validate(stream, schema)
	assert.False(t, report.IsValid)
	assert.Equal(t, FieldStatusInvalid, report.FieldStatus["trim_level"])
}

func TestValidateIgnoredColumns(t *testing.T) {
	stream := parseCSV(t, "year,internal_note\n2020,hello\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year": {Name: "year", Type: "integer"},
	})

	report := Validate(stream, schema)
	assert.True(t, report.IsValid)
	assert.Contains(t, report.IgnoredColumns, "internal_note")
}

func TestValidateCellTypes(t *testing.T) {
	min, max := 1900.0, 2100.0
	tests := []struct {
		name   string
		rule   *fieldconfig.FieldRule
		value  string
		valid  bool
	}{
		{"integer ok", &fieldconfig.FieldRule{Name: "year", Type: "integer"}, "2020", true},
		{"integer fraction", &fieldconfig.FieldRule{Name: "year", Type: "integer"}, "20.5", false},
		{"integer word", &fieldconfig.FieldRule{Name: "year", Type: "integer"}, "twenty", false},
		{"integer below min", &fieldconfig.FieldRule{Name: "year", Type: "integer", MinValue: &min, MaxValue: &max}, "1776", false},
		{"number ok", &fieldconfig.FieldRule{Name: "year", Type: "number"}, "3.14", true},
		{"boolean yes", &fieldconfig.FieldRule{Name: "year", Type: "boolean"}, "yes", true},
		{"boolean junk", &fieldconfig.FieldRule{Name: "year", Type: "boolean"}, "maybe", false},
		{"date iso", &fieldconfig.FieldRule{Name: "year", Type: "date"}, "2024-06-01", true},
		{"date us", &fieldconfig.FieldRule{Name: "year", Type: "date"}, "06/01/2024", true},
		{"date junk", &fieldconfig.FieldRule{Name: "year", Type: "date"}, "soon", false},
		{"enum hit", &fieldconfig.FieldRule{Name: "year", Type: "enum", Enum: []string{"Gas", "Diesel"}}, "Gas", true},
		{"enum miss", &fieldconfig.FieldRule{Name: "year", Type: "enum", Enum: []string{"Gas", "Diesel"}}, "Coal", false},
		{"enum fold", &fieldconfig.FieldRule{Name: "year", Type: "enum", Enum: []string{"Gas"}, EnumFold: true}, "gas", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := parseCSV(t, "year\n"+tt.value+"\n")
			schema := testSchema(map[string]*fieldconfig.FieldRule{"year": tt.rule})
			report := Validate(stream, schema)
			assert.Equal(t, tt.valid, report.IsValid, "value %q", tt.value)
		})
	}
}

func TestValidateUniqueField(t *testing.T) {
	stream := parseCSV(t, "part_id\nP-1\nP-2\nP-1\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"part_id": {Name: "part_id", Type: "string", Unique: true},
	})

	report := Validate(stream, schema)
	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Row)
}

func TestValidateRepairsMake(t *testing.T) {
	stream := parseCSV(t, "make\ntoyta\nchevy\nFord\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"make": {Name: "make", Type: "string"},
	})

	report := Validate(stream, schema)
	assert.True(t, report.IsValid)
	assert.Equal(t, FieldStatusRepaired, report.FieldStatus["make"])
	assert.Equal(t, "Toyota", report.Repairs[1]["make"])
	assert.Equal(t, "Chevrolet", report.Repairs[2]["make"])
	_, repaired := report.Repairs[3]
	assert.False(t, repaired, "canonical value must not be repaired")
}

func TestValidateRepairIdempotence(t *testing.T) {
	stream := parseCSV(t, "make,position\ntoyta,fornt\nvw,rear\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"make":     {Name: "make", Type: "string"},
		"position": {Name: "position", Type: "string"},
	})

	report := Validate(stream, schema)
	require.True(t, report.IsValid)
	require.NotEmpty(t, report.Repairs)

	rows := stream.Rows()
	ApplyRepairs(rows, report.Repairs)
	assert.Equal(t, "Toyota", rows[0]["make"])
	assert.Equal(t, "Front", rows[0]["position"])
	assert.Equal(t, "Volkswagen", rows[1]["make"])

	// rebuild a stream from the repaired values and re-validate
	again := parseCSV(t, "make,position\n"+
		rows[0]["make"]+","+rows[0]["position"]+"\n"+
		rows[1]["make"]+","+rows[1]["position"]+"\n")
	second := Validate(again, schema)
	assert.True(t, second.IsValid)
	assert.Empty(t, second.Repairs, "repairs must converge after one application")
}

func TestValidateRepairedThenInvalidCellCountsOnce(t *testing.T) {
	// "gas" repairs to "Gas", which then fails the enum; the cell must be an
	// error, not a repair
	stream := parseCSV(t, "fuel_type\ngas\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"fuel_type": {Name: "fuel_type", Type: "enum", Enum: []string{"Diesel"}},
	})

	report := Validate(stream, schema)
	assert.False(t, report.IsValid)
	assert.Empty(t, report.Repairs)
	assert.Equal(t, FieldStatusInvalid, report.FieldStatus["fuel_type"])
}

func TestValidateRepairNeverDowngradesValidCell(t *testing.T) {
	// "vw" passes the length rule as-is; the dictionary replacement
	// "Volkswagen" would not, so the cell stays valid with no repair.
	two := 2
	stream := parseCSV(t, "make\nvw\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"make": {Name: "make", Type: "string", MaxLength: &two},
	})

	report := Validate(stream, schema)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Repairs)
	assert.Equal(t, FieldStatusValid, report.FieldStatus["make"])
}

func TestValidateRepairAppliedWhenReplacementPasses(t *testing.T) {
	stream := parseCSV(t, "fuel_type\ndeisel\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"fuel_type": {Name: "fuel_type", Type: "enum", Enum: []string{"Diesel", "Gas"}},
	})

	report := Validate(stream, schema)
	assert.True(t, report.IsValid)
	assert.Equal(t, "Diesel", report.Repairs[1]["fuel_type"])
	assert.Equal(t, FieldStatusRepaired, report.FieldStatus["fuel_type"])
}

func TestValidateAliasHeaderMatching(t *testing.T) {
	// "Model Year" must satisfy a schema rule named "year"
	stream := parseCSV(t, "Model Year,Make Name\n2020,Ford\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year": {Name: "year", Type: "integer", Required: true},
		"make": {Name: "make", Type: "string", Required: true},
	})

	report := Validate(stream, schema)
	assert.True(t, report.IsValid)
}

func TestInvalidRows(t *testing.T) {
	stream := parseCSV(t, "year\n2020\nnope\n2021\nalso nope\n")
	schema := testSchema(map[string]*fieldconfig.FieldRule{
		"year": {Name: "year", Type: "integer"},
	})

	report := Validate(stream, schema)
	invalid := report.InvalidRows()
	assert.True(t, invalid[2])
	assert.True(t, invalid[4])
	assert.False(t, invalid[1])
	assert.False(t, invalid[3])
}

func TestRepairValueDictionary(t *testing.T) {
	tests := []struct {
		column string
		in     string
		want   string
	}{
		{"make", "toyta", "Toyota"},
		{"make", "mercedes benz", "Mercedes-Benz"},
		{"make", "Ford", ""},
		{"make", "camry", "Camry"},
		{"model", "f-150", "F-150"},
		{"model", "RAV4", ""},
		{"position", "reer", "Rear"},
		{"drive_type", "4x4", "4WD"},
		{"fuel_type", "deisel", "Diesel"},
		{"notes", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		if got := repairValue(tt.column, tt.in); got != tt.want {
			t.Fatalf("repairValue(%q, %q) = %q, want %q", tt.column, tt.in, got, tt.want)
		}
	}
}

func TestTruthyToken(t *testing.T) {
	for _, v := range []string{"true", "1", "Yes", " Y ", "ON"} {
		assert.True(t, TruthyToken(v), v)
	}
	for _, v := range []string{"false", "0", "no", "off", "maybe", ""} {
		assert.False(t, TruthyToken(v), v)
	}
}
