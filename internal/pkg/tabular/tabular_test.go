package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		delimiter string
	}{
		{name: "comma", data: "year,make,model\n2020,Ford,F-150\n", delimiter: ","},
		{name: "semicolon", data: "year;make;model\n2020;Ford;F-150\n", delimiter: ";"},
		{name: "tab", data: "year\tmake\tmodel\n2020\tFord\tF-150\n", delimiter: "\t"},
		{name: "pipe", data: "year|make|model\n2020|Ford|F-150\n", delimiter: "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse([]byte(tt.data), "vehicles.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.delimiter, result.Preflight.Delimiter)
			assert.Equal(t, []string{"year", "make", "model"}, result.Stream.Headers)
			require.Equal(t, 1, result.Stream.Len())

			row, ok := result.Stream.Next()
			require.True(t, ok)
			assert.Equal(t, "2020", row["year"])
			assert.Equal(t, "Ford", row["make"])
			assert.Equal(t, "F-150", row["model"])
		})
	}
}

func TestParseCSVDelimiterDetectionUsesSampleLines(t *testing.T) {
	// The quoted header cell contains a comma; only the data lines reveal the
	// real delimiter.
	data := "part;\"notes, remarks\"\nP-1;brake pad\nP-2;oil filter\n"

	result, err := Parse([]byte(data), "parts.csv")
	require.NoError(t, err)
	assert.Equal(t, ";", result.Preflight.Delimiter)
	assert.Empty(t, result.Stream.Notes)
	assert.Equal(t, []string{"part", "notes, remarks"}, result.Stream.Headers)
	require.Equal(t, 2, result.Stream.Len())
}

func TestParseCSVUTF16(t *testing.T) {
	text := "year,make\n2021,Toyota\n"
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0x00)
	}

	result, err := Parse(data, "vehicles.csv")
	require.NoError(t, err)
	assert.Equal(t, "utf-16le", result.Preflight.Encoding)
	assert.Equal(t, []string{"year", "make"}, result.Stream.Headers)
}

func TestParseCSVLatin1(t *testing.T) {
	data := []byte("make,model\nCitro\xebn,C4\n")

	result, err := Parse(data, "vehicles.csv")
	require.NoError(t, err)
	assert.Equal(t, "latin-1", result.Preflight.Encoding)

	row, ok := result.Stream.Next()
	require.True(t, ok)
	assert.Equal(t, "Citroën", row["make"])
}

func TestParseCSVBOMStripped(t *testing.T) {
	data := []byte("\xEF\xBB\xBFyear,make\n2020,Ford\n")

	result, err := Parse(data, "vehicles.csv")
	require.NoError(t, err)
	assert.Equal(t, "year", result.Stream.Headers[0])
}

func TestParseCSVShortAndLongRows(t *testing.T) {
	data := "a,b,c\n1,2\n1,2,3,4\n"

	result, err := Parse([]byte(data), "data.csv")
	require.NoError(t, err)
	rows := result.Stream.Rows()
	require.Len(t, rows, 2)
	// short record leaves the trailing column empty
	assert.Equal(t, "", rows[0]["c"])
	// long record drops the overflow
	assert.Equal(t, "3", rows[1]["c"])
}

func TestParseDuplicateHeaders(t *testing.T) {
	data := "year,Year,make\n2020,2021,Ford\n"

	_, err := Parse([]byte(data), "data.csv")
	require.Error(t, err)
	var dupErr *DuplicateHeaderError
	assert.ErrorAs(t, err, &dupErr)
}

func TestParseZeroRowsIssue(t *testing.T) {
	result, err := Parse([]byte("year,make\n"), "data.csv")
	require.NoError(t, err)
	assert.Contains(t, result.Preflight.Issues, IssueZeroRows)
}

func TestParseJSONShapes(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		data := `[{"year": 2020, "make": "Ford"}, {"year": 2021, "make": "Toyota"}]`
		result, err := Parse([]byte(data), "vehicles.json")
		require.NoError(t, err)
		assert.Equal(t, 2, result.Stream.Len())

		row, _ := result.Stream.Next()
		assert.Equal(t, "2020", row["year"])
	})

	t.Run("single object", func(t *testing.T) {
		result, err := Parse([]byte(`{"year": 2020, "make": "Ford"}`), "vehicle.json")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Stream.Len())
	})

	t.Run("scalar rejected", func(t *testing.T) {
		_, err := Parse([]byte(`42`), "vehicle.json")
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("array with scalar rejected", func(t *testing.T) {
		_, err := Parse([]byte(`[{"a": 1}, 2]`), "vehicle.json")
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse([]byte("data"), "upload.pdf")
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestStreamEmptyRecordsDropped(t *testing.T) {
	data := "year,make\n2020,Ford\n,\n  ,  \n2021,Toyota\n"

	result, err := Parse([]byte(data), "data.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stream.Len())
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Year", "year"},
		{"Model Year", "year"},
		{"MAKE", "make"},
		{"Make Name", "make"},
		{"manufacturer", "make"},
		{"Sub-Model", "submodel"},
		{"DriveTrain", "drive_type"},
		{"Part Number", "part_id"},
		{"SKU", "part_id"},
		{"Qty", "quantity"},
		{"Body  Type", "body_type"},
		{"Custom Field", "custom_field"},
	}

	for _, tt := range tests {
		if got := CanonicalColumn(tt.header); got != tt.want {
			t.Fatalf("CanonicalColumn(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestCanonicalRowFirstNonEmptyWins(t *testing.T) {
	row := Row{"Make": "", "Manufacturer": "Ford"}
	out := CanonicalRow(row)
	assert.Equal(t, "Ford", out["make"])
}

func TestMappingSuggestions(t *testing.T) {
	got := MappingSuggestions([]string{"Model Year", "Make Name", "Notes"})
	assert.Equal(t, "year", got["Model Year"])
	assert.Equal(t, "make", got["Make Name"])
	assert.Equal(t, "notes", got["Notes"])
}
