package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTabularBySniff(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
		ok       bool
	}{
		{"csv", "vehicles.csv", []byte("year,make,model\n2020,Ford,F-150\n"), true},
		{"tsv", "vehicles.tsv", []byte("year\tmake\n2020\tFord\n"), true},
		{"json", "products.json", []byte(`[{"part_id":"P-1"}]`), true},
		{"xlsx zip container", "products.xlsx", []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}, true},
		{"xls compound file", "legacy.xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, true},
		{"extension not allowed", "report.pdf", []byte("%PDF-1.4"), false},
		{"html behind csv extension", "sneaky.csv", []byte("<!DOCTYPE html><html><body>hi</body></html>"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := ValidateTabularBySniff(tt.filename, tt.head)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, mime)
		})
	}
}

func TestValidateTabularBySniffCaseInsensitiveExt(t *testing.T) {
	_, err := ValidateTabularBySniff("VEHICLES.CSV", []byte("year,make\n"))
	assert.NoError(t, err)
}
