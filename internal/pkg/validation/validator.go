package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mft-data/fitmenthub/internal/pkg/fieldconfig"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
)

// Field statuses reported per schema field.
const (
	FieldStatusValid    = "valid"
	FieldStatusRepaired = "repaired"
	FieldStatusInvalid  = "invalid"
	FieldStatusMissing  = "missing"
)

// CellError locates one validation failure. Row is 1-based over data rows.
type CellError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// Report is the full validation outcome for one stream against one schema.
// Repairs hold auto-correctable fixes keyed by row then column; a cell is
// either valid as-is, repairable, or invalid, never repaired and errored.
type Report struct {
	IsValid        bool                      `json:"is_valid"`
	Errors         []CellError               `json:"errors"`
	Repairs        map[int]map[string]string `json:"repairs"`
	IgnoredColumns []string                  `json:"ignored_columns"`
	FieldStatus    map[string]string         `json:"field_status"`
	RowCount       int                       `json:"row_count"`
}

func (r *Report) addError(row int, column, message string) {
	r.Errors = append(r.Errors, CellError{Row: row, Column: column, Message: message})
}

func (r *Report) addRepair(row int, column, replacement string) {
	if r.Repairs[row] == nil {
		r.Repairs[row] = map[string]string{}
	}
	r.Repairs[row][column] = replacement
}

// InvalidRows returns the distinct row numbers with at least one hard error.
func (r *Report) InvalidRows() map[int]bool {
	out := map[int]bool{}
	for _, e := range r.Errors {
		if e.Row > 0 {
			out[e.Row] = true
		}
	}
	return out
}

// Validate checks a parsed row stream against the resolved schema. Headers
// are matched through the canonical alias tables, so customer spellings line
// up with schema field names.
func Validate(stream *tabular.Stream, schema *fieldconfig.Schema) *Report {
	report := &Report{
		IsValid:        true,
		Errors:         []CellError{},
		Repairs:        map[int]map[string]string{},
		IgnoredColumns: []string{},
		FieldStatus:    map[string]string{},
		RowCount:       stream.Len(),
	}

	// canonical header name -> original header
	headerFor := map[string]string{}
	for _, h := range stream.Headers {
		canonical := tabular.CanonicalColumn(h)
		if _, ok := headerFor[canonical]; !ok {
			headerFor[canonical] = h
		}
	}

	// Headers outside the schema are allowed but recorded; headers matching a
	// disabled field are an error.
	for canonical, original := range headerFor {
		rule := schema.Rule(canonical)
		if rule == nil {
			report.IgnoredColumns = append(report.IgnoredColumns, original)
			continue
		}
		if rule.Disabled {
			report.addError(0, original, fmt.Sprintf("field %q is disabled for this tenant", canonical))
			report.FieldStatus[canonical] = FieldStatusInvalid
		}
	}

	rows := stream.Rows()

	// Required fields must be present and not entirely null.
	for _, name := range schema.RequiredFields() {
		original, present := headerFor[name]
		if !present {
			report.addError(0, name, fmt.Sprintf("required field %q is missing from the file", name))
			report.FieldStatus[name] = FieldStatusMissing
			continue
		}
		allEmpty := len(rows) > 0
		for _, row := range rows {
			if strings.TrimSpace(row[original]) != "" {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			report.addError(0, original, fmt.Sprintf("required field %q has no values", name))
			report.FieldStatus[name] = FieldStatusMissing
		}
	}

	// Per-field validation across each column vector.
	for canonical, original := range headerFor {
		rule := schema.Rule(canonical)
		if rule == nil || rule.Disabled {
			continue
		}
		if _, done := report.FieldStatus[canonical]; done {
			continue
		}
		status := FieldStatusValid
		seen := map[string]int{}

		for i, row := range rows {
			rowNum := i + 1
			value := row[original]
			if strings.TrimSpace(value) == "" {
				continue // emptiness is handled by the required check
			}

			// A repair is proposed only when the replacement itself satisfies
			// the rule; a cell whose original value passes stays valid even
			// when the dictionary replacement would not.
			if replacement := repairValue(canonical, value); replacement != "" {
				if checkCell(rule, replacement) == "" {
					report.addRepair(rowNum, original, replacement)
					value = replacement
					if status == FieldStatusValid {
						status = FieldStatusRepaired
					}
				}
			}

			if msg := checkCell(rule, value); msg != "" {
				report.addError(rowNum, original, msg)
				status = FieldStatusInvalid
				continue
			}

			if rule.Unique {
				if first, dup := seen[value]; dup {
					report.addError(rowNum, original,
						fmt.Sprintf("duplicate value %q (first seen in row %d)", value, first))
					status = FieldStatusInvalid
				} else {
					seen[value] = rowNum
				}
			}
		}
		report.FieldStatus[canonical] = status
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

// ApplyRepairs rewrites the repaired cells into the given rows in place.
// Re-validating the result yields no further repairs and no new errors.
func ApplyRepairs(rows []tabular.Row, repairs map[int]map[string]string) {
	for rowNum, cols := range repairs {
		idx := rowNum - 1
		if idx < 0 || idx >= len(rows) {
			continue
		}
		for col, replacement := range cols {
			rows[idx][col] = replacement
		}
	}
}

// checkCell validates a single non-empty cell against its rule. Returns an
// error message, or "" when the value passes.
func checkCell(rule *fieldconfig.FieldRule, value string) string {
	switch rule.Type {
	case "string", "text":
		if rule.MinLength != nil && len(value) < *rule.MinLength {
			return fmt.Sprintf("value shorter than minimum length %d", *rule.MinLength)
		}
		if rule.MaxLength != nil && len(value) > *rule.MaxLength {
			return fmt.Sprintf("value longer than maximum length %d", *rule.MaxLength)
		}

	case "number", "decimal":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("%q is not a number", value)
		}
		return checkNumericRange(rule, f)

	case "integer":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f != math.Trunc(f) {
			return fmt.Sprintf("%q is not a whole number", value)
		}
		return checkNumericRange(rule, f)

	case "boolean":
		if !isBooleanToken(value) {
			return fmt.Sprintf("%q is not a boolean value", value)
		}

	case "enum":
		for _, opt := range rule.Enum {
			if rule.EnumFold {
				if strings.EqualFold(opt, value) {
					return ""
				}
			} else if opt == value {
				return ""
			}
		}
		return fmt.Sprintf("%q is not one of the allowed values", value)

	case "date":
		if !parseableDate(value) {
			return fmt.Sprintf("%q is not a recognized date", value)
		}
	}
	return ""
}

func checkNumericRange(rule *fieldconfig.FieldRule, f float64) string {
	if rule.MinValue != nil && f < *rule.MinValue {
		return fmt.Sprintf("value %g below minimum %g", f, *rule.MinValue)
	}
	if rule.MaxValue != nil && f > *rule.MaxValue {
		return fmt.Sprintf("value %g above maximum %g", f, *rule.MaxValue)
	}
	return ""
}

var booleanTokens = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "on": true,
	"false": true, "0": true, "no": true, "n": true, "off": true,
}

// TruthyToken reports whether the value is in the truthy set.
func TruthyToken(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}

func isBooleanToken(value string) bool {
	return booleanTokens[strings.ToLower(strings.TrimSpace(value))]
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
