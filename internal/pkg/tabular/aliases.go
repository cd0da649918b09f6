package tabular

import "strings"

// canonicalAliases translates common customer column spellings to the
// canonical ingest field names. Lookup is case-insensitive and ignores
// spaces, dashes and underscores.
var canonicalAliases = map[string]string{
	// product id
	"id":         "part_id",
	"part_id":    "part_id",
	"partid":     "part_id",
	"partnumber": "part_id",
	"part_number": "part_id",
	"sku":        "part_id",
	// vehicle attributes
	"year":       "year",
	"model_year": "year",
	"year_id":    "year",
	"make":         "make",
	"make_name":    "make",
	"makename":     "make",
	"manufacturer": "make",
	"model":      "model",
	"model_name": "model",
	"modelname":  "model",
	"submodel":      "submodel",
	"sub_model":     "submodel",
	"submodel_name": "submodel",
	"drive_type": "drive_type",
	"drivetype":  "drive_type",
	"drivetrain": "drive_type",
	"drive":      "drive_type",
	"fuel_type": "fuel_type",
	"fueltype":  "fuel_type",
	"fuel":      "fuel_type",
	"num_doors":      "num_doors",
	"numdoors":       "num_doors",
	"doors":          "num_doors",
	"body_num_doors": "num_doors",
	"body_type": "body_type",
	"bodytype":  "body_type",
	"body":      "body_type",
	// fitment attributes
	"position":  "position",
	"pos":       "position",
	"quantity":  "quantity",
	"qty":       "quantity",
	"uom":       "uom",
	"part_type": "part_type",
	"parttype":  "part_type",
	"category":  "category",
	"brand":     "brand",
	"description":      "description",
	"part_description": "description",
}

// CanonicalColumn resolves a raw header to its canonical field name. Unknown
// headers pass through lowercased with spaces and dashes collapsed to
// underscores, so downstream mapping stays deterministic.
func CanonicalColumn(header string) string {
	key := normalizeHeaderKey(header)
	if canonical, ok := canonicalAliases[key]; ok {
		return canonical
	}
	return key
}

// CanonicalRow rewrites every key of a row to its canonical column name.
// When two source columns collapse to the same canonical name the first
// non-empty value wins.
func CanonicalRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		ck := CanonicalColumn(k)
		if existing, ok := out[ck]; !ok || existing == "" {
			out[ck] = v
		}
	}
	return out
}

// MappingSuggestions proposes canonical targets for a header list; headers
// with no alias entry map to themselves normalized. Used by the ai-map job.
func MappingSuggestions(headers []string) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h] = CanonicalColumn(h)
	}
	return out
}

func normalizeHeaderKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return key
}
