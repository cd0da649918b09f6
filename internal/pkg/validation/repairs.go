package validation

import "strings"

// Columns whose values run through the domain repair dictionary.
var repairableColumns = map[string]bool{
	"make":       true,
	"model":      true,
	"position":   true,
	"fuel_type":  true,
	"drive_type": true,
	"wheel_type": true,
}

// repairDictionary maps lowercased variants and known misspellings to their
// canonical values, per repairable column.
var repairDictionary = map[string]map[string]string{
	"make": {
		"ford":       "Ford",
		"toyota":     "Toyota",
		"toyta":      "Toyota",
		"honda":      "Honda",
		"chevrolet":  "Chevrolet",
		"cheverolet": "Chevrolet",
		"chevy":      "Chevrolet",
		"nissan":     "Nissan",
		"jeep":       "Jeep",
		"dodge":      "Dodge",
		"ram":        "Ram",
		"gmc":        "GMC",
		"bmw":        "BMW",
		"mercedes":   "Mercedes-Benz",
		"mercedes benz": "Mercedes-Benz",
		"volkswagen": "Volkswagen",
		"vw":         "Volkswagen",
		"subaru":     "Subaru",
		"hyundai":    "Hyundai",
		"kia":        "Kia",
		"mazda":      "Mazda",
		"lexus":      "Lexus",
	},
	"position": {
		"front":       "Front",
		"fornt":       "Front",
		"rear":        "Rear",
		"reer":        "Rear",
		"back":        "Rear",
		"left":        "Left",
		"right":       "Right",
		"front left":  "Front Left",
		"front right": "Front Right",
		"rear left":   "Rear Left",
		"rear right":  "Rear Right",
		"all":         "All",
	},
	"fuel_type": {
		"gas":      "Gas",
		"gasoline": "Gas",
		"petrol":   "Gas",
		"diesel":   "Diesel",
		"deisel":   "Diesel",
		"electric": "Electric",
		"ev":       "Electric",
		"hybrid":   "Hybrid",
		"flex":     "Flex",
	},
	"drive_type": {
		"fwd":               "FWD",
		"front wheel drive": "FWD",
		"rwd":               "RWD",
		"rear wheel drive":  "RWD",
		"awd":               "AWD",
		"all wheel drive":   "AWD",
		"4wd":               "4WD",
		"4x4":               "4WD",
		"four wheel drive":  "4WD",
		"2wd":               "2WD",
	},
	"wheel_type": {
		"alloy":    "Alloy",
		"steel":    "Steel",
		"steelies": "Steel",
		"chrome":   "Chrome",
		"forged":   "Forged",
	},
}

// repairValue returns the canonical replacement for a cell, or "" when the
// value is already canonical or unknown. Whitespace-only differences repair
// on every column; dictionary repairs only on repairable columns.
func repairValue(column, value string) string {
	trimmed := strings.TrimSpace(value)
	canonical := trimmed

	if repairableColumns[column] {
		key := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
		if mapped, ok := repairDictionary[column][key]; ok {
			canonical = mapped
		} else if (column == "make" || column == "model") && trimmed != "" && trimmed == strings.ToLower(trimmed) {
			// unknown all-lowercase names get title casing; a second pass sees
			// mixed case and leaves the value alone
			canonical = modelTitleCase(trimmed)
		}
	}

	if canonical != value {
		return canonical
	}
	return ""
}

// modelTitleCase canonicalizes free-form model casing ("camry" → "Camry").
// Only applied when the dictionary has no entry, so known names keep their
// exact form (e.g. "RAV4").
func modelTitleCase(value string) string {
	words := strings.Fields(strings.ToLower(value))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
