package fieldconfig

import (
	"github.com/mft-data/fitmenthub/app/models"
)

// FieldRule is the validation contract for one field, resolved from a
// FieldConfiguration. The validator iterates rules, never model structs.
type FieldRule struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	Disabled  bool     `json:"disabled"`
	Unique    bool     `json:"unique"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
	Enum      []string `json:"enum,omitempty"`
	// EnumFold makes enum comparison case-insensitive for this field.
	EnumFold bool   `json:"enum_fold,omitempty"`
	Default  string `json:"default,omitempty"`
}

// Schema is the effective field set for one (tenant, reference_type) slice,
// indexed by canonical field name.
type Schema struct {
	TenantID      uint                  `json:"tenant_id"`
	ReferenceType string                `json:"reference_type"`
	Fields        map[string]*FieldRule `json:"fields"`
}

// Rule returns the rule for a field name, or nil when the schema does not
// know the field.
func (s *Schema) Rule(name string) *FieldRule {
	return s.Fields[name]
}

// RequiredFields lists the names of all required fields.
func (s *Schema) RequiredFields() []string {
	var out []string
	for name, rule := range s.Fields {
		if rule.Required && !rule.Disabled {
			out = append(out, name)
		}
	}
	return out
}

// ruleFromConfig maps one persisted configuration to its validation rule.
func ruleFromConfig(cfg *models.FieldConfiguration) *FieldRule {
	return &FieldRule{
		Name:      cfg.Name,
		Type:      cfg.FieldType,
		Required:  cfg.RequirementLevel == models.RequirementRequired,
		Disabled:  cfg.RequirementLevel == models.RequirementDisabled,
		Unique:    cfg.IsUnique,
		MinLength: cfg.MinLength,
		MaxLength: cfg.MaxLength,
		MinValue:  cfg.MinValue,
		MaxValue:  cfg.MaxValue,
		Enum:      cfg.EnumValues(),
		EnumFold:  cfg.EnumFold,
		Default:   cfg.DefaultValue,
	}
}
