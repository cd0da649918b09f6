package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reference types a field configuration can apply to.
const (
	ReferenceVCDB    = "vcdb"
	ReferenceProduct = "product"
	ReferenceBoth    = "both"
)

// Field value types.
const (
	FieldTypeString  = "string"
	FieldTypeText    = "text"
	FieldTypeNumber  = "number"
	FieldTypeInteger = "integer"
	FieldTypeDecimal = "decimal"
	FieldTypeBoolean = "boolean"
	FieldTypeEnum    = "enum"
	FieldTypeDate    = "date"
)

// Requirement levels.
const (
	RequirementRequired = "required"
	RequirementOptional = "optional"
	RequirementDisabled = "disabled"
)

// FieldConfiguration is one entry of the per-tenant dynamic schema that all
// VCDB/product ingestion is validated against. (tenant, name, reference_type)
// uniquely identifies a configuration; name and reference_type are immutable
// after creation.
type FieldConfiguration struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	TenantID         uint    `gorm:"index:idx_field_configs_identity,unique;not null" json:"tenant_id"`
	Tenant           Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	Name             string  `gorm:"index:idx_field_configs_identity,unique;type:varchar(100);not null" json:"name"`
	DisplayName      string  `gorm:"type:varchar(255)" json:"display_name"`
	ReferenceType    string  `gorm:"index:idx_field_configs_identity,unique;type:varchar(20);not null" json:"reference_type"`
	FieldType        string  `gorm:"type:varchar(20);not null" json:"field_type"`
	RequirementLevel string  `gorm:"type:varchar(20);default:'optional'" json:"requirement_level"`
	IsEnabled        bool    `gorm:"default:true" json:"is_enabled"`
	IsUnique         bool    `gorm:"default:false" json:"is_unique"`
	MinLength        *int    `gorm:"type:int" json:"min_length,omitempty"`
	MaxLength        *int    `gorm:"type:int" json:"max_length,omitempty"`
	MinValue         *float64 `gorm:"type:decimal(20,6)" json:"min_value,omitempty"`
	MaxValue         *float64 `gorm:"type:decimal(20,6)" json:"max_value,omitempty"`
	EnumOptions      JSON    `gorm:"type:json" json:"enum_options"`
	EnumFold         bool    `gorm:"default:false" json:"enum_fold"`
	DefaultValue     string  `gorm:"type:varchar(255)" json:"default_value"`
	DisplayOrder     int     `gorm:"default:0" json:"display_order"`
	ShowInFilters    bool    `gorm:"default:false" json:"show_in_filters"`
	ShowInForms      bool    `gorm:"default:true" json:"show_in_forms"`
	Auditable
}

// EnumValues decodes EnumOptions (a bare JSON array) into a string slice.
func (f *FieldConfiguration) EnumValues() []string {
	if len(f.EnumOptions) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(f.EnumOptions, &list); err != nil {
		return nil
	}
	return list
}

// Validate enforces the structural invariants of a configuration before it is
// persisted or updated.
func (f *FieldConfiguration) Validate() error {
	switch f.ReferenceType {
	case ReferenceVCDB, ReferenceProduct, ReferenceBoth:
	default:
		return fmt.Errorf("invalid reference_type %q", f.ReferenceType)
	}
	switch f.FieldType {
	case FieldTypeString, FieldTypeText, FieldTypeNumber, FieldTypeInteger,
		FieldTypeDecimal, FieldTypeBoolean, FieldTypeEnum, FieldTypeDate:
	default:
		return fmt.Errorf("invalid field_type %q", f.FieldType)
	}
	switch f.RequirementLevel {
	case RequirementRequired, RequirementOptional, RequirementDisabled:
	default:
		return fmt.Errorf("invalid requirement_level %q", f.RequirementLevel)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field name is required")
	}
	if f.FieldType == FieldTypeEnum && len(f.EnumValues()) == 0 {
		return fmt.Errorf("enum field %q requires non-empty enum_options", f.Name)
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return fmt.Errorf("field %q: min_length > max_length", f.Name)
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return fmt.Errorf("field %q: min_value > max_value", f.Name)
	}
	return nil
}

// AppliesTo reports whether this configuration participates in validation for
// the requested reference type.
func (f *FieldConfiguration) AppliesTo(referenceType string) bool {
	return f.ReferenceType == referenceType || f.ReferenceType == ReferenceBoth
}
