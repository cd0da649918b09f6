package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the isolation boundary. Every other mutable entity carries an
// owning TenantID; cross-tenant reads are forbidden at the repository layer.
type Tenant struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UUID            string `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	Name            string `gorm:"type:varchar(255);not null" json:"name"`
	Slug            string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description     string `gorm:"type:text" json:"description"`
	IsActive        bool   `gorm:"default:true" json:"is_active"`
	IsDefault       bool   `gorm:"default:false" json:"is_default"`
	FitmentSettings JSON   `gorm:"type:json" json:"fitment_settings"`
	AIInstructions  string `gorm:"type:text" json:"ai_instructions"`
	Auditable
}

// FitmentSettingsKeys are the recognized keys inside Tenant.FitmentSettings.
const (
	SettingVCDBCategories        = "vcdb_categories"
	SettingRequiredProductFields = "required_product_fields"
	SettingAdditionalAttributes  = "additional_attributes"
)

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	if len(t.FitmentSettings) == 0 {
		t.FitmentSettings = JSON("{}")
	}
	return nil
}

// VCDBCategories returns the category IDs selected in fitment_settings.
func (t *Tenant) VCDBCategories() []string {
	raw, ok := t.FitmentSettings.AsMap()[SettingVCDBCategories]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
