package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preset is a named, tenant-scoped attribute-priority configuration applied
// during AI column mapping.
type Preset struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UUID        string `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	TenantID    uint   `gorm:"index:idx_presets_tenant_name,unique;not null" json:"tenant_id"`
	Tenant      Tenant `gorm:"foreignKey:TenantID" json:"-"`
	Name        string `gorm:"index:idx_presets_tenant_name,unique;type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// Priorities maps canonical attribute names to their weight during ai-map.
	Priorities JSON `gorm:"type:json" json:"priorities"`
	IsDefault  bool `gorm:"default:false" json:"is_default"`
	Auditable
}

func (p *Preset) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}
