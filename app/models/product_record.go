package models

import "strconv"

// ProductRecord is one part-catalog row owned by a tenant. Uniqueness is
// (tenant, part_id).
type ProductRecord struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	TenantID       uint   `gorm:"index:idx_products_identity,unique;not null" json:"tenant_id"`
	Tenant         Tenant `gorm:"foreignKey:TenantID" json:"-"`
	PartID         string `gorm:"index:idx_products_identity,unique;type:varchar(100);not null" json:"part_id"`
	Description    string `gorm:"type:text" json:"description"`
	Category       string `gorm:"type:varchar(100)" json:"category"`
	PartType       string `gorm:"type:varchar(100)" json:"part_type"`
	Compatibility  string `gorm:"type:text" json:"compatibility"`
	Brand          string `gorm:"type:varchar(100)" json:"brand"`
	SKU            string `gorm:"type:varchar(100)" json:"sku"`
	Specifications JSON   `gorm:"type:json" json:"specifications"`
	SourceFile     string `gorm:"type:varchar(255)" json:"source_file"`
	Auditable
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
