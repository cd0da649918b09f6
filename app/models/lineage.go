package models

import "time"

// Lineage entity types.
const (
	LineageEntityUpload   = "upload"
	LineageEntityRow      = "row"
	LineageEntityJob      = "job"
	LineageEntityProposal = "proposal"
	LineageEntityFitment  = "fitment"
)

// Lineage is one append-only provenance edge: entity derived-from parent.
// Rows are insert-only; deletion is forbidden.
type Lineage struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TenantID         uint      `gorm:"index:idx_lineage_lookup;not null" json:"tenant_id"`
	EntityType       string    `gorm:"index:idx_lineage_lookup;type:varchar(30);not null" json:"entity_type"`
	EntityID         string    `gorm:"index:idx_lineage_lookup;type:varchar(100);not null" json:"entity_id"`
	ParentEntityType string    `gorm:"type:varchar(30)" json:"parent_entity_type,omitempty"`
	ParentEntityID   string    `gorm:"type:varchar(100)" json:"parent_entity_id,omitempty"`
	Meta             JSON      `gorm:"type:json" json:"meta"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
