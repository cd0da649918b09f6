package models

import "time"

// History actions recorded for field configuration changes.
const (
	FieldConfigActionCreated  = "created"
	FieldConfigActionUpdated  = "updated"
	FieldConfigActionDeleted  = "deleted"
	FieldConfigActionEnabled  = "enabled"
	FieldConfigActionDisabled = "disabled"
)

// FieldConfigurationHistory is the append-only audit trail of configuration
// changes. Rows are never updated or deleted.
type FieldConfigurationHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TenantID      uint      `gorm:"index" json:"tenant_id"`
	FieldConfigID uint      `gorm:"index" json:"field_config_id"`
	FieldName     string    `gorm:"type:varchar(100)" json:"field_name"`
	ReferenceType string    `gorm:"type:varchar(20)" json:"reference_type"`
	Action        string    `gorm:"type:varchar(20);not null" json:"action"`
	OldValues     JSON      `gorm:"type:json" json:"old_values"`
	NewValues     JSON      `gorm:"type:json" json:"new_values"`
	ChangedBy     string    `gorm:"type:varchar(255)" json:"changed_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
