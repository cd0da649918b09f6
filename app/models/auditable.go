package models

import "time"

// Auditable carries the created/updated bookkeeping shared by all mutable
// entities. Embed it instead of repeating the four columns per model.
type Auditable struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"created_by"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	UpdatedBy string    `gorm:"type:varchar(255)" json:"updated_by"`
}

// SoftDeletable marks a row inactive without removing it. Active-read queries
// must filter on is_deleted = false.
type SoftDeletable struct {
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"type:datetime" json:"deleted_at,omitempty"`
	DeletedBy string     `gorm:"type:varchar(255)" json:"deleted_by,omitempty"`
}

// SoftDelete flags the row as deleted on behalf of the given actor.
func (s *SoftDeletable) SoftDelete(by string) {
	now := time.Now()
	s.IsDeleted = true
	s.DeletedAt = &now
	s.DeletedBy = by
}

// Restore reverses a soft delete.
func (s *SoftDeletable) Restore(by string) {
	s.IsDeleted = false
	s.DeletedAt = nil
	s.DeletedBy = ""
}
