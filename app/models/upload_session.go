package models

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload session lifecycle. Transitions are monotonic: uploading → uploaded →
// processing → {completed, error}.
const (
	UploadStatusUploading  = "uploading"
	UploadStatusUploaded   = "uploaded"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusError      = "error"
)

// UploadSession tracks one customer upload: the stored file references, the
// preflight reports and the per-file validation outcome. This is the single
// canonical upload model; there is no separate legacy variant.
type UploadSession struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	UUID             string  `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	TenantID         uint    `gorm:"index;not null" json:"tenant_id"`
	Tenant           Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	VCDBFileRef      string  `gorm:"type:varchar(512)" json:"vcdb_file_ref"`
	ProductsFileRef  string  `gorm:"type:varchar(512)" json:"products_file_ref"`
	VCDBFilename     string  `gorm:"type:varchar(255)" json:"vcdb_filename"`
	ProductsFilename string  `gorm:"type:varchar(255)" json:"products_filename"`
	VCDBFileSize     int64   `gorm:"type:bigint" json:"vcdb_file_size"`
	ProductsFileSize int64   `gorm:"type:bigint" json:"products_file_size"`
	Status           string  `gorm:"type:varchar(20);default:'uploading';index" json:"status"`
	VCDBValid        bool    `gorm:"default:false" json:"vcdb_valid"`
	ProductsValid    bool    `gorm:"default:false" json:"products_valid"`
	VCDBRecords      int     `gorm:"default:0" json:"vcdb_records"`
	ProductsRecords  int     `gorm:"default:0" json:"products_records"`
	ValidationErrors JSON    `gorm:"type:json" json:"validation_errors"`
	PreflightReport  JSON    `gorm:"type:json" json:"preflight_report"`
	Auditable
}

func (s *UploadSession) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return nil
}

// uploadStatusRank orders the lifecycle so transitions can be checked.
var uploadStatusRank = map[string]int{
	UploadStatusUploading:  0,
	UploadStatusUploaded:   1,
	UploadStatusProcessing: 2,
	UploadStatusCompleted:  3,
	UploadStatusError:      3,
}

// TransitionTo enforces the monotonic status lifecycle.
func (s *UploadSession) TransitionTo(status string) error {
	next, ok := uploadStatusRank[status]
	if !ok {
		return fmt.Errorf("unknown upload status %q", status)
	}
	if current, ok := uploadStatusRank[s.Status]; ok && next < current {
		return fmt.Errorf("illegal upload status transition %s -> %s", s.Status, status)
	}
	s.Status = status
	return nil
}

// IsTerminal reports whether the session reached a final status.
func (s *UploadSession) IsTerminal() bool {
	return s.Status == UploadStatusCompleted || s.Status == UploadStatusError
}
