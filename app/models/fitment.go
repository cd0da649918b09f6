package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Fitment families.
const (
	FitmentTypeManual    = "manual_fitment"
	FitmentTypeAI        = "ai_fitment"
	FitmentTypePotential = "potential_fitment"
)

// Item statuses.
const (
	ItemStatusActive         = "Active"
	ItemStatusReadyToApprove = "ReadyToApprove"
)

// Fitment associates one part with one vehicle configuration plus install
// attributes. Hash is the opaque external identifier, derived from the
// tenant-scoped logical key so the same live pair can never exist twice.
type Fitment struct {
	ID                 uint    `gorm:"primaryKey" json:"-"`
	Hash               string  `gorm:"type:char(64);uniqueIndex;not null" json:"hash"`
	TenantID           uint    `gorm:"index:idx_fitments_live,unique;not null" json:"tenant_id"`
	Tenant             Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	PartID             string  `gorm:"index:idx_fitments_live,unique;type:varchar(100);not null" json:"part_id"`
	ItemStatus         string  `gorm:"type:varchar(50);default:'Active'" json:"item_status"`
	ItemStatusCode     int     `gorm:"default:0" json:"item_status_code"`
	BaseVehicleID      string  `gorm:"type:varchar(50)" json:"base_vehicle_id"`
	Year               int     `gorm:"index:idx_fitments_live,unique;not null" json:"year"`
	MakeName           string  `gorm:"column:make_name;index:idx_fitments_live,unique;type:varchar(100);not null" json:"make_name"`
	ModelName          string  `gorm:"column:model_name;index:idx_fitments_live,unique;type:varchar(100);not null" json:"model_name"`
	Submodel           string  `gorm:"index:idx_fitments_live,unique;type:varchar(100)" json:"submodel"`
	DriveType          string  `gorm:"type:varchar(50)" json:"drive_type"`
	FuelType           string  `gorm:"type:varchar(50)" json:"fuel_type"`
	NumDoors           int     `gorm:"type:int" json:"num_doors"`
	BodyType           string  `gorm:"type:varchar(50)" json:"body_type"`
	PTID               string  `gorm:"column:ptid;type:varchar(50)" json:"ptid"`
	PartTypeDescriptor string  `gorm:"type:varchar(255)" json:"part_type_descriptor"`
	UOM                string  `gorm:"column:uom;type:varchar(20);default:'EA'" json:"uom"`
	Quantity           int     `gorm:"default:1" json:"quantity"`
	Title              string  `gorm:"type:varchar(255)" json:"title"`
	Description        string  `gorm:"type:text" json:"description"`
	Notes              string  `gorm:"type:text" json:"notes"`
	Position           string  `gorm:"type:varchar(50)" json:"position"`
	PositionID         int     `gorm:"default:0" json:"position_id"`
	LiftHeight         string  `gorm:"type:varchar(50)" json:"lift_height"`
	WheelType          string  `gorm:"type:varchar(50)" json:"wheel_type"`
	FitmentType        string  `gorm:"type:varchar(30);default:'manual_fitment';index" json:"fitment_type"`
	ConfidenceScore    float64 `gorm:"type:decimal(4,3);default:0" json:"confidence_score"`
	AIDescription      string  `gorm:"type:text" json:"ai_description"`
	AIReasoningRef     string  `gorm:"type:varchar(100)" json:"ai_reasoning_ref"`
	DynamicFields      JSON    `gorm:"type:json" json:"dynamic_fields"`
	// idx_fitments_live covers (tenant, part, year, make, model, submodel,
	// live_marker): live_marker is NULL for soft-deleted rows, so MySQL's
	// unique index only constrains live fitments.
	LiveMarker *bool `gorm:"index:idx_fitments_live,unique;default:true" json:"-"`
	Auditable
	SoftDeletable
}

// FitmentHash derives the opaque identifier from the tenant-scoped logical key.
func FitmentHash(tenantID uint, partID string, year int, make, model, submodel string) string {
	key := fmt.Sprintf("%d|%s|%d|%s|%s|%s",
		tenantID,
		strings.ToLower(strings.TrimSpace(partID)),
		year,
		strings.ToLower(strings.TrimSpace(make)),
		strings.ToLower(strings.TrimSpace(model)),
		strings.ToLower(strings.TrimSpace(submodel)),
	)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (f *Fitment) BeforeCreate(tx *gorm.DB) error {
	if f.Hash == "" {
		f.Hash = FitmentHash(f.TenantID, f.PartID, f.Year, f.MakeName, f.ModelName, f.Submodel)
	}
	if f.LiveMarker == nil {
		live := true
		f.LiveMarker = &live
	}
	return nil
}

// MarkDeleted soft-deletes the fitment and releases the live-uniqueness slot.
func (f *Fitment) MarkDeleted(by string) {
	f.SoftDelete(by)
	f.LiveMarker = nil
}

// MarkRestored reverses a soft delete and reclaims the live-uniqueness slot.
func (f *Fitment) MarkRestored(by string) {
	f.Restore(by)
	live := true
	f.LiveMarker = &live
}

// IsAIGenerated reports whether the fitment came from the AI family.
func (f *Fitment) IsAIGenerated() bool {
	return f.FitmentType == FitmentTypeAI || f.FitmentType == FitmentTypePotential
}
