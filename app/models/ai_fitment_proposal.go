package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proposal review states. Approved and rejected are terminal.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// AIFitmentProposal is the ready-to-approve form of an AI-generated fitment.
// Approval materializes it into an active Fitment; rejection is terminal.
type AIFitmentProposal struct {
	ID                 uint    `gorm:"primaryKey" json:"-"`
	UUID               string  `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	TenantID           uint    `gorm:"index;not null" json:"tenant_id"`
	Tenant             Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	SessionID          uint    `gorm:"index" json:"session_id"`
	JobID              uint    `gorm:"index" json:"job_id"`
	PartID             string  `gorm:"type:varchar(100);not null" json:"part_id"`
	PartDescription    string  `gorm:"type:text" json:"part_description"`
	Year               int     `gorm:"not null" json:"year"`
	MakeName           string  `gorm:"column:make_name;type:varchar(100);not null" json:"make_name"`
	ModelName          string  `gorm:"column:model_name;type:varchar(100);not null" json:"model_name"`
	Submodel           string  `gorm:"type:varchar(100)" json:"submodel"`
	DriveType          string  `gorm:"type:varchar(50)" json:"drive_type"`
	FuelType           string  `gorm:"type:varchar(50)" json:"fuel_type"`
	NumDoors           int     `gorm:"type:int" json:"num_doors"`
	BodyType           string  `gorm:"type:varchar(50)" json:"body_type"`
	Position           string  `gorm:"type:varchar(50)" json:"position"`
	Quantity           int     `gorm:"default:1" json:"quantity"`
	UOM                string  `gorm:"column:uom;type:varchar(20);default:'EA'" json:"uom"`
	ConfidenceScore    float64 `gorm:"type:decimal(4,3);default:0" json:"confidence_score"`
	AIReasoning        string  `gorm:"type:text" json:"ai_reasoning"`
	AIInstructionsUsed string  `gorm:"type:text" json:"ai_instructions_used"`
	DynamicFields      JSON    `gorm:"type:json" json:"dynamic_fields"`
	Status             string  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReviewedAt         *time.Time `gorm:"type:datetime" json:"reviewed_at,omitempty"`
	ReviewedBy         string  `gorm:"type:varchar(255)" json:"reviewed_by,omitempty"`
	ReviewNotes        string  `gorm:"type:text" json:"review_notes,omitempty"`
	Auditable
}

func (p *AIFitmentProposal) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether the proposal already left the pending state.
func (p *AIFitmentProposal) IsTerminal() bool {
	return p.Status == ProposalStatusApproved || p.Status == ProposalStatusRejected
}

// ToFitment materializes the proposal into a live Fitment. Fields copy over
// verbatim; the proposal UUID is linked via AIReasoningRef.
func (p *AIFitmentProposal) ToFitment(by string) *Fitment {
	return &Fitment{
		TenantID:        p.TenantID,
		PartID:          p.PartID,
		ItemStatus:      ItemStatusActive,
		Year:            p.Year,
		MakeName:        p.MakeName,
		ModelName:       p.ModelName,
		Submodel:        p.Submodel,
		DriveType:       p.DriveType,
		FuelType:        p.FuelType,
		NumDoors:        p.NumDoors,
		BodyType:        p.BodyType,
		Position:        p.Position,
		Quantity:        p.Quantity,
		UOM:             p.UOM,
		Title:           p.PartDescription,
		FitmentType:     FitmentTypeAI,
		ConfidenceScore: p.ConfidenceScore,
		AIDescription:   p.AIReasoning,
		AIReasoningRef:  p.UUID,
		DynamicFields:   p.DynamicFields,
		Auditable:       Auditable{CreatedBy: by, UpdatedBy: by},
	}
}
