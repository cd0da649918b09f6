package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job kinds handled by the queue.
const (
	JobTypeValidateCSV   = "validate-csv"
	JobTypeManualFitment = "manual-fitment"
	JobTypeAIFitment     = "ai-fitment"
	JobTypePublish       = "publish"
	JobTypePreflight     = "preflight"
	JobTypeAIMap         = "ai-map"
	JobTypeVCDBSync      = "vcdb-sync"
	JobTypeCleanup       = "cleanup"
)

// Job statuses. completed, completed_with_warnings, failed and cancelled are
// terminal.
const (
	JobStatusQueued                = "queued"
	JobStatusProcessing            = "processing"
	JobStatusCompleted             = "completed"
	JobStatusCompletedWithWarnings = "completed_with_warnings"
	JobStatusFailed                = "failed"
	JobStatusCancelled             = "cancelled"
)

// Job is the persisted record of one background unit of work. MySQL is the
// source of truth; the redis queue carries dispatch only.
type Job struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	UUID            string     `gorm:"type:char(36);uniqueIndex;not null" json:"id"`
	TenantID        uint       `gorm:"index;not null" json:"tenant_id"`
	Tenant          Tenant     `gorm:"foreignKey:TenantID" json:"-"`
	SessionID       *uint      `gorm:"index" json:"session_id,omitempty"`
	JobType         string     `gorm:"type:varchar(30);not null;index" json:"job_type"`
	Status          string     `gorm:"type:varchar(30);default:'queued';index" json:"status"`
	Params          JSON       `gorm:"type:json" json:"params"`
	Result          JSON       `gorm:"type:json" json:"result"`
	Progress        int        `gorm:"default:0" json:"progress"`
	CurrentStep     string     `gorm:"type:varchar(255)" json:"current_step"`
	TotalSteps      int        `gorm:"default:0" json:"total_steps"`
	CompletedSteps  int        `gorm:"default:0" json:"completed_steps"`
	FitmentsCreated int        `gorm:"default:0" json:"fitments_created"`
	FitmentsFailed  int        `gorm:"default:0" json:"fitments_failed"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	RetryCount      int        `gorm:"default:0" json:"retry_count"`
	MaxRetries      int        `gorm:"default:0" json:"max_retries"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	StartedAt       *time.Time `gorm:"type:datetime" json:"started_at,omitempty"`
	FinishedAt      *time.Time `gorm:"type:datetime" json:"finished_at,omitempty"`
	CreatedBy       string     `gorm:"type:varchar(255)" json:"created_by"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.UUID == "" {
		j.UUID = uuid.New().String()
	}
	return nil
}

// IsTerminal reports whether the job reached a final status.
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusCompletedWithWarnings, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// MarkProcessing transitions the job to processing and stamps started_at.
func (j *Job) MarkProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.StartedAt = &now
}

// Finish transitions the job to a terminal status with its result document.
func (j *Job) Finish(status string, result JSON, errMsg string) error {
	switch status {
	case JobStatusCompleted, JobStatusCompletedWithWarnings, JobStatusFailed, JobStatusCancelled:
	default:
		return fmt.Errorf("%q is not a terminal job status", status)
	}
	now := time.Now()
	j.Status = status
	j.FinishedAt = &now
	if result != nil {
		j.Result = result
	}
	j.ErrorMessage = errMsg
	if status != JobStatusFailed {
		// keep the last error for failed jobs only
		if errMsg == "" {
			j.ErrorMessage = ""
		}
	}
	j.Progress = 100
	return nil
}

// IsRetryable reports whether a failed job may be re-run. Only the scheduled
// VCDB sync retries automatically.
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.JobType == JobTypeVCDBSync && j.RetryCount < j.MaxRetries
}
