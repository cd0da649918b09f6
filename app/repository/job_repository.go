package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
)

// jobRepository implements the JobRepository interface
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.Job) error {
	if job.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Create(job).Error
}

func (r *jobRepository) GetByUUID(tenantID uint, uuid string) (*models.Job, error) {
	if tenantID == 0 {
		return nil, ErrTenantRequired
	}
	var job models.Job
	err := r.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetByUUIDAny is the worker-side fetch; workers receive only the job UUID
// from the queue and resolve the tenant from the record itself.
func (r *jobRepository) GetByUUIDAny(uuid string) (*models.Job, error) {
	var job models.Job
	err := r.db.Where("uuid = ?", uuid).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) List(tenantID uint, jobType string, offset, limit int) ([]models.Job, int64, error) {
	if tenantID == 0 {
		return nil, 0, ErrTenantRequired
	}
	q := r.db.Model(&models.Job{}).Where("tenant_id = ?", tenantID)
	if jobType != "" {
		q = q.Where("job_type = ?", jobType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var jobs []models.Job
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error
	return jobs, total, err
}

func (r *jobRepository) Update(job *models.Job) error {
	if job.TenantID == 0 {
		return ErrTenantRequired
	}
	return r.db.Save(job).Error
}

// UpdateProgress writes only the progress columns, keeping the heartbeat cheap
// relative to row processing.
func (r *jobRepository) UpdateProgress(jobID uint, progress int, currentStep string, completedSteps int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return r.db.Model(&models.Job{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"progress":        progress,
			"current_step":    currentStep,
			"completed_steps": completedSteps,
		}).Error
}

// Cancel transitions a queued job to cancelled. Jobs already processing
// observe the cooperative cancel flag between batches instead.
func (r *jobRepository) Cancel(tenantID uint, uuid string) error {
	if tenantID == 0 {
		return ErrTenantRequired
	}
	res := r.db.Model(&models.Job{}).
		Where("tenant_id = ? AND uuid = ? AND status = ?", tenantID, uuid, models.JobStatusQueued).
		Updates(map[string]interface{}{
			"status":      models.JobStatusCancelled,
			"finished_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s is not cancellable", uuid)
	}
	return nil
}

// DeleteTerminalOlderThan removes terminal jobs of the given types finished
// before the cutoff. Used by the 30-day cleanup sweep.
func (r *jobRepository) DeleteTerminalOlderThan(cutoff time.Time, jobTypes []string) (int64, error) {
	q := r.db.Where("finished_at IS NOT NULL AND finished_at < ?", cutoff).
		Where("status IN ?", []string{
			models.JobStatusCompleted,
			models.JobStatusCompletedWithWarnings,
			models.JobStatusFailed,
			models.JobStatusCancelled,
		})
	if len(jobTypes) > 0 {
		q = q.Where("job_type IN ?", jobTypes)
	}
	res := q.Delete(&models.Job{})
	return res.RowsAffected, res.Error
}
