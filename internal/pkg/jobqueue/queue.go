// Package jobqueue runs background jobs. Job records live in MySQL as the
// source of truth; redis lists only carry dispatch, so a lost redis entry can
// always be recovered from the database row.
package jobqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/cache"
	"github.com/mft-data/fitmenthub/internal/pkg/metrics/counter"
)

const (
	// Redis keys
	JobQueueKey      = "fitment_jobs"
	JobProcessingKey = "fitment_jobs_processing"
	cancelKeyPrefix  = "job:cancel:"

	cancelFlagTTL = 24 * time.Hour
)

// Retry backoff for the scheduled VCDB sync, indexed by retry count.
var vcdbSyncBackoff = []time.Duration{60 * time.Second, 120 * time.Second, 240 * time.Second}

// HandlerFunc executes one job. A handler may finish the job itself (setting
// a terminal status via job.Finish); otherwise the queue finalizes it from the
// returned error.
type HandlerFunc func(ctx context.Context, job *models.Job) error

// Queue dispatches persisted jobs through redis to a local worker pool.
type Queue struct {
	client     *redis.Client
	jobs       repository.JobRepository
	handlers   map[string]HandlerFunc
	workers    int
	workerPool chan struct{}
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a job queue with the given worker count.
func NewQueue(workers int, jobs repository.JobRepository) *Queue {
	if workers <= 0 {
		workers = 3
	}
	return &Queue{
		client:     cache.GetClient(),
		jobs:       jobs,
		handlers:   map[string]HandlerFunc{},
		workers:    workers,
		workerPool: make(chan struct{}, workers),
		stopCh:     make(chan struct{}),
	}
}

// Register binds a handler to a job type. Must be called before Start.
func (q *Queue) Register(jobType string, handler HandlerFunc) {
	q.handlers[jobType] = handler
}

// Start starts the worker pool and the stuck-job sweeper.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.workerPool <- struct{}{}
	}
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.wg.Add(1)
	go q.stuckSweeper(10*time.Minute, 1*time.Minute)
}

// Stop stops the workers and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

// Push enqueues an already-persisted job for dispatch.
func (q *Queue) Push(jobUUID string) error {
	return q.client.LPush(context.Background(), JobQueueKey, jobUUID).Err()
}

// RequestCancel flags a job for cancellation. Queued jobs cancel immediately
// through the database; processing jobs observe the redis flag between
// batches.
func (q *Queue) RequestCancel(tenantID uint, jobUUID string) error {
	if err := q.jobs.Cancel(tenantID, jobUUID); err == nil {
		return nil
	}
	job, err := q.jobs.GetByUUID(tenantID, jobUUID)
	if err != nil {
		return fmt.Errorf("job not found")
	}
	if job.IsTerminal() {
		return fmt.Errorf("job already %s", job.Status)
	}
	return q.client.Set(context.Background(), cancelKeyPrefix+jobUUID, "1", cancelFlagTTL).Err()
}

// CancelRequested reports whether a cooperative cancel flag is set.
func (q *Queue) CancelRequested(jobUUID string) bool {
	v, err := q.client.Exists(context.Background(), cancelKeyPrefix+jobUUID).Result()
	return err == nil && v > 0
}

// worker pulls job UUIDs from the dispatch list and executes them.
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[JobQueue] Worker %d started", id)

	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Infof("[JobQueue] Worker %d stopping", id)
			return
		default:
			<-q.workerPool

			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[JobQueue] Worker %d: dequeue error: %v", id, err)
				}
				q.workerPool <- struct{}{}
				time.Sleep(time.Second)
				continue
			}

			if job != nil {
				log.Infof("[JobQueue] Worker %d processing job %s (type=%s)", id, job.UUID, job.JobType)
				q.Execute(ctx, job)
				q.removeFromProcessing(ctx, job.UUID)
			}

			q.workerPool <- struct{}{}
		}
	}
}

// dequeueJob atomically moves one UUID from pending to processing and loads
// the authoritative row from the database.
func (q *Queue) dequeueJob(ctx context.Context) (*models.Job, error) {
	jobUUID, err := q.client.BRPopLPush(ctx, JobQueueKey, JobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	job, err := q.jobs.GetByUUIDAny(jobUUID)
	if err != nil {
		q.removeFromProcessing(ctx, jobUUID)
		return nil, fmt.Errorf("job record not found for %s", jobUUID)
	}
	if job.Status != models.JobStatusQueued {
		// cancelled or already picked up elsewhere
		q.removeFromProcessing(ctx, jobUUID)
		return nil, redis.Nil
	}
	return job, nil
}

// Execute runs one job through its registered handler and finalizes the
// database record. Exported so the dispatcher can fall back to inline
// execution when redis is unavailable.
func (q *Queue) Execute(ctx context.Context, job *models.Job) {
	handler, ok := q.handlers[job.JobType]
	if !ok {
		_ = job.Finish(models.JobStatusFailed, nil, fmt.Sprintf("unknown job type %q", job.JobType))
		q.persist(job)
		return
	}

	job.MarkProcessing()
	q.persist(job)

	err := handler(ctx, job)

	if q.CancelRequested(job.UUID) && !job.IsTerminal() {
		_ = job.Finish(models.JobStatusCancelled, nil, "cancelled by request")
		q.persist(job)
		q.clearCancelFlag(job.UUID)
		return
	}

	switch {
	case job.IsTerminal():
		// handler decided the outcome
	case err != nil && job.JobType == models.JobTypeVCDBSync && job.RetryCount < job.MaxRetries:
		q.scheduleRetry(job, err)
		return
	case err != nil:
		log.Errorf("[JobQueue] Job %s failed: %v", job.UUID, err)
		_ = job.Finish(models.JobStatusFailed, nil, err.Error())
	default:
		_ = job.Finish(models.JobStatusCompleted, nil, "")
	}
	q.persist(job)
	q.clearCancelFlag(job.UUID)

	if err := counter.AddJobProcessed(job.TenantID); err != nil {
		log.Warnf("[JobQueue] Failed to bump processed counter for tenant %d: %v", job.TenantID, err)
	}
	if job.FitmentsCreated > 0 {
		_ = counter.AddFitmentsCreated(job.TenantID, job.FitmentsCreated)
	}
}

// scheduleRetry re-queues a failed sync job after its backoff delay.
func (q *Queue) scheduleRetry(job *models.Job, cause error) {
	delay := vcdbSyncBackoff[len(vcdbSyncBackoff)-1]
	if job.RetryCount < len(vcdbSyncBackoff) {
		delay = vcdbSyncBackoff[job.RetryCount]
	}
	job.RetryCount++
	job.Status = models.JobStatusQueued
	job.ErrorMessage = cause.Error()
	q.persist(job)

	log.Warnf("[JobQueue] Retrying job %s in %s (attempt %d/%d)", job.UUID, delay, job.RetryCount, job.MaxRetries)
	time.AfterFunc(delay, func() {
		if err := q.Push(job.UUID); err != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", job.UUID, err)
		}
	})
}

func (q *Queue) persist(job *models.Job) {
	if err := q.jobs.Update(job); err != nil {
		log.Errorf("[JobQueue] Failed to persist job %s: %v", job.UUID, err)
	}
}

func (q *Queue) removeFromProcessing(ctx context.Context, jobUUID string) {
	if err := q.client.LRem(ctx, JobProcessingKey, 1, jobUUID).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to remove job %s from processing list: %v", jobUUID, err)
	}
}

func (q *Queue) clearCancelFlag(jobUUID string) {
	_ = q.client.Del(context.Background(), cancelKeyPrefix+jobUUID).Err()
}

// stuckSweeper requeues jobs whose worker died mid-run. The database row is
// authoritative: entries whose row is terminal are dropped from the
// processing list, rows stuck in processing past maxAge go back to queued.
func (q *Queue) stuckSweeper(maxAge, interval time.Duration) {
	defer q.wg.Done()
	log.Infof("[JobQueue] Stuck sweeper running (maxAge=%s, interval=%s)", maxAge, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			log.Info("[JobQueue] Stuck sweeper stopping")
			return
		case <-ticker.C:
			ids, err := q.client.LRange(ctx, JobProcessingKey, 0, -1).Result()
			if err != nil {
				log.Errorf("[JobQueue] Sweeper LRange error: %v", err)
				continue
			}
			now := time.Now()
			for _, id := range ids {
				job, err := q.jobs.GetByUUIDAny(id)
				if err != nil {
					q.removeFromProcessing(ctx, id)
					continue
				}
				if job.IsTerminal() {
					q.removeFromProcessing(ctx, id)
					continue
				}
				if job.Status != models.JobStatusProcessing {
					continue
				}
				started := job.StartedAt
				if started == nil {
					started = &job.CreatedAt
				}
				if now.Sub(*started) > maxAge {
					log.Warnf("[JobQueue] Recovering stuck job %s (type=%s), age=%s", job.UUID, job.JobType, now.Sub(*started))
					job.Status = models.JobStatusQueued
					job.ErrorMessage = "recovered by sweeper"
					q.persist(job)
					q.removeFromProcessing(ctx, id)
					_ = q.client.RPush(ctx, JobQueueKey, id).Err()
				}
			}
		}
	}
}

// PendingSize returns the number of queued dispatch entries.
func (q *Queue) PendingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

// ProcessingSize returns the number of in-flight dispatch entries.
func (q *Queue) ProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobProcessingKey).Result()
}
