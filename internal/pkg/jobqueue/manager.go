package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/cache"
	"github.com/mft-data/fitmenthub/internal/pkg/env"
	"github.com/mft-data/fitmenthub/internal/pkg/fieldconfig"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/lineage"
	"github.com/mft-data/fitmenthub/internal/pkg/review"
	"github.com/mft-data/fitmenthub/internal/pkg/storage"
)

// Scheduler cadences.
const (
	vcdbSyncInterval  = 90 * 24 * time.Hour
	cleanupInterval   = 24 * time.Hour
	cleanupJobMaxAge  = 30 * 24 * time.Hour
	schedulerTickRate = 1 * time.Hour

	lastSyncCacheKey = "scheduler:last_vcdb_sync"
)

// Deps carries everything the job handlers need.
type Deps struct {
	Repos     *repository.Repositories
	Registry  *fieldconfig.Registry
	Store     storage.ObjectStore
	Generator *fitment.Generator
	Review    *review.Service
	Lineage   *lineage.Recorder
}

// Manager owns the queue, the handler registrations and the periodic
// scheduler for VCDB sync and job cleanup.
type Manager struct {
	queue   *Queue
	deps    Deps
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// Initialize wires the global manager. Must be called once before GetManager.
func Initialize(deps Deps) *Manager {
	managerOnce.Do(func() {
		workers := env.GetEnvInt("JOB_WORKERS", 5)
		m := &Manager{
			queue:  NewQueue(workers, deps.Repos.Job),
			deps:   deps,
			stopCh: make(chan struct{}),
		}
		m.registerHandlers()
		globalManager = m
	})
	return globalManager
}

// GetManager returns the global manager. Panics when Initialize was skipped.
func GetManager() *Manager {
	if globalManager == nil {
		panic("jobqueue: Initialize must be called before GetManager")
	}
	return globalManager
}

// GetQueue returns the managed queue.
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

func (m *Manager) registerHandlers() {
	m.queue.Register(models.JobTypeValidateCSV, m.handleValidate)
	m.queue.Register(models.JobTypePreflight, m.handlePreflight)
	m.queue.Register(models.JobTypeManualFitment, m.handleManualFitment)
	m.queue.Register(models.JobTypeAIFitment, m.handleAIFitment)
	m.queue.Register(models.JobTypePublish, m.handlePublish)
	m.queue.Register(models.JobTypeAIMap, m.handleAIMap)
	m.queue.Register(models.JobTypeVCDBSync, m.handleVCDBSync)
	m.queue.Register(models.JobTypeCleanup, m.handleCleanup)
}

// Start starts the queue workers and the scheduler.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and scheduler")

	m.queue.Start()

	m.wg.Add(1)
	go m.schedulerWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the scheduler and the queue.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	log.Info("[JobQueue Manager] Stopping...")
	close(m.stopCh)
	m.running = false
	m.wg.Wait()
	m.queue.Stop()
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning reports whether the manager is started.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Submit persists the job and pushes it for dispatch. When the dispatch push
// fails the job runs inline in a goroutine so redis outages degrade to
// slower request-side execution instead of silent loss.
func (m *Manager) Submit(job *models.Job) error {
	if err := m.deps.Repos.Job.Create(job); err != nil {
		return err
	}

	if err := m.queue.Push(job.UUID); err != nil {
		log.Warnf("[JobQueue Manager] Dispatch failed for job %s, executing inline: %v", job.UUID, err)
		if m.deps.Lineage != nil {
			m.deps.Lineage.Record(job.TenantID, models.LineageEntityJob, job.UUID, "", "", map[string]interface{}{
				"dispatch": "inline",
			})
		}
		go m.queue.Execute(context.Background(), job)
	}
	return nil
}

// RequestCancel cancels a queued job or flags a processing one.
func (m *Manager) RequestCancel(tenantID uint, jobUUID string) error {
	return m.queue.RequestCancel(tenantID, jobUUID)
}

// schedulerWorker triggers the quarterly VCDB sync and the daily cleanup of
// old terminal AI jobs.
func (m *Manager) schedulerWorker() {
	defer m.wg.Done()
	ticker := time.NewTicker(schedulerTickRate)
	defer ticker.Stop()

	var lastCleanup time.Time

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Scheduler stopping")
			return
		case <-ticker.C:
			if m.vcdbSyncDue() {
				m.submitScheduled(models.JobTypeVCDBSync, 3)
				m.markVCDBSyncRun()
			}
			if time.Since(lastCleanup) >= cleanupInterval {
				m.submitScheduled(models.JobTypeCleanup, 0)
				lastCleanup = time.Now()
			}
		}
	}
}

func (m *Manager) submitScheduled(jobType string, maxRetries int) {
	tenants, err := m.deps.Repos.Tenant.List()
	if err != nil {
		log.Errorf("[JobQueue Manager] Failed to list tenants for scheduled %s: %v", jobType, err)
		return
	}
	for _, t := range tenants {
		if !t.IsActive {
			continue
		}
		job := &models.Job{
			TenantID:   t.ID,
			JobType:    jobType,
			Status:     models.JobStatusQueued,
			MaxRetries: maxRetries,
			CreatedBy:  "scheduler",
		}
		if err := m.Submit(job); err != nil {
			log.Errorf("[JobQueue Manager] Failed to submit scheduled %s for tenant %d: %v", jobType, t.ID, err)
		}
		if jobType == models.JobTypeCleanup {
			// cleanup sweeps all tenants in one pass
			return
		}
	}
}

// vcdbSyncDue checks the cached timestamp of the last sync run. A missing or
// unreadable timestamp means a sync is due.
func (m *Manager) vcdbSyncDue() bool {
	raw, err := cache.Get(lastSyncCacheKey)
	if err != nil || raw == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	return time.Since(last) >= vcdbSyncInterval
}

func (m *Manager) markVCDBSyncRun() {
	if err := cache.Set(lastSyncCacheKey, time.Now().Format(time.RFC3339), 0); err != nil {
		log.Errorf("[JobQueue Manager] Failed to record sync timestamp: %v", err)
	}
}
