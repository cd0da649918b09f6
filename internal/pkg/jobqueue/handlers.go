package jobqueue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/env"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/metrics/counter"
	"github.com/mft-data/fitmenthub/internal/pkg/tabular"
	"github.com/mft-data/fitmenthub/internal/pkg/validation"
)

// Upload file targets within a session.
const (
	TargetVCDB     = "vcdb"
	TargetProducts = "products"
)

func batchSize() int {
	return env.GetEnvInt("JOB_BATCH_SIZE", 100)
}

// watchCancel cancels the returned context when a cooperative cancel flag
// appears for the job. The stop function must be called when the handler ends.
func (m *Manager) watchCancel(parent context.Context, jobUUID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if m.queue.CancelRequested(jobUUID) {
					cancel()
					return
				}
			}
		}
	}()
	return ctx, func() { close(done); cancel() }
}

// reportProgress heartbeats job progress. Writes are throttled to every
// tenth item or whole percent so large jobs do not hammer the database.
func (m *Manager) reportProgress(job *models.Job, completed, total int, step string) {
	if total <= 0 {
		return
	}
	percent := completed * 100 / total
	if percent > 100 {
		percent = 100
	}
	if completed-job.CompletedSteps < 10 && percent == job.Progress && step == job.CurrentStep {
		return
	}
	job.Progress = percent
	job.CurrentStep = step
	job.CompletedSteps = completed
	job.TotalSteps = total
	if err := m.deps.Repos.Job.UpdateProgress(job.ID, percent, step, completed); err != nil {
		log.Errorf("[JobQueue] Failed to report progress for job %s: %v", job.UUID, err)
	}
}

// loadSessionFile resolves the upload session and fetches the stored bytes of
// the requested file target.
func (m *Manager) loadSessionFile(job *models.Job, params map[string]interface{}) (*models.UploadSession, string, []byte, string, error) {
	sessionUUID := paramString(params, "session_uuid")
	target := paramString(params, "target")
	if target == "" {
		target = TargetVCDB
	}

	session, err := m.deps.Repos.Upload.GetByUUID(job.TenantID, sessionUUID)
	if err != nil {
		return nil, "", nil, "", fmt.Errorf("upload session %q not found", sessionUUID)
	}

	var ref, filename string
	switch target {
	case TargetVCDB:
		ref, filename = session.VCDBFileRef, session.VCDBFilename
	case TargetProducts:
		ref, filename = session.ProductsFileRef, session.ProductsFilename
	default:
		return nil, "", nil, "", fmt.Errorf("unknown file target %q", target)
	}
	if ref == "" {
		return nil, "", nil, "", fmt.Errorf("session has no %s file", target)
	}

	data, err := m.deps.Store.Load(context.Background(), ref)
	if err != nil {
		return nil, "", nil, "", fmt.Errorf("failed to load stored file: %w", err)
	}
	return session, target, data, filename, nil
}

// handleValidate parses and validates one uploaded file against the tenant's
// resolved schema, applies repairs, and upserts the surviving rows into the
// tenant-scoped store.
func (m *Manager) handleValidate(ctx context.Context, job *models.Job) error {
	ctx, stop := m.watchCancel(ctx, job.UUID)
	defer stop()

	params := job.Params.AsMap()
	session, target, data, filename, err := m.loadSessionFile(job, params)
	if err != nil {
		return err
	}

	if err := session.TransitionTo(models.UploadStatusProcessing); err == nil {
		_ = m.deps.Repos.Upload.Update(session)
	}

	parsed, err := tabular.Parse(data, filename)
	if err != nil {
		m.failSessionFile(session, target, err.Error())
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	referenceType := models.ReferenceProduct
	if target == TargetVCDB {
		referenceType = models.ReferenceVCDB
	}
	schema, err := m.deps.Registry.Resolve(job.TenantID, referenceType)
	if err != nil {
		return fmt.Errorf("failed to resolve field schema: %w", err)
	}

	report := validation.Validate(parsed.Stream, schema)
	rows := parsed.Stream.Rows()
	validation.ApplyRepairs(rows, report.Repairs)
	invalidRows := report.InvalidRows()

	created, updated, persisted := 0, 0, 0
	size := batchSize()
	for i, row := range rows {
		if i%size == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			m.reportProgress(job, i, len(rows), fmt.Sprintf("validating %s rows", target))
		}
		if invalidRows[i+1] {
			continue
		}

		var wasCreated bool
		var upsertErr error
		if target == TargetVCDB {
			wasCreated, upsertErr = m.deps.Repos.VCDB.Upsert(VCDBRecordFromRow(job.TenantID, row, filename))
		} else {
			wasCreated, upsertErr = m.deps.Repos.Product.Upsert(ProductRecordFromRow(job.TenantID, row, filename))
		}
		if upsertErr != nil {
			log.Errorf("[JobQueue] Row %d upsert failed: %v", i+1, upsertErr)
			report.Errors = append(report.Errors, validation.CellError{Row: i + 1, Column: "", Message: "failed to persist row"})
			continue
		}
		persisted++
		if wasCreated {
			created++
		} else {
			updated++
		}
	}
	m.reportProgress(job, len(rows), len(rows), "finalizing")

	if err := counter.AddRowsIngested(job.TenantID, persisted); err != nil {
		log.Warnf("[JobQueue] Failed to bump ingest counter for tenant %d: %v", job.TenantID, err)
	}
	m.updateSessionAfterValidation(session, target, report, persisted)

	result := map[string]interface{}{
		"rows":            report.RowCount,
		"persisted":       persisted,
		"created":         created,
		"updated":         updated,
		"invalid_rows":    len(invalidRows),
		"repaired_rows":   len(report.Repairs),
		"ignored_columns": report.IgnoredColumns,
		"field_status":    report.FieldStatus,
		"errors":          report.Errors,
	}

	status := models.JobStatusCompleted
	if len(report.Errors) > 0 || len(report.Repairs) > 0 {
		status = models.JobStatusCompletedWithWarnings
	}
	return finishWith(job, status, result, "")
}

func (m *Manager) updateSessionAfterValidation(session *models.UploadSession, target string, report *validation.Report, persisted int) {
	if target == TargetVCDB {
		session.VCDBValid = report.IsValid
		session.VCDBRecords = persisted
	} else {
		session.ProductsValid = report.IsValid
		session.ProductsRecords = persisted
	}
	if len(report.Errors) > 0 {
		session.ValidationErrors = models.JSONFrom(map[string]interface{}{
			target: report.Errors,
		})
	}

	vcdbDone := session.VCDBFileRef == "" || session.VCDBRecords > 0 || session.VCDBValid
	productsDone := session.ProductsFileRef == "" || session.ProductsRecords > 0 || session.ProductsValid
	if vcdbDone && productsDone {
		_ = session.TransitionTo(models.UploadStatusCompleted)
	}
	if err := m.deps.Repos.Upload.Update(session); err != nil {
		log.Errorf("[JobQueue] Failed to update session %s: %v", session.UUID, err)
	}
}

func (m *Manager) failSessionFile(session *models.UploadSession, target, message string) {
	session.ValidationErrors = models.JSONFrom(map[string]interface{}{
		target: []map[string]string{{"message": message}},
	})
	_ = session.TransitionTo(models.UploadStatusError)
	if err := m.deps.Repos.Upload.Update(session); err != nil {
		log.Errorf("[JobQueue] Failed to update session %s: %v", session.UUID, err)
	}
}

// handlePreflight parses the uploaded file without persisting anything and
// stores the preflight report on the session.
func (m *Manager) handlePreflight(ctx context.Context, job *models.Job) error {
	params := job.Params.AsMap()
	session, target, data, filename, err := m.loadSessionFile(job, params)
	if err != nil {
		return err
	}

	parsed, err := tabular.Parse(data, filename)
	if err != nil {
		m.failSessionFile(session, target, err.Error())
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	session.PreflightReport = models.JSONFrom(map[string]interface{}{
		target: parsed.Preflight,
	})
	if err := m.deps.Repos.Upload.Update(session); err != nil {
		return fmt.Errorf("failed to store preflight report: %w", err)
	}

	return finishWith(job, models.JobStatusCompleted, map[string]interface{}{
		"format":    parsed.Preflight.Format,
		"encoding":  parsed.Preflight.Encoding,
		"delimiter": parsed.Preflight.Delimiter,
		"headers":   parsed.Preflight.Headers,
		"issues":    parsed.Preflight.Issues,
		"rows":      parsed.Stream.Len(),
	}, "")
}

// handleManualFitment expands the selected vehicles against the selected
// parts into manual fitments.
func (m *Manager) handleManualFitment(ctx context.Context, job *models.Job) error {
	ctx, stop := m.watchCancel(ctx, job.UUID)
	defer stop()

	params := job.Params.AsMap()
	partIDs := paramStringSlice(params, "part_ids")
	if single := paramString(params, "part_id"); single != "" {
		partIDs = append(partIDs, single)
	}

	req := fitment.ManualRequest{
		VehicleIDs: paramUintSlice(params, "vehicle_ids"),
		PartIDs:    partIDs,
		Position:   paramString(params, "position"),
		Quantity:   paramInt(params, "quantity"),
		LiftHeight: paramString(params, "lift_height"),
		WheelType:  paramString(params, "wheel_type"),
		Title:      paramString(params, "title"),
		Notes:      paramString(params, "notes"),
		CreatedBy:  job.CreatedBy,
		JobUUID:    job.UUID,
		BatchSize:  batchSize(),
		Progress: func(completed, total int) {
			m.reportProgress(job, completed, total, "generating fitments")
		},
	}

	outcome, err := m.deps.Generator.GenerateManual(ctx, job.TenantID, req)
	if err != nil && outcome == nil {
		return err
	}
	if err == context.Canceled {
		return err
	}

	job.FitmentsCreated = outcome.Created
	job.FitmentsFailed = outcome.Failed
	return finishWith(job, outcome.Status, map[string]interface{}{
		"fitments_created": outcome.Created,
		"fitments_skipped": outcome.Skipped,
		"fitments_failed":  outcome.Failed,
	}, outcome.Message)
}

// handleAIFitment asks the suggestion service for pairings and stores them as
// pending proposals.
func (m *Manager) handleAIFitment(ctx context.Context, job *models.Job) error {
	params := job.Params.AsMap()

	instructions := paramString(params, "instructions")
	tenant, err := m.deps.Repos.Tenant.GetByID(job.TenantID)
	if err == nil && tenant.AIInstructions != "" {
		instructions = strings.TrimSpace(tenant.AIInstructions + "\n" + instructions)
	}

	var sessionID uint
	if job.SessionID != nil {
		sessionID = *job.SessionID
	}

	proposals, err := m.deps.Generator.GenerateAIProposals(ctx, job.TenantID, fitment.AIRequest{
		SessionID:    sessionID,
		JobID:        job.ID,
		JobUUID:      job.UUID,
		PartIDs:      paramStringSlice(params, "part_ids"),
		Instructions: instructions,
		CreatedBy:    job.CreatedBy,
	})
	if err != nil {
		return err
	}

	status := models.JobStatusCompleted
	msg := ""
	if len(proposals) == 0 {
		status = models.JobStatusCompletedWithWarnings
		msg = "No fitment suggestions were generated."
	}
	job.FitmentsCreated = len(proposals)
	return finishWith(job, status, map[string]interface{}{
		"proposals_created": len(proposals),
	}, msg)
}

// handlePublish promotes approved proposals into live fitments.
func (m *Manager) handlePublish(ctx context.Context, job *models.Job) error {
	result, err := m.deps.Review.Publish(job.TenantID, job.SessionID, job.CreatedBy)
	if err != nil {
		return err
	}

	status := models.JobStatusCompleted
	if len(result.Skipped) > 0 {
		status = models.JobStatusCompletedWithWarnings
	}
	job.FitmentsCreated = result.Promoted
	return finishWith(job, status, map[string]interface{}{
		"promoted": result.Promoted,
		"skipped":  result.Skipped,
	}, "")
}

// handleAIMap suggests a canonical column mapping for an uploaded file,
// ordered by the selected preset's attribute priorities when one is given.
func (m *Manager) handleAIMap(ctx context.Context, job *models.Job) error {
	params := job.Params.AsMap()
	_, _, data, filename, err := m.loadSessionFile(job, params)
	if err != nil {
		return err
	}

	parsed, err := tabular.Parse(data, filename)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	mapping := tabular.MappingSuggestions(parsed.Stream.Headers)

	result := map[string]interface{}{
		"mapping": mapping,
		"headers": parsed.Stream.Headers,
	}

	if presetUUID := paramString(params, "preset_id"); presetUUID != "" {
		preset, err := m.deps.Repos.Preset.GetByUUID(job.TenantID, presetUUID)
		if err != nil {
			log.Warnf("[JobQueue] Preset %s not found for ai-map job %s", presetUUID, job.UUID)
		} else {
			result["preset"] = preset.Name
			result["priorities"] = preset.Priorities.AsMap()
		}
	}

	return finishWith(job, models.JobStatusCompleted, result, "")
}

// handleVCDBSync re-checks the stored vehicle configurations against the
// current schema and reports drift. Runs quarterly per tenant.
func (m *Manager) handleVCDBSync(ctx context.Context, job *models.Job) error {
	ctx, stop := m.watchCancel(ctx, job.UUID)
	defer stop()

	schema, err := m.deps.Registry.Resolve(job.TenantID, models.ReferenceVCDB)
	if err != nil {
		return fmt.Errorf("failed to resolve field schema: %w", err)
	}
	required := schema.RequiredFields()

	total, err := m.deps.Repos.VCDB.Count(job.TenantID)
	if err != nil {
		return err
	}

	checked, drifted := 0, 0
	pageSize := 500
	for offset := 0; ; offset += pageSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, _, err := m.deps.Repos.VCDB.List(job.TenantID, offset, pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			checked++
			if vcdbRecordDrifts(&page[i], required) {
				drifted++
			}
		}
		m.reportProgress(job, checked, int(total), "checking vehicle configurations")
	}

	status := models.JobStatusCompleted
	msg := ""
	if drifted > 0 {
		status = models.JobStatusCompletedWithWarnings
		msg = fmt.Sprintf("%d vehicle configurations no longer satisfy the current schema.", drifted)
	}
	return finishWith(job, status, map[string]interface{}{
		"checked": checked,
		"drifted": drifted,
	}, msg)
}

// vcdbRecordDrifts reports whether a stored row is missing a now-required
// field.
func vcdbRecordDrifts(record *models.VCDBRecord, required []string) bool {
	dynamic := record.DynamicFields.AsMap()
	for _, name := range required {
		switch name {
		case "year":
			if record.Year == 0 {
				return true
			}
		case "make":
			if record.Make == "" {
				return true
			}
		case "model":
			if record.Model == "" {
				return true
			}
		case "submodel":
			if record.Submodel == "" {
				return true
			}
		case "drive_type":
			if record.DriveType == "" {
				return true
			}
		case "fuel_type":
			if record.FuelType == "" {
				return true
			}
		case "num_doors":
			if record.NumDoors == 0 {
				return true
			}
		case "body_type":
			if record.BodyType == "" {
				return true
			}
		default:
			if v, ok := dynamic[name]; !ok || v == "" {
				return true
			}
		}
	}
	return false
}

// handleCleanup deletes terminal AI jobs older than the retention window.
func (m *Manager) handleCleanup(ctx context.Context, job *models.Job) error {
	cutoff := time.Now().Add(-cleanupJobMaxAge)
	deleted, err := m.deps.Repos.Job.DeleteTerminalOlderThan(cutoff, []string{models.JobTypeAIFitment, models.JobTypeAIMap})
	if err != nil {
		return err
	}
	log.Infof("[JobQueue] Cleanup removed %d terminal AI jobs older than %s", deleted, cutoff.Format(time.RFC3339))
	return finishWith(job, models.JobStatusCompleted, map[string]interface{}{
		"deleted": deleted,
	}, "")
}
