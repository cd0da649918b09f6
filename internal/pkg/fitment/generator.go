// Package fitment turns validated vehicle and product data into fitment rows
// and AI proposals. All writes go through the tenant-scoped repositories.
package fitment

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/ai"
	"github.com/mft-data/fitmenthub/internal/pkg/lineage"
)

// Install-attribute defaults applied when neither the request nor the vehicle
// row provides a value.
const (
	DefaultPosition = "Front"
	DefaultQuantity = 1
	DefaultUOM      = "EA"
	DefaultFuelType = "Gas"
	DefaultNumDoors = 4
	DefaultBodyType = "Sedan"
)

const defaultBatchSize = 100

// ProgressFunc receives generation heartbeats: completed pairs out of total.
type ProgressFunc func(completed, total int)

// Outcome summarizes one generation run. Status follows the job status
// vocabulary.
type Outcome struct {
	Created int    `json:"fitments_created"`
	Skipped int    `json:"fitments_skipped"`
	Failed  int    `json:"fitments_failed"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ManualRequest selects the vehicles and parts to pair, plus optional
// overrides for the install attributes.
type ManualRequest struct {
	VehicleIDs []uint
	PartIDs    []string
	Position   string
	Quantity   int
	LiftHeight string
	WheelType  string
	Title      string
	Notes      string
	CreatedBy  string
	JobUUID    string
	BatchSize  int
	Progress   ProgressFunc
}

// Generator builds fitments and proposals for one tenant at a time.
type Generator struct {
	fitments  repository.FitmentRepository
	proposals repository.ProposalRepository
	vcdb      repository.VCDBRepository
	products  repository.ProductRepository
	lineage   *lineage.Recorder
	ai        *ai.Service
}

// NewGenerator wires the generator over its repositories and the AI service.
func NewGenerator(repos *repository.Repositories, recorder *lineage.Recorder, aiService *ai.Service) *Generator {
	return &Generator{
		fitments:  repos.Fitment,
		proposals: repos.Proposal,
		vcdb:      repos.VCDB,
		products:  repos.Product,
		lineage:   recorder,
		ai:        aiService,
	}
}

// GenerateManual creates the cartesian product of the selected vehicles and
// parts as manual fitments. Pairs whose logical key is already live are
// skipped, individual insert failures are counted, and the run itself only
// errors when its inputs cannot be loaded.
func (g *Generator) GenerateManual(ctx context.Context, tenantID uint, req ManualRequest) (*Outcome, error) {
	vehicles, err := g.vcdb.GetByIDs(tenantID, req.VehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle configurations: %w", err)
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("no matching vehicle configurations found")
	}

	products := make([]*models.ProductRecord, 0, len(req.PartIDs))
	for _, partID := range req.PartIDs {
		p, err := g.products.GetByPartID(tenantID, partID)
		if err != nil {
			return nil, fmt.Errorf("unknown part %q", partID)
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no parts selected")
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	total := len(vehicles) * len(products)
	outcome := &Outcome{}
	batch := make([]*models.Fitment, 0, batchSize)
	completed := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		g.insertBatch(tenantID, batch, req.JobUUID, outcome)
		batch = batch[:0]
		if req.Progress != nil {
			req.Progress(completed, total)
		}
	}

	for _, p := range products {
		for i := range vehicles {
			select {
			case <-ctx.Done():
				flush()
				outcome.finalize()
				return outcome, ctx.Err()
			default:
			}

			batch = append(batch, g.buildManualFitment(tenantID, p, &vehicles[i], req))
			completed++
			if len(batch) >= batchSize {
				flush()
			}
		}
	}
	flush()

	outcome.finalize()
	return outcome, nil
}

// buildManualFitment maps one part-vehicle pair to a fitment row, filling
// missing vehicle attributes with the documented defaults.
func (g *Generator) buildManualFitment(tenantID uint, p *models.ProductRecord, v *models.VCDBRecord, req ManualRequest) *models.Fitment {
	position := req.Position
	if position == "" {
		position = DefaultPosition
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = DefaultQuantity
	}
	fuelType := v.FuelType
	if fuelType == "" {
		fuelType = DefaultFuelType
	}
	numDoors := v.NumDoors
	if numDoors == 0 {
		numDoors = DefaultNumDoors
	}
	bodyType := v.BodyType
	if bodyType == "" {
		bodyType = DefaultBodyType
	}
	title := req.Title
	if title == "" {
		title = p.Description
	}

	return &models.Fitment{
		TenantID:    tenantID,
		PartID:      p.PartID,
		ItemStatus:  models.ItemStatusActive,
		Year:        v.Year,
		MakeName:    v.Make,
		ModelName:   v.Model,
		Submodel:    v.Submodel,
		DriveType:   v.DriveType,
		FuelType:    fuelType,
		NumDoors:    numDoors,
		BodyType:    bodyType,
		UOM:         DefaultUOM,
		Quantity:    quantity,
		Title:       title,
		Notes:       req.Notes,
		Position:    position,
		LiftHeight:  req.LiftHeight,
		WheelType:   req.WheelType,
		FitmentType: models.FitmentTypeManual,
		Auditable:   models.Auditable{CreatedBy: req.CreatedBy, UpdatedBy: req.CreatedBy},
	}
}

// insertBatch tries one batch insert and degrades to per-row inserts when the
// batch hits a duplicate, so one existing pair never sinks its neighbors.
func (g *Generator) insertBatch(tenantID uint, batch []*models.Fitment, jobUUID string, outcome *Outcome) {
	if err := g.fitments.CreateBatch(batch); err == nil {
		outcome.Created += len(batch)
		g.recordBatchLineage(tenantID, batch, jobUUID)
		return
	}

	for _, f := range batch {
		err := g.fitments.Create(f)
		switch {
		case err == nil:
			outcome.Created++
			if g.lineage != nil && jobUUID != "" {
				g.lineage.RecordFitmentFromJob(tenantID, f.Hash, jobUUID, nil)
			}
		case repository.IsDuplicateKey(err):
			outcome.Skipped++
		default:
			outcome.Failed++
			log.Errorf("[Fitment] Failed to insert %s for %d %s %s: %v", f.PartID, f.Year, f.MakeName, f.ModelName, err)
		}
	}
}

func (g *Generator) recordBatchLineage(tenantID uint, batch []*models.Fitment, jobUUID string) {
	if g.lineage == nil || jobUUID == "" {
		return
	}
	for _, f := range batch {
		g.lineage.RecordFitmentFromJob(tenantID, f.Hash, jobUUID, nil)
	}
}

// finalize derives the run status from the counters. A run that created
// nothing failed; skips and per-row failures alongside successes downgrade to
// completed_with_warnings.
func (o *Outcome) finalize() {
	switch {
	case o.Created == 0 && o.Skipped == 0 && o.Failed == 0:
		o.Status = models.JobStatusFailed
		o.Message = "No fitments were generated."
	case o.Created == 0 && o.Skipped > 0 && o.Failed == 0:
		o.Status = models.JobStatusFailed
		o.Message = "All fitments already exist."
	case o.Created == 0:
		o.Status = models.JobStatusFailed
		o.Message = fmt.Sprintf("All %d fitments failed to persist.", o.Failed)
	case o.Skipped > 0 || o.Failed > 0:
		o.Status = models.JobStatusCompletedWithWarnings
		o.Message = fmt.Sprintf("%d created, %d skipped, %d failed.", o.Created, o.Skipped, o.Failed)
	default:
		o.Status = models.JobStatusCompleted
	}
}
