package fitment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/ai"
)

type fakeFitmentRepo struct {
	created   map[string]*models.Fitment
	failParts map[string]bool
}

func newFakeFitmentRepo() *fakeFitmentRepo {
	return &fakeFitmentRepo{created: map[string]*models.Fitment{}, failParts: map[string]bool{}}
}

func (r *fakeFitmentRepo) seed(tenantID uint, partID string, year int, make, model, submodel string) {
	hash := models.FitmentHash(tenantID, partID, year, make, model, submodel)
	r.created[hash] = &models.Fitment{Hash: hash, TenantID: tenantID, PartID: partID}
}

func (r *fakeFitmentRepo) Create(f *models.Fitment) error {
	if r.failParts[f.PartID] {
		return errors.New("insert failed")
	}
	hash := models.FitmentHash(f.TenantID, f.PartID, f.Year, f.MakeName, f.ModelName, f.Submodel)
	if _, ok := r.created[hash]; ok {
		return errors.New("duplicate entry for key idx_fitments_live")
	}
	f.Hash = hash
	r.created[hash] = f
	return nil
}

func (r *fakeFitmentRepo) CreateBatch(fitments []*models.Fitment) error {
	for _, f := range fitments {
		hash := models.FitmentHash(f.TenantID, f.PartID, f.Year, f.MakeName, f.ModelName, f.Submodel)
		if _, ok := r.created[hash]; ok || r.failParts[f.PartID] {
			return errors.New("duplicate entry for key idx_fitments_live")
		}
	}
	for _, f := range fitments {
		if err := r.Create(f); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFitmentRepo) GetByHash(tenantID uint, hash string) (*models.Fitment, error) {
	if f, ok := r.created[hash]; ok {
		return f, nil
	}
	return nil, errors.New("record not found")
}

func (r *fakeFitmentRepo) GetByHashAny(tenantID uint, hash string) (*models.Fitment, error) {
	return r.GetByHash(tenantID, hash)
}

func (r *fakeFitmentRepo) ExistsLive(tenantID uint, partID string, year int, make, model, submodel string) (bool, error) {
	_, ok := r.created[models.FitmentHash(tenantID, partID, year, make, model, submodel)]
	return ok, nil
}

func (r *fakeFitmentRepo) List(tenantID uint, filter repository.FitmentFilter, offset, limit int) ([]models.Fitment, int64, error) {
	return nil, 0, nil
}

func (r *fakeFitmentRepo) Update(f *models.Fitment) error { return nil }

func (r *fakeFitmentRepo) SoftDelete(tenantID uint, hash, by string) error { return nil }

func (r *fakeFitmentRepo) SoftDeleteBulk(tenantID uint, hashes []string, by string) (int64, error) {
	return 0, nil
}

func (r *fakeFitmentRepo) CountByType(tenantID uint) (map[string]int64, error) { return nil, nil }

type fakeVCDBRepo struct {
	records []models.VCDBRecord
}

func (r *fakeVCDBRepo) Upsert(record *models.VCDBRecord) (bool, error) { return false, nil }

func (r *fakeVCDBRepo) GetByIDs(tenantID uint, ids []uint) ([]models.VCDBRecord, error) {
	want := map[uint]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.VCDBRecord{}
	for _, rec := range r.records {
		if rec.TenantID == tenantID && want[rec.ID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeVCDBRepo) List(tenantID uint, offset, limit int) ([]models.VCDBRecord, int64, error) {
	return r.records, int64(len(r.records)), nil
}

func (r *fakeVCDBRepo) Count(tenantID uint) (int64, error) { return int64(len(r.records)), nil }

func (r *fakeVCDBRepo) Sample(tenantID uint, limit int) ([]models.VCDBRecord, error) {
	if len(r.records) > limit {
		return r.records[:limit], nil
	}
	return r.records, nil
}

type fakeProductRepo struct {
	products map[string]*models.ProductRecord
}

func (r *fakeProductRepo) Upsert(record *models.ProductRecord) (bool, error) { return false, nil }

func (r *fakeProductRepo) GetByPartID(tenantID uint, partID string) (*models.ProductRecord, error) {
	if p, ok := r.products[partID]; ok {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (r *fakeProductRepo) List(tenantID uint, offset, limit int) ([]models.ProductRecord, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Count(tenantID uint) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Sample(tenantID uint, limit int) ([]models.ProductRecord, error) {
	out := []models.ProductRecord{}
	for _, p := range r.products {
		out = append(out, *p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeProposalRepo struct {
	stored []*models.AIFitmentProposal
}

func (r *fakeProposalRepo) CreateBatch(proposals []*models.AIFitmentProposal) error {
	r.stored = append(r.stored, proposals...)
	return nil
}

func (r *fakeProposalRepo) GetByUUID(tenantID uint, uuid string) (*models.AIFitmentProposal, error) {
	return nil, errors.New("record not found")
}

func (r *fakeProposalRepo) ListByStatus(tenantID uint, status string, sessionID *uint) ([]models.AIFitmentProposal, error) {
	return nil, nil
}

func (r *fakeProposalRepo) ListByUUIDs(tenantID uint, uuids []string) ([]models.AIFitmentProposal, error) {
	return nil, nil
}

func (r *fakeProposalRepo) Update(p *models.AIFitmentProposal) error { return nil }

type generatorFixture struct {
	gen       *Generator
	fitments  *fakeFitmentRepo
	proposals *fakeProposalRepo
}

func newGeneratorFixture() *generatorFixture {
	fitments := newFakeFitmentRepo()
	proposals := &fakeProposalRepo{}
	vcdb := &fakeVCDBRepo{records: []models.VCDBRecord{
		{ID: 1, TenantID: 1, Year: 2020, Make: "Ford", Model: "F-150", Submodel: "XLT", DriveType: "4WD", FuelType: "Gas", NumDoors: 4, BodyType: "Truck"},
		{ID: 2, TenantID: 1, Year: 2021, Make: "Toyota", Model: "Camry"},
	}}
	products := &fakeProductRepo{products: map[string]*models.ProductRecord{
		"P-1": {TenantID: 1, PartID: "P-1", Description: "Brake pad set", Category: "Brakes"},
		"P-2": {TenantID: 1, PartID: "P-2", Description: "Oil filter", Category: "Filters"},
	}}

	repos := &repository.Repositories{
		Fitment:  fitments,
		Proposal: proposals,
		VCDB:     vcdb,
		Product:  products,
	}
	return &generatorFixture{
		gen:       NewGenerator(repos, nil, ai.NewService(nil)),
		fitments:  fitments,
		proposals: proposals,
	}
}

func TestGenerateManualCartesian(t *testing.T) {
	fx := newGeneratorFixture()

	outcome, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1", "P-2"},
		CreatedBy:  "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, outcome.Created)
	assert.Equal(t, 0, outcome.Skipped)
	assert.Equal(t, models.JobStatusCompleted, outcome.Status)
	assert.Len(t, fx.fitments.created, 4)

	hash := models.FitmentHash(1, "P-2", 2021, "Toyota", "Camry", "")
	f, ok := fx.fitments.created[hash]
	require.True(t, ok)
	assert.Equal(t, models.FitmentTypeManual, f.FitmentType)
	assert.Equal(t, models.ItemStatusActive, f.ItemStatus)
	assert.Equal(t, DefaultPosition, f.Position)
	assert.Equal(t, DefaultQuantity, f.Quantity)
	assert.Equal(t, DefaultUOM, f.UOM)
	assert.Equal(t, DefaultFuelType, f.FuelType, "empty vehicle fuel type defaults")
	assert.Equal(t, DefaultNumDoors, f.NumDoors)
	assert.Equal(t, DefaultBodyType, f.BodyType)
	assert.Equal(t, "Oil filter", f.Title, "title falls back to the part description")
	assert.Equal(t, "tester", f.CreatedBy)
}

func TestGenerateManualVehicleAttributesWin(t *testing.T) {
	fx := newGeneratorFixture()

	_, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1},
		PartIDs:    []string{"P-1"},
		Position:   "Rear",
		Quantity:   2,
		Title:      "Custom kit",
	})
	require.NoError(t, err)

	hash := models.FitmentHash(1, "P-1", 2020, "Ford", "F-150", "XLT")
	f, ok := fx.fitments.created[hash]
	require.True(t, ok)
	assert.Equal(t, "Rear", f.Position)
	assert.Equal(t, 2, f.Quantity)
	assert.Equal(t, "Custom kit", f.Title)
	assert.Equal(t, "4WD", f.DriveType)
	assert.Equal(t, "Truck", f.BodyType)
}

func TestGenerateManualSkipsExistingPairs(t *testing.T) {
	fx := newGeneratorFixture()
	fx.fitments.seed(1, "P-1", 2020, "Ford", "F-150", "XLT")

	outcome, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1", "P-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Created)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, models.JobStatusCompletedWithWarnings, outcome.Status)
}

func TestGenerateManualAllDuplicates(t *testing.T) {
	fx := newGeneratorFixture()
	fx.fitments.seed(1, "P-1", 2020, "Ford", "F-150", "XLT")
	fx.fitments.seed(1, "P-1", 2021, "Toyota", "Camry", "")

	outcome, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Created)
	assert.Equal(t, 2, outcome.Skipped)
	assert.Equal(t, models.JobStatusFailed, outcome.Status)
	assert.Equal(t, "All fitments already exist.", outcome.Message)
}

func TestGenerateManualPartialInsertFailure(t *testing.T) {
	fx := newGeneratorFixture()
	fx.fitments.failParts["P-2"] = true

	outcome, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1", "P-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Created)
	assert.Equal(t, 2, outcome.Failed)
	assert.Equal(t, models.JobStatusCompletedWithWarnings, outcome.Status)
}

func TestGenerateManualUnknownPart(t *testing.T) {
	fx := newGeneratorFixture()

	_, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1},
		PartIDs:    []string{"NOPE"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestGenerateManualNoVehicles(t *testing.T) {
	fx := newGeneratorFixture()

	_, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{999},
		PartIDs:    []string{"P-1"},
	})
	require.Error(t, err)
}

func TestGenerateManualCancelled(t *testing.T) {
	fx := newGeneratorFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := fx.gen.GenerateManual(ctx, 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1", "P-2"},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, outcome)
	assert.Equal(t, models.JobStatusFailed, outcome.Status)
}

func TestGenerateManualProgressReported(t *testing.T) {
	fx := newGeneratorFixture()

	var calls []int
	_, err := fx.gen.GenerateManual(context.Background(), 1, ManualRequest{
		VehicleIDs: []uint{1, 2},
		PartIDs:    []string{"P-1", "P-2"},
		BatchSize:  2,
		Progress:   func(completed, total int) { calls = append(calls, completed) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, 4, calls[len(calls)-1])
}

func TestGenerateAIProposals(t *testing.T) {
	fx := newGeneratorFixture()

	proposals, err := fx.gen.GenerateAIProposals(context.Background(), 1, AIRequest{
		SessionID:    7,
		Instructions: "  focus on trucks  ",
		CreatedBy:    "tester",
	})
	require.NoError(t, err)
	require.NotEmpty(t, proposals)
	assert.Len(t, fx.proposals.stored, len(proposals))

	for _, p := range proposals {
		assert.Equal(t, uint(1), p.TenantID)
		assert.Equal(t, uint(7), p.SessionID)
		assert.Equal(t, models.ProposalStatusPending, p.Status)
		assert.Equal(t, DefaultUOM, p.UOM)
		assert.Equal(t, "focus on trucks", p.AIInstructionsUsed)
		assert.GreaterOrEqual(t, p.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, p.ConfidenceScore, 1.0)
		assert.Equal(t, "tester", p.CreatedBy)
	}
}

func TestGenerateAIProposalsUnknownPart(t *testing.T) {
	fx := newGeneratorFixture()

	_, err := fx.gen.GenerateAIProposals(context.Background(), 1, AIRequest{
		PartIDs: []string{"NOPE"},
	})
	require.Error(t, err)
}

func TestGenerateAIProposalsNoVehicles(t *testing.T) {
	fitments := newFakeFitmentRepo()
	repos := &repository.Repositories{
		Fitment:  fitments,
		Proposal: &fakeProposalRepo{},
		VCDB:     &fakeVCDBRepo{},
		Product: &fakeProductRepo{products: map[string]*models.ProductRecord{
			"P-1": {TenantID: 1, PartID: "P-1"},
		}},
	}
	gen := NewGenerator(repos, nil, ai.NewService(nil))

	_, err := gen.GenerateAIProposals(context.Background(), 1, AIRequest{})
	require.Error(t, err)
}

func TestOutcomeFinalize(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		status  string
		message string
	}{
		{"nothing generated", Outcome{}, models.JobStatusFailed, "No fitments were generated."},
		{"all duplicates", Outcome{Skipped: 3}, models.JobStatusFailed, "All fitments already exist."},
		{"all failed", Outcome{Failed: 2}, models.JobStatusFailed, "All 2 fitments failed to persist."},
		{"partial skips", Outcome{Created: 2, Skipped: 1}, models.JobStatusCompletedWithWarnings, "2 created, 1 skipped, 0 failed."},
		{"partial failures", Outcome{Created: 2, Failed: 1}, models.JobStatusCompletedWithWarnings, "2 created, 0 skipped, 1 failed."},
		{"clean", Outcome{Created: 5}, models.JobStatusCompleted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.outcome
			o.finalize()
			assert.Equal(t, tt.status, o.Status)
			assert.Equal(t, tt.message, o.Message)
		})
	}
}
