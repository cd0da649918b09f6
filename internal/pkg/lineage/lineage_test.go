package lineage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
)

type fakeLineageRepo struct {
	entries   []*models.Lineage
	appendErr error
}

func (r *fakeLineageRepo) Append(l *models.Lineage) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, l)
	return nil
}

func (r *fakeLineageRepo) ByEntity(tenantID uint, entityType, entityID string) ([]models.Lineage, error) {
	out := []models.Lineage{}
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func TestRecorderChain(t *testing.T) {
	repo := &fakeLineageRepo{}
	rec := NewRecorder(repo)

	rec.RecordUpload(1, "session-1", "s3://bucket/file.csv", nil)
	rec.RecordJob(1, "job-1", "session-1", nil)
	rec.RecordProposal(1, "prop-1", "job-1", map[string]interface{}{"confidence": 0.8})
	rec.RecordFitmentFromProposal(1, "hash-1", "prop-1", nil)

	require.Len(t, repo.entries, 4)

	edges, err := rec.Trace(1, models.LineageEntityFitment, "hash-1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, models.LineageEntityProposal, edges[0].ParentEntityType)
	assert.Equal(t, "prop-1", edges[0].ParentEntityID)

	edges, err = rec.Trace(1, models.LineageEntityProposal, "prop-1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "job-1", edges[0].ParentEntityID)
	assert.Equal(t, 0.8, edges[0].Meta.AsMap()["confidence"])
}

func TestRecorderSwallowsWriteFailures(t *testing.T) {
	repo := &fakeLineageRepo{appendErr: errors.New("db down")}
	rec := NewRecorder(repo)

	// must not panic or propagate
	rec.RecordFitmentFromJob(1, "hash-1", "job-1", nil)
	assert.Empty(t, repo.entries)
}

func TestRecorderTenantScoping(t *testing.T) {
	repo := &fakeLineageRepo{}
	rec := NewRecorder(repo)

	rec.RecordJob(1, "job-1", "session-1", nil)
	rec.RecordJob(2, "job-1", "session-9", nil)

	edges, err := rec.Trace(1, models.LineageEntityJob, "job-1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "session-1", edges[0].ParentEntityID)
}
