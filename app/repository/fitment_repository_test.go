package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
)

func TestReviveFitment(t *testing.T) {
	deletedAt := time.Now().Add(-24 * time.Hour)
	hash := models.FitmentHash(1, "P-1", 2020, "Ford", "F-150", "XLT")

	existing := &models.Fitment{
		ID:          42,
		Hash:        hash,
		TenantID:    1,
		PartID:      "P-1",
		Year:        2020,
		MakeName:    "Ford",
		ModelName:   "F-150",
		Submodel:    "XLT",
		Position:    "Rear",
		Quantity:    2,
		Title:       "old title",
		FitmentType: models.FitmentTypeManual,
	}
	existing.CreatedBy = "alice"
	existing.IsDeleted = true
	existing.DeletedAt = &deletedAt
	existing.DeletedBy = "alice"

	incoming := &models.Fitment{
		TenantID:    1,
		PartID:      "P-1",
		Year:        2020,
		MakeName:    "Ford",
		ModelName:   "F-150",
		Submodel:    "XLT",
		Position:    "Front",
		Quantity:    1,
		Title:       "new title",
		FitmentType: models.FitmentTypeAI,
	}
	incoming.CreatedBy = "bob"

	reviveFitment(existing, incoming)

	assert.False(t, existing.IsDeleted)
	assert.Nil(t, existing.DeletedAt)
	require.NotNil(t, existing.LiveMarker)
	assert.True(t, *existing.LiveMarker)

	// identity and creation audit stay with the original row
	assert.Equal(t, uint(42), existing.ID)
	assert.Equal(t, hash, existing.Hash)
	assert.Equal(t, "alice", existing.CreatedBy)

	// attributes come from the incoming fitment
	assert.Equal(t, "Front", existing.Position)
	assert.Equal(t, 1, existing.Quantity)
	assert.Equal(t, "new title", existing.Title)
	assert.Equal(t, models.FitmentTypeAI, existing.FitmentType)
	assert.Equal(t, "bob", existing.UpdatedBy)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(errDuplicateMessage("Duplicate entry 'abc' for key 'idx_fitments_hash'")))
	assert.False(t, IsDuplicateKey(errDuplicateMessage("connection refused")))
}

type errDuplicateMessage string

func (e errDuplicateMessage) Error() string { return string(e) }
