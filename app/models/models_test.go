package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitmentHashNormalization(t *testing.T) {
	base := FitmentHash(1, "P-100", 2020, "Ford", "F-150", "XLT")
	assert.Len(t, base, 64)

	tests := []struct {
		name string
		hash string
		same bool
	}{
		{"case folded", FitmentHash(1, "p-100", 2020, "FORD", "f-150", "xlt"), true},
		{"whitespace trimmed", FitmentHash(1, " P-100 ", 2020, " Ford", "F-150 ", " XLT "), true},
		{"different tenant", FitmentHash(2, "P-100", 2020, "Ford", "F-150", "XLT"), false},
		{"different part", FitmentHash(1, "P-101", 2020, "Ford", "F-150", "XLT"), false},
		{"different year", FitmentHash(1, "P-100", 2021, "Ford", "F-150", "XLT"), false},
		{"different submodel", FitmentHash(1, "P-100", 2020, "Ford", "F-150", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, base, tt.hash)
			} else {
				assert.NotEqual(t, base, tt.hash)
			}
		})
	}
}

func TestFitmentDeleteRestoreLiveMarker(t *testing.T) {
	live := true
	f := &Fitment{TenantID: 1, PartID: "P-1", LiveMarker: &live}

	f.MarkDeleted("admin")
	assert.True(t, f.IsDeleted)
	assert.NotNil(t, f.DeletedAt)
	assert.Equal(t, "admin", f.DeletedBy)
	assert.Nil(t, f.LiveMarker, "deleted rows must release the uniqueness slot")

	f.MarkRestored("admin")
	assert.False(t, f.IsDeleted)
	assert.Nil(t, f.DeletedAt)
	require.NotNil(t, f.LiveMarker)
	assert.True(t, *f.LiveMarker)
}

func TestFitmentIsAIGenerated(t *testing.T) {
	assert.True(t, (&Fitment{FitmentType: FitmentTypeAI}).IsAIGenerated())
	assert.True(t, (&Fitment{FitmentType: FitmentTypePotential}).IsAIGenerated())
	assert.False(t, (&Fitment{FitmentType: FitmentTypeManual}).IsAIGenerated())
}

func TestUploadSessionTransitions(t *testing.T) {
	s := &UploadSession{Status: UploadStatusUploading}

	require.NoError(t, s.TransitionTo(UploadStatusUploaded))
	require.NoError(t, s.TransitionTo(UploadStatusProcessing))
	require.NoError(t, s.TransitionTo(UploadStatusCompleted))
	assert.True(t, s.IsTerminal())

	assert.Error(t, s.TransitionTo(UploadStatusProcessing), "lifecycle must not move backwards")
	assert.Equal(t, UploadStatusCompleted, s.Status, "failed transition leaves status untouched")

	assert.Error(t, (&UploadSession{Status: UploadStatusUploading}).TransitionTo("archived"))
}

func TestUploadSessionErrorFromAnyStage(t *testing.T) {
	for _, from := range []string{UploadStatusUploading, UploadStatusUploaded, UploadStatusProcessing} {
		s := &UploadSession{Status: from}
		require.NoError(t, s.TransitionTo(UploadStatusError), "from %s", from)
		assert.True(t, s.IsTerminal())
	}
}

func TestJobFinish(t *testing.T) {
	j := &Job{Status: JobStatusProcessing, ErrorMessage: "transient"}

	require.NoError(t, j.Finish(JobStatusCompleted, JSONFrom(map[string]int{"rows": 5}), ""))
	assert.Equal(t, JobStatusCompleted, j.Status)
	assert.NotNil(t, j.FinishedAt)
	assert.Equal(t, 100, j.Progress)
	assert.Empty(t, j.ErrorMessage, "success clears stale errors")
	assert.True(t, j.IsTerminal())

	assert.Error(t, (&Job{}).Finish(JobStatusProcessing, nil, ""), "non-terminal status rejected")
}

func TestJobFinishFailedKeepsError(t *testing.T) {
	j := &Job{Status: JobStatusProcessing}
	require.NoError(t, j.Finish(JobStatusFailed, nil, "disk full"))
	assert.Equal(t, "disk full", j.ErrorMessage)
}

func TestJobIsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{JobStatusQueued, false},
		{JobStatusProcessing, false},
		{JobStatusCompleted, true},
		{JobStatusCompletedWithWarnings, true},
		{JobStatusFailed, true},
		{JobStatusCancelled, true},
	}
	for _, tt := range tests {
		j := &Job{Status: tt.status}
		if j.IsTerminal() != tt.terminal {
			t.Fatalf("IsTerminal() for %s = %v, want %v", tt.status, j.IsTerminal(), tt.terminal)
		}
	}
}

func TestJobIsRetryable(t *testing.T) {
	retryable := &Job{Status: JobStatusFailed, JobType: JobTypeVCDBSync, RetryCount: 1, MaxRetries: 3}
	assert.True(t, retryable.IsRetryable())

	assert.False(t, (&Job{Status: JobStatusFailed, JobType: JobTypeManualFitment, MaxRetries: 3}).IsRetryable())
	assert.False(t, (&Job{Status: JobStatusCompleted, JobType: JobTypeVCDBSync, MaxRetries: 3}).IsRetryable())
	assert.False(t, (&Job{Status: JobStatusFailed, JobType: JobTypeVCDBSync, RetryCount: 3, MaxRetries: 3}).IsRetryable())
}

func TestFieldConfigurationValidate(t *testing.T) {
	valid := func() *FieldConfiguration {
		return &FieldConfiguration{
			TenantID:         1,
			Name:             "year",
			ReferenceType:    ReferenceVCDB,
			FieldType:        FieldTypeInteger,
			RequirementLevel: RequirementRequired,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*FieldConfiguration)
	}{
		{"bad reference type", func(f *FieldConfiguration) { f.ReferenceType = "global" }},
		{"bad field type", func(f *FieldConfiguration) { f.FieldType = "uuid" }},
		{"bad requirement", func(f *FieldConfiguration) { f.RequirementLevel = "mandatory" }},
		{"blank name", func(f *FieldConfiguration) { f.Name = "   " }},
		{"enum without options", func(f *FieldConfiguration) { f.FieldType = FieldTypeEnum }},
		{"min length above max", func(f *FieldConfiguration) {
			lo, hi := 10, 2
			f.MinLength, f.MaxLength = &lo, &hi
		}},
		{"min value above max", func(f *FieldConfiguration) {
			lo, hi := 3000.0, 1900.0
			f.MinValue, f.MaxValue = &lo, &hi
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.mutate(f)
			assert.Error(t, f.Validate())
		})
	}
}

func TestFieldConfigurationEnumValues(t *testing.T) {
	f := &FieldConfiguration{
		Name:          "fuel_type",
		ReferenceType: ReferenceVCDB,
		FieldType:     FieldTypeEnum,
		EnumOptions:   JSON(`["Gas","Diesel","Electric"]`),
	}
	assert.Equal(t, []string{"Gas", "Diesel", "Electric"}, f.EnumValues())
	f.RequirementLevel = RequirementOptional
	assert.NoError(t, f.Validate())

	assert.Nil(t, (&FieldConfiguration{}).EnumValues())
	assert.Nil(t, (&FieldConfiguration{EnumOptions: JSON(`{"not":"a list"}`)}).EnumValues())
}

func TestFieldConfigurationAppliesTo(t *testing.T) {
	both := &FieldConfiguration{ReferenceType: ReferenceBoth}
	assert.True(t, both.AppliesTo(ReferenceVCDB))
	assert.True(t, both.AppliesTo(ReferenceProduct))

	vcdbOnly := &FieldConfiguration{ReferenceType: ReferenceVCDB}
	assert.True(t, vcdbOnly.AppliesTo(ReferenceVCDB))
	assert.False(t, vcdbOnly.AppliesTo(ReferenceProduct))
}

func TestProposalLifecycle(t *testing.T) {
	p := &AIFitmentProposal{
		UUID:            "abc-123",
		TenantID:        1,
		PartID:          "P-1",
		PartDescription: "Brake pad set",
		Year:            2020,
		MakeName:        "Ford",
		ModelName:       "F-150",
		Position:        "Front",
		Quantity:        2,
		UOM:             "EA",
		ConfidenceScore: 0.83,
		AIReasoning:     "category match",
		Status:          ProposalStatusPending,
	}
	assert.False(t, p.IsTerminal())

	f := p.ToFitment("reviewer")
	assert.Equal(t, FitmentTypeAI, f.FitmentType)
	assert.Equal(t, ItemStatusActive, f.ItemStatus)
	assert.Equal(t, "abc-123", f.AIReasoningRef)
	assert.Equal(t, "Brake pad set", f.Title)
	assert.Equal(t, "category match", f.AIDescription)
	assert.Equal(t, 0.83, f.ConfidenceScore)
	assert.Equal(t, "reviewer", f.CreatedBy)

	p.Status = ProposalStatusApproved
	assert.True(t, p.IsTerminal())
}

func TestTenantVCDBCategories(t *testing.T) {
	tenant := &Tenant{FitmentSettings: JSONFrom(map[string]interface{}{
		SettingVCDBCategories: []string{"light-duty", "powersports"},
	})}
	assert.Equal(t, []string{"light-duty", "powersports"}, tenant.VCDBCategories())

	assert.Nil(t, (&Tenant{}).VCDBCategories())
	assert.Nil(t, (&Tenant{FitmentSettings: JSON(`{"vcdb_categories": "oops"}`)}).VCDBCategories())
}

func TestJSONRoundTrip(t *testing.T) {
	doc := JSONFrom(map[string]interface{}{"a": 1.0, "b": "x"})
	m := doc.AsMap()
	assert.Equal(t, 1.0, m["a"])
	assert.Equal(t, "x", m["b"])

	assert.NotNil(t, JSON(nil).AsMap())
	assert.Empty(t, JSON(nil).AsMap())
}
