package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
)

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, s.err
}

func sampleProducts(n int) []models.ProductRecord {
	out := make([]models.ProductRecord, n)
	for i := range out {
		out[i] = models.ProductRecord{
			TenantID:    1,
			PartID:      "P-" + string(rune('A'+i)),
			Description: "Brake pad set",
			Category:    "Brakes",
		}
	}
	return out
}

func sampleVehicles(n int) []models.VCDBRecord {
	out := make([]models.VCDBRecord, n)
	for i := range out {
		out[i] = models.VCDBRecord{
			TenantID: 1,
			Year:     2018 + i,
			Make:     "Toyota",
			Model:    "Camry",
		}
	}
	return out
}

func TestGenerateFitmentsNeverFails(t *testing.T) {
	tests := []struct {
		name   string
		client ChatClient
	}{
		{"no client", nil},
		{"client error", &stubClient{err: errors.New("boom")}},
		{"garbage response", &stubClient{response: "I cannot help with that."}},
		{"empty array", &stubClient{response: "[]"}},
	}

	products := sampleProducts(3)
	vehicles := sampleVehicles(2)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.client)
			suggestions := svc.GenerateFitments(context.Background(), products, vehicles, "")
			assert.NotEmpty(t, suggestions, "rule fallback must produce suggestions")
			for _, s := range suggestions {
				assert.GreaterOrEqual(t, s.Confidence, ruleBaseConfidence)
				assert.LessOrEqual(t, s.Confidence, 1.0)
			}
		})
	}
}

func TestGenerateFitmentsEmptyInputs(t *testing.T) {
	svc := NewService(nil)
	assert.Empty(t, svc.GenerateFitments(context.Background(), nil, sampleVehicles(2), ""))
	assert.Empty(t, svc.GenerateFitments(context.Background(), sampleProducts(2), nil, ""))
}

func TestRuleBasedSuggestionsDeterministic(t *testing.T) {
	products := sampleProducts(4)
	vehicles := sampleVehicles(3)

	first := ruleBasedSuggestions(products, vehicles)
	second := ruleBasedSuggestions(products, vehicles)
	assert.Equal(t, first, second, "same inputs must yield identical suggestions")
}

func TestRuleBasedSuggestionsCaps(t *testing.T) {
	suggestions := ruleBasedSuggestions(sampleProducts(25), sampleVehicles(20))
	assert.LessOrEqual(t, len(suggestions), ruleMaxProducts*ruleMaxVehicles)
}

func TestRuleBasedSuggestionsEmitAllPairsAtFloor(t *testing.T) {
	products := sampleProducts(2)
	for i := range products {
		products[i].Compatibility = "fits this model only"
	}
	vehicles := sampleVehicles(3)

	suggestions := ruleBasedSuggestions(products, vehicles)
	require.Len(t, suggestions, 6, "the exclusivity dock must not drop pairs")
	for _, s := range suggestions {
		assert.GreaterOrEqual(t, s.Confidence, ruleBaseConfidence)
		assert.LessOrEqual(t, s.Confidence, 1.0)
	}
}

func TestKeywordBoost(t *testing.T) {
	vehicle := models.VCDBRecord{Year: 2020, Make: "Ford", Model: "F-150"}

	match := models.ProductRecord{PartID: "P-1", Compatibility: "Fits Ford F-150 2015-2022"}
	assert.InDelta(t, 0.1, keywordBoost(match, vehicle), 0.0001)

	exclusive := models.ProductRecord{PartID: "P-2", Compatibility: "Toyota Camry only"}
	assert.InDelta(t, -0.3, keywordBoost(exclusive, vehicle), 0.0001)

	neutral := models.ProductRecord{PartID: "P-3", Description: "Universal mat"}
	assert.InDelta(t, 0.0, keywordBoost(neutral, vehicle), 0.0001)
}

func TestDeterministicJitterRange(t *testing.T) {
	for _, part := range []string{"P-1", "P-2", "WH-99", ""} {
		j := deterministicJitter(part, 2020, "Ford", "F-150")
		assert.GreaterOrEqual(t, j, 0.0)
		assert.LessOrEqual(t, j, 0.2)
	}
}

func TestParseSuggestions(t *testing.T) {
	payload := `[{"part_id":"P-A","year":2018,"make":"Toyota","model":"Camry","confidence":0.9}]`

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"bare array", payload, true},
		{"fenced", "```json\n" + payload + "\n```", true},
		{"prose around", "Here you go:\n" + payload + "\nHope that helps!", true},
		{"no array", "no suggestions today", false},
		{"broken json", "[{\"part_id\":}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.raw)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "P-A", got[0].PartID)
		})
	}
}

func TestSanitizeSuggestions(t *testing.T) {
	products := sampleProducts(1)  // P-A
	vehicles := sampleVehicles(1)  // 2018 Toyota Camry

	in := []Suggestion{
		{PartID: "P-A", Year: 2018, Make: "Toyota", Model: "Camry", Confidence: 1.7},
		{PartID: "P-A", Year: 2018, Make: "toyota", Model: "CAMRY", Confidence: -0.2},
		{PartID: "HALLUCINATED", Year: 2018, Make: "Toyota", Model: "Camry", Confidence: 0.9},
		{PartID: "P-A", Year: 1999, Make: "Toyota", Model: "Camry", Confidence: 0.9},
	}

	out := sanitizeSuggestions(in, products, vehicles)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Confidence, "confidence clamps to 1")
	assert.Equal(t, 0.0, out[1].Confidence, "confidence clamps to 0")
	assert.Equal(t, 1, out[0].Quantity, "quantity defaults to 1")
	assert.Equal(t, "Front", out[0].Position, "position defaults to Front")
}

func TestModelPathUsedWhenResponseValid(t *testing.T) {
	client := &stubClient{response: `[{"part_id":"P-A","year":2018,"make":"Toyota","model":"Camry","confidence":0.85,"reasoning":"direct match"}]`}
	svc := NewService(client)

	suggestions := svc.GenerateFitments(context.Background(), sampleProducts(1), sampleVehicles(1), "prefer exact years")
	require.Len(t, suggestions, 1)
	assert.Equal(t, "direct match", suggestions[0].Reasoning)
	assert.InDelta(t, 0.85, suggestions[0].Confidence, 0.0001)
}

func TestBuildPromptSections(t *testing.T) {
	prompt := buildPrompt(sampleProducts(1), sampleVehicles(1), "trucks only")
	assert.Contains(t, prompt, "PARTS:")
	assert.Contains(t, prompt, "VEHICLES:")
	assert.Contains(t, prompt, "TENANT INSTRUCTIONS:")
	assert.Contains(t, prompt, "trucks only")

	noInstructions := buildPrompt(sampleProducts(1), sampleVehicles(1), "   ")
	assert.NotContains(t, noInstructions, "TENANT INSTRUCTIONS:")
}
