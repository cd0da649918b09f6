// Package ai produces fitment suggestions for a set of products against a
// tenant's vehicle configurations. An Azure OpenAI deployment does the heavy
// lifting when configured; a deterministic rule engine covers every other
// case, so suggestion generation never fails outright.
package ai

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
)

// Suggestion is one proposed part-vehicle pairing with its confidence and
// reasoning. Confidence is always within [0, 1].
type Suggestion struct {
	PartID          string  `json:"part_id"`
	PartDescription string  `json:"part_description"`
	Year            int     `json:"year"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	Submodel        string  `json:"submodel"`
	DriveType       string  `json:"drive_type"`
	FuelType        string  `json:"fuel_type"`
	NumDoors        int     `json:"num_doors"`
	BodyType        string  `json:"body_type"`
	Position        string  `json:"position"`
	Quantity        int     `json:"quantity"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
}

// ChatClient is the single LLM call the service depends on.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Limits on how much data reaches the model and the rule engine.
const (
	maxVehiclesInPrompt = 5
	maxProductsInPrompt = 10
	maxVehiclesOverall  = 100
	maxProductsOverall  = 100

	// rule-only suggestions score in [ruleBaseConfidence, 1]
	ruleBaseConfidence = 0.7
)

// Service generates suggestions, preferring the configured model and falling
// back to rules on any failure.
type Service struct {
	client ChatClient
}

// NewService creates a suggestion service. A nil client means rule-based only.
func NewService(client ChatClient) *Service {
	return &Service{client: client}
}

// NewServiceFromEnv wires the Azure OpenAI client when its environment is
// configured, otherwise returns a rule-based-only service.
func NewServiceFromEnv() *Service {
	client, err := NewAzureClientFromEnv()
	if err != nil {
		log.Warnf("[AI] Azure OpenAI not configured, using rule-based suggestions: %v", err)
		return NewService(nil)
	}
	return NewService(client)
}

// GenerateFitments produces suggestions for the given products against the
// given vehicles. It never returns an error; when the model is unavailable or
// its output unusable the deterministic rule engine answers instead.
func (s *Service) GenerateFitments(ctx context.Context, products []models.ProductRecord, vehicles []models.VCDBRecord, instructions string) []Suggestion {
	if len(products) > maxProductsOverall {
		products = products[:maxProductsOverall]
	}
	if len(vehicles) > maxVehiclesOverall {
		vehicles = vehicles[:maxVehiclesOverall]
	}
	if len(products) == 0 || len(vehicles) == 0 {
		return []Suggestion{}
	}

	if s.client != nil {
		suggestions, err := s.generateWithModel(ctx, products, vehicles, instructions)
		if err == nil && len(suggestions) > 0 {
			return suggestions
		}
		if err != nil {
			log.Warnf("[AI] Model generation failed, falling back to rules: %v", err)
		}
	}

	return ruleBasedSuggestions(products, vehicles)
}

func (s *Service) generateWithModel(ctx context.Context, products []models.ProductRecord, vehicles []models.VCDBRecord, instructions string) ([]Suggestion, error) {
	promptProducts := products
	if len(promptProducts) > maxProductsInPrompt {
		promptProducts = promptProducts[:maxProductsInPrompt]
	}
	promptVehicles := vehicles
	if len(promptVehicles) > maxVehiclesInPrompt {
		promptVehicles = promptVehicles[:maxVehiclesInPrompt]
	}

	userPrompt := buildPrompt(promptProducts, promptVehicles, instructions)
	raw, err := s.client.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	return sanitizeSuggestions(suggestions, promptProducts, promptVehicles), nil
}

// sanitizeSuggestions drops hallucinated part or vehicle references and clamps
// confidence into [0, 1].
func sanitizeSuggestions(in []Suggestion, products []models.ProductRecord, vehicles []models.VCDBRecord) []Suggestion {
	knownParts := map[string]bool{}
	for _, p := range products {
		knownParts[p.PartID] = true
	}
	knownVehicles := map[string]bool{}
	for _, v := range vehicles {
		knownVehicles[vehicleFingerprint(v.Year, v.Make, v.Model)] = true
	}

	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		if !knownParts[s.PartID] {
			log.Warnf("[AI] Dropping suggestion for unknown part %q", s.PartID)
			continue
		}
		if !knownVehicles[vehicleFingerprint(s.Year, s.Make, s.Model)] {
			log.Warnf("[AI] Dropping suggestion for unknown vehicle %d %s %s", s.Year, s.Make, s.Model)
			continue
		}
		if s.Confidence < 0 {
			s.Confidence = 0
		}
		if s.Confidence > 1 {
			s.Confidence = 1
		}
		if s.Quantity <= 0 {
			s.Quantity = 1
		}
		if s.Position == "" {
			s.Position = "Front"
		}
		out = append(out, s)
	}
	return out
}
