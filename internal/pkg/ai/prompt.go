package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mft-data/fitmenthub/app/models"
)

const systemPrompt = `You are an automotive fitment analyst. Given a list of
parts and a list of vehicle configurations, decide which parts fit which
vehicles. Respond with a JSON array only, no prose. Each element must have the
keys: part_id, part_description, year, make, model, submodel, drive_type,
fuel_type, num_doors, body_type, position, quantity, confidence, reasoning.
Only reference part_id and vehicle values that appear in the input. Confidence
is a number between 0 and 1.`

func buildPrompt(products []models.ProductRecord, vehicles []models.VCDBRecord, instructions string) string {
	var b strings.Builder

	b.WriteString("PARTS:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- part_id=%s description=%q category=%q part_type=%q compatibility=%q\n",
			p.PartID, p.Description, p.Category, p.PartType, p.Compatibility)
	}

	b.WriteString("\nVEHICLES:\n")
	for _, v := range vehicles {
		fmt.Fprintf(&b, "- year=%d make=%q model=%q submodel=%q drive_type=%q fuel_type=%q num_doors=%d body_type=%q\n",
			v.Year, v.Make, v.Model, v.Submodel, v.DriveType, v.FuelType, v.NumDoors, v.BodyType)
	}

	if strings.TrimSpace(instructions) != "" {
		b.WriteString("\nTENANT INSTRUCTIONS:\n")
		b.WriteString(strings.TrimSpace(instructions))
		b.WriteString("\n")
	}

	b.WriteString("\nReturn the JSON array of fitment suggestions now.")
	return b.String()
}

// parseSuggestions extracts the JSON array from a model response, tolerating
// markdown fences and surrounding prose.
func parseSuggestions(raw string) ([]Suggestion, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("response contains no JSON array")
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return suggestions, nil
}

func vehicleFingerprint(year int, make, model string) string {
	return fmt.Sprintf("%d|%s|%s", year, strings.ToLower(strings.TrimSpace(make)), strings.ToLower(strings.TrimSpace(model)))
}
