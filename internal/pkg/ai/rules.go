package ai

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mft-data/fitmenthub/app/models"
)

// Rule-engine pairing caps. Kept small so the fallback stays review-sized.
const (
	ruleMaxProducts = 10
	ruleMaxVehicles = 5
)

// ruleBasedSuggestions pairs the first products with the first vehicles using
// category keyword matching. Fully deterministic: the same inputs always yield
// the same suggestions and scores.
func ruleBasedSuggestions(products []models.ProductRecord, vehicles []models.VCDBRecord) []Suggestion {
	if len(products) > ruleMaxProducts {
		products = products[:ruleMaxProducts]
	}
	if len(vehicles) > ruleMaxVehicles {
		vehicles = vehicles[:ruleMaxVehicles]
	}

	out := []Suggestion{}
	for _, p := range products {
		for _, v := range vehicles {
			confidence := ruleBaseConfidence + deterministicJitter(p.PartID, v.Year, v.Make, v.Model)
			confidence += keywordBoost(p, v)
			if confidence > 1 {
				confidence = 1
			}
			if confidence < ruleBaseConfidence {
				confidence = ruleBaseConfidence
			}
			out = append(out, Suggestion{
				PartID:          p.PartID,
				PartDescription: p.Description,
				Year:            v.Year,
				Make:            v.Make,
				Model:           v.Model,
				Submodel:        v.Submodel,
				DriveType:       v.DriveType,
				FuelType:        v.FuelType,
				NumDoors:        v.NumDoors,
				BodyType:        v.BodyType,
				Position:        "Front",
				Quantity:        1,
				Confidence:      confidence,
				Reasoning: fmt.Sprintf("Rule-based match: %s is a candidate for %d %s %s based on catalog category %q.",
					p.PartID, v.Year, v.Make, v.Model, p.Category),
			})
		}
	}
	return out
}

// deterministicJitter spreads scores over [0, 0.2) so pairings are ranked
// stably without being uniform.
func deterministicJitter(partID string, year int, make, model string) float64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%s", partID, year, make, model)))
	return float64(sum[0]) / 255.0 * 0.2
}

// keywordBoost nudges confidence when the part's compatibility text mentions
// the vehicle, or docks it when the text is clearly vehicle-specific and the
// vehicle is not named. The dock only reorders pairs; the caller floors the
// final score at ruleBaseConfidence so every pair is still emitted.
func keywordBoost(p models.ProductRecord, v models.VCDBRecord) float64 {
	compat := strings.ToLower(p.Compatibility + " " + p.Description)
	make := strings.ToLower(v.Make)
	model := strings.ToLower(v.Model)

	boost := 0.0
	if make != "" && strings.Contains(compat, make) {
		boost += 0.05
	}
	if model != "" && strings.Contains(compat, model) {
		boost += 0.05
	}
	if compat != " " && make != "" && model != "" &&
		strings.Contains(compat, "only") && !strings.Contains(compat, make) && !strings.Contains(compat, model) {
		boost -= 0.3
	}
	return boost
}
