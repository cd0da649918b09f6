package fitment

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
)

// AIRequest scopes one AI generation run.
type AIRequest struct {
	SessionID    uint
	JobID        uint
	JobUUID      string
	PartIDs      []string
	Instructions string
	CreatedBy    string
}

const aiSampleLimit = 100

// GenerateAIProposals runs the suggestion service over the tenant's data and
// stores the results as pending proposals awaiting review. Suggestion
// generation itself cannot fail; only loading inputs or persisting can.
func (g *Generator) GenerateAIProposals(ctx context.Context, tenantID uint, req AIRequest) ([]models.AIFitmentProposal, error) {
	products, err := g.loadAIProducts(tenantID, req.PartIDs)
	if err != nil {
		return nil, err
	}
	vehicles, err := g.vcdb.Sample(tenantID, aiSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle configurations: %w", err)
	}
	if len(products) == 0 || len(vehicles) == 0 {
		return nil, fmt.Errorf("both product and vehicle data are required for AI generation")
	}

	suggestions := g.ai.GenerateFitments(ctx, products, vehicles, req.Instructions)
	if len(suggestions) == 0 {
		return []models.AIFitmentProposal{}, nil
	}

	proposals := make([]*models.AIFitmentProposal, 0, len(suggestions))
	for _, s := range suggestions {
		proposals = append(proposals, &models.AIFitmentProposal{
			TenantID:           tenantID,
			SessionID:          req.SessionID,
			JobID:              req.JobID,
			PartID:             s.PartID,
			PartDescription:    s.PartDescription,
			Year:               s.Year,
			MakeName:           s.Make,
			ModelName:          s.Model,
			Submodel:           s.Submodel,
			DriveType:          s.DriveType,
			FuelType:           s.FuelType,
			NumDoors:           s.NumDoors,
			BodyType:           s.BodyType,
			Position:           s.Position,
			Quantity:           s.Quantity,
			UOM:                DefaultUOM,
			ConfidenceScore:    s.Confidence,
			AIReasoning:        s.Reasoning,
			AIInstructionsUsed: strings.TrimSpace(req.Instructions),
			Status:             models.ProposalStatusPending,
			Auditable:          models.Auditable{CreatedBy: req.CreatedBy, UpdatedBy: req.CreatedBy},
		})
	}

	if err := g.proposals.CreateBatch(proposals); err != nil {
		return nil, fmt.Errorf("failed to store proposals: %w", err)
	}

	out := make([]models.AIFitmentProposal, 0, len(proposals))
	for _, p := range proposals {
		if g.lineage != nil && req.JobUUID != "" {
			g.lineage.RecordProposal(tenantID, p.UUID, req.JobUUID, map[string]interface{}{
				"confidence": p.ConfidenceScore,
			})
		}
		out = append(out, *p)
	}

	log.Infof("[Fitment] Generated %d AI proposals for tenant %d", len(out), tenantID)
	return out, nil
}

func (g *Generator) loadAIProducts(tenantID uint, partIDs []string) ([]models.ProductRecord, error) {
	if len(partIDs) == 0 {
		products, err := g.products.Sample(tenantID, aiSampleLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		return products, nil
	}

	products := make([]models.ProductRecord, 0, len(partIDs))
	for _, partID := range partIDs {
		p, err := g.products.GetByPartID(tenantID, partID)
		if err != nil {
			return nil, fmt.Errorf("unknown part %q", partID)
		}
		products = append(products, *p)
	}
	return products, nil
}
