package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleCoverageSummary returns the top-level coverage picture: live fitment
// counts by family plus how much of the vehicle database they reach.
func HandleCoverageSummary(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	byType, err := deps.Repos.Fitment.CountByType(tenantID)
	if err != nil {
		return internalError(c, "failed to count fitments")
	}
	vcdbTotal, err := deps.Repos.VCDB.Count(tenantID)
	if err != nil {
		return internalError(c, "failed to count vehicle configurations")
	}
	productTotal, err := deps.Repos.Product.Count(tenantID)
	if err != nil {
		return internalError(c, "failed to count products")
	}
	covered, err := deps.Repos.Coverage.CoveredConfigCount(tenantID)
	if err != nil {
		return internalError(c, "failed to compute coverage")
	}

	var fitmentTotal int64
	for _, n := range byType {
		fitmentTotal += n
	}
	percent := 0.0
	if vcdbTotal > 0 {
		percent = float64(covered) / float64(vcdbTotal) * 100
	}

	return c.JSON(fiber.Map{
		"tenant_id":        tenantID,
		"total_fitments":   fitmentTotal,
		"manual_fitments":  byType[models.FitmentTypeManual],
		"ai_fitments":      byType[models.FitmentTypeAI] + byType[models.FitmentTypePotential],
		"vcdb_configs":     vcdbTotal,
		"covered_configs":  covered,
		"coverage_percent": percent,
		"products":         productTotal,
	})
}

// HandleCoverageDetailed breaks coverage down per make/model pair.
func HandleCoverageDetailed(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	breakdown, err := deps.Repos.Coverage.BreakdownByMakeModel(tenantID)
	if err != nil {
		return internalError(c, "failed to compute coverage breakdown")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"breakdown": breakdown,
	})
}

// HandleCoverageTrends returns monthly fitment creation volume. The window
// defaults to twelve months and is capped at sixty.
func HandleCoverageTrends(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	months := atoiDefault(c.Query("months"), 12)
	if months < 1 {
		months = 12
	}
	if months > 60 {
		months = 60
	}

	trend, err := deps.Repos.Coverage.MonthlyTrend(tenantID, months)
	if err != nil {
		return internalError(c, "failed to compute trend")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"months":    months,
		"trend":     trend,
	})
}

// HandleCoverageGaps pages through vehicle configurations with no live
// fitment at all.
func HandleCoverageGaps(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	offset, limit := pagination(c)

	records, total, err := deps.Repos.Coverage.UncoveredConfigs(tenantID, offset, limit)
	if err != nil {
		return internalError(c, "failed to list coverage gaps")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"total":     total,
		"gaps":      records,
	})
}
