package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/middleware"
)

// HandleListProposals lists AI fitment proposals by review status, optionally
// scoped to one upload session.
func HandleListProposals(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	status := c.Query("status", models.ProposalStatusPending)
	switch status {
	case models.ProposalStatusPending, models.ProposalStatusApproved, models.ProposalStatusRejected:
	default:
		return badRequest(c, "status must be pending, approved or rejected")
	}

	var sessionID *uint
	if sid := c.Query("session_id"); sid != "" {
		session, err := deps.Repos.Upload.GetByUUID(tenantID, sid)
		if err != nil {
			return notFound(c)
		}
		sessionID = &session.ID
	}

	proposals, err := deps.Repos.Proposal.ListByStatus(tenantID, status, sessionID)
	if err != nil {
		return internalError(c, "failed to list proposals")
	}
	return c.JSON(fiber.Map{
		"tenant_id": tenantID,
		"status":    status,
		"proposals": proposals,
	})
}

type reviewRequest struct {
	IDs   []string `json:"ids"`
	Notes string   `json:"notes"`
}

// HandleApproveProposals approves the listed proposals and materializes each
// into a live fitment. Unknown ids are reported as skipped.
func HandleApproveProposals(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return badRequest(c, "ids array is empty")
	}

	result, err := deps.Review.Approve(tenantID, req.IDs, requestUser(c), req.Notes)
	if err != nil {
		return internalError(c, "failed to approve proposals")
	}
	return c.JSON(result)
}

// HandleRejectProposals rejects the listed proposals. Rejection is terminal.
func HandleRejectProposals(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return badRequest(c, "ids array is empty")
	}

	result, err := deps.Review.Reject(tenantID, req.IDs, requestUser(c), req.Notes)
	if err != nil {
		return internalError(c, "failed to reject proposals")
	}
	return c.JSON(result)
}

// HandleProposalLineage returns the provenance trail of one proposal.
func HandleProposalLineage(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	entries, err := deps.Lineage.Trace(tenantID, models.LineageEntityProposal, c.Params("id"))
	if err != nil {
		return internalError(c, "failed to load lineage")
	}
	return c.JSON(fiber.Map{"tenant_id": tenantID, "lineage": entries})
}

// HandleFitmentLineage returns the provenance trail of one fitment hash.
func HandleFitmentLineage(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	entries, err := deps.Lineage.Trace(tenantID, models.LineageEntityFitment, c.Params("hash"))
	if err != nil {
		return internalError(c, "failed to load lineage")
	}
	return c.JSON(fiber.Map{"tenant_id": tenantID, "lineage": entries})
}
