// Package middleware carries the request-scoped concerns: tenant resolution
// and request logging.
package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
)

const (
	// TenantHeader selects the tenant for the request.
	TenantHeader = "X-Tenant-ID"

	localTenantKey = "TENANT"
)

// TenantResolver resolves the X-Tenant-ID header to a tenant row and stores
// it in request locals. The header accepts a numeric id, a UUID or a slug;
// requests without the header fall back to the default tenant. An unknown or
// inactive tenant yields 404: tenants outside the caller's scope do not
// exist as far as responses reveal.
func TenantResolver(tenants repository.TenantRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(TenantHeader))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("tenant_id"))
		}

		var (
			tenant *models.Tenant
			err    error
		)
		switch {
		case raw == "":
			tenant, err = tenants.GetDefault()
		case isNumeric(raw):
			id, _ := strconv.ParseUint(raw, 10, 32)
			tenant, err = tenants.GetByID(uint(id))
		case len(raw) == 36:
			tenant, err = tenants.GetByUUID(raw)
		default:
			tenant, err = tenants.GetBySlug(raw)
		}

		if err != nil || tenant == nil || !tenant.IsActive {
			fiberlog.Warnf("[Tenant] Unresolvable tenant %q for %s %s", raw, c.Method(), c.Path())
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		c.Locals(localTenantKey, tenant)
		return c.Next()
	}
}

// CurrentTenant returns the tenant resolved for this request.
func CurrentTenant(c *fiber.Ctx) *models.Tenant {
	if t, ok := c.Locals(localTenantKey).(*models.Tenant); ok {
		return t
	}
	return nil
}

// TenantID returns the resolved tenant id, or 0 outside a resolved request.
func TenantID(c *fiber.Ctx) uint {
	if t := CurrentTenant(c); t != nil {
		return t.ID
	}
	return 0
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
