package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/repository"
)

// Router installs one group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers all route groups. The tenant resolver runs inside
// the API router so health and metrics stay tenant-free.
func InstallRouter(app *fiber.App, tenants repository.TenantRepository) {
	setup(app, NewApiRouter(tenants))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
