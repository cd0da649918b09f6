// Package controllers holds the HTTP handlers. Handlers are package-level
// fiber functions over a shared dependency set wired once at startup.
package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/fieldconfig"
	"github.com/mft-data/fitmenthub/internal/pkg/fitment"
	"github.com/mft-data/fitmenthub/internal/pkg/jobqueue"
	"github.com/mft-data/fitmenthub/internal/pkg/lineage"
	"github.com/mft-data/fitmenthub/internal/pkg/review"
	"github.com/mft-data/fitmenthub/internal/pkg/storage"
)

// Deps is everything the handlers need.
type Deps struct {
	Repos     *repository.Repositories
	Registry  *fieldconfig.Registry
	Store     storage.ObjectStore
	Manager   *jobqueue.Manager
	Generator *fitment.Generator
	Review    *review.Service
	Lineage   *lineage.Recorder
}

var deps Deps

// Initialize wires the shared handler dependencies. Must run before routes
// are registered.
func Initialize(d Deps) {
	deps = d
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// pagination reads offset/limit (or page/page_size) query params.
func pagination(c *fiber.Ctx) (offset, limit int) {
	limit = c.QueryInt("limit", 0)
	if limit == 0 {
		limit = c.QueryInt("page_size", defaultPageSize)
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset = c.QueryInt("offset", -1)
	if offset < 0 {
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		offset = (page - 1) * limit
	}
	return offset, limit
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

func requestUser(c *fiber.Ctx) string {
	if u := c.Get("X-User"); u != "" {
		return u
	}
	return "system"
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
