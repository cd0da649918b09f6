package fieldconfig

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/app/repository"
	"github.com/mft-data/fitmenthub/internal/pkg/cache"
)

const (
	schemaKeyPrefix = "fieldconfig:schema:"
	schemaCacheTTL  = 10 * time.Minute
)

// Registry exposes the per-tenant dynamic field schema. Resolved schemas are
// hot-read and rare-write, so they are cached in redis per
// (tenant, reference_type) and invalidated on every mutation.
type Registry struct {
	repo repository.FieldConfigRepository
}

// NewRegistry creates a registry over the given repository.
func NewRegistry(repo repository.FieldConfigRepository) *Registry {
	return &Registry{repo: repo}
}

// List returns configurations ordered by display_order, name.
func (r *Registry) List(tenantID uint, referenceType string) ([]models.FieldConfiguration, error) {
	return r.repo.List(tenantID, referenceType)
}

// Get returns one configuration by its identity.
func (r *Registry) Get(tenantID uint, name, referenceType string) (*models.FieldConfiguration, error) {
	return r.repo.Get(tenantID, name, referenceType)
}

// Create persists a new configuration and invalidates the affected cache
// slices.
func (r *Registry) Create(cfg *models.FieldConfiguration, changedBy string) error {
	if err := r.repo.Create(cfg, changedBy); err != nil {
		return err
	}
	r.invalidate(cfg.TenantID, cfg.ReferenceType)
	return nil
}

// Update modifies an existing configuration. Name and reference_type are
// immutable; the repository enforces that.
func (r *Registry) Update(tenantID uint, name, referenceType string, cfg *models.FieldConfiguration, changedBy string) error {
	old, err := r.repo.Get(tenantID, name, referenceType)
	if err != nil {
		return err
	}
	cfg.TenantID = tenantID
	if err := r.repo.Update(cfg, old, changedBy); err != nil {
		return err
	}
	r.invalidate(tenantID, referenceType)
	return nil
}

// Delete removes a configuration and records the deletion in history.
func (r *Registry) Delete(tenantID uint, name, referenceType, changedBy string) error {
	if err := r.repo.Delete(tenantID, name, referenceType, changedBy); err != nil {
		return err
	}
	r.invalidate(tenantID, referenceType)
	return nil
}

// ToggleEnabled flips is_enabled and records the transition.
func (r *Registry) ToggleEnabled(tenantID uint, name, referenceType string, enabled bool, changedBy string) error {
	if err := r.repo.ToggleEnabled(tenantID, name, referenceType, enabled, changedBy); err != nil {
		return err
	}
	r.invalidate(tenantID, referenceType)
	return nil
}

// History returns the audit trail, newest first.
func (r *Registry) History(tenantID uint, fieldName string, limit int) ([]models.FieldConfigurationHistory, error) {
	return r.repo.History(tenantID, fieldName, limit)
}

// Resolve returns the effective schema for (tenant, reference_type): enabled
// fields of the requested type plus "both", indexed by name. Served from the
// cache when warm.
func (r *Registry) Resolve(tenantID uint, referenceType string) (*Schema, error) {
	key := schemaKey(tenantID, referenceType)
	if cached, err := cache.Get(key); err == nil && cached != "" {
		var schema Schema
		if uerr := json.Unmarshal([]byte(cached), &schema); uerr == nil {
			return &schema, nil
		}
		// corrupted cache entries are dropped, not served
		_ = cache.Delete(key)
	}

	configs, err := r.repo.ListEnabled(tenantID, referenceType)
	if err != nil {
		return nil, err
	}

	schema := &Schema{
		TenantID:      tenantID,
		ReferenceType: referenceType,
		Fields:        make(map[string]*FieldRule, len(configs)),
	}
	for i := range configs {
		rule := ruleFromConfig(&configs[i])
		schema.Fields[rule.Name] = rule
	}

	if data, merr := json.Marshal(schema); merr == nil {
		if serr := cache.Set(key, string(data), schemaCacheTTL); serr != nil {
			log.Warnf("[FieldConfig] Failed to cache schema for tenant %d/%s: %v", tenantID, referenceType, serr)
		}
	}
	return schema, nil
}

// invalidate drops the cache slices a mutation can affect. A "both" field
// participates in vcdb and product schemas, so both slices go.
func (r *Registry) invalidate(tenantID uint, referenceType string) {
	keys := []string{schemaKey(tenantID, referenceType)}
	if referenceType == models.ReferenceBoth {
		keys = []string{
			schemaKey(tenantID, models.ReferenceVCDB),
			schemaKey(tenantID, models.ReferenceProduct),
			schemaKey(tenantID, models.ReferenceBoth),
		}
	}
	if err := cache.Delete(keys...); err != nil {
		log.Warnf("[FieldConfig] Cache invalidation failed for tenant %d: %v", tenantID, err)
	}
}

func schemaKey(tenantID uint, referenceType string) string {
	return fmt.Sprintf("%s%d:%s", schemaKeyPrefix, tenantID, referenceType)
}
