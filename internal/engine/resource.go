package engine

import (
	"booking-hold-service/internal/pkg/patch"
)

const (
	defaultTimezone           = "UTC"
	defaultGranularityMinutes = 15
	defaultMinDurationMinutes = 15
	defaultMaxDurationMinutes = 240
)

type CreateResourceInput struct {
	TenantID               string
	Name                   string
	Timezone               *string
	SlotGranularityMinutes *int
	MinDurationMinutes     *int
	MaxDurationMinutes     *int
	Status                 *CatalogStatus
}

type UpdateResourcePatch struct {
	Name                   *string        `json:"name,omitempty"`
	Timezone               *string        `json:"timezone,omitempty"`
	SlotGranularityMinutes *int           `json:"slot_granularity_minutes,omitempty"`
	MinDurationMinutes     *int           `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes     *int           `json:"max_duration_minutes,omitempty"`
	Status                 *CatalogStatus `json:"status,omitempty"`
}

type ResourceFilter struct {
	TenantID string
	Status   *CatalogStatus
}

func (e *Engine) CreateResource(in CreateResourceInput) (*Resource, error) {
	if in.TenantID == "" || in.Name == "" {
		return nil, validationError(CodeInvalidResource, "tenant_id and name are required", nil)
	}
	resource := &Resource{
		ID:                     e.nextID("R", &e.sequence.Resource),
		TenantID:               in.TenantID,
		Name:                   in.Name,
		Timezone:               patch.Coalesce(in.Timezone, defaultTimezone),
		SlotGranularityMinutes: patch.Coalesce(in.SlotGranularityMinutes, defaultGranularityMinutes),
		MinDurationMinutes:     patch.Coalesce(in.MinDurationMinutes, defaultMinDurationMinutes),
		MaxDurationMinutes:     patch.Coalesce(in.MaxDurationMinutes, defaultMaxDurationMinutes),
		Status:                 patch.Coalesce(in.Status, CatalogStatusActive),
	}
	if err := validateResource(resource, CodeInvalidResource); err != nil {
		return nil, err
	}
	e.resources.put(resource.ID, resource)
	return deepCopy(resource), nil
}

// UpdateResource merges only the provided fields, then re-validates the whole
// invariant set. Already-ACTIVE holds created under the previous granularity
// or duration bounds are intentionally not re-validated (grandfathering).
func (e *Engine) UpdateResource(resourceID string, p UpdateResourcePatch, actor Actor) (*Resource, error) {
	resource, err := e.resourceForActor(resourceID, actor)
	if err != nil {
		return nil, err
	}

	merged := *resource
	merged.Name = patch.Coalesce(p.Name, merged.Name)
	merged.Timezone = patch.Coalesce(p.Timezone, merged.Timezone)
	merged.SlotGranularityMinutes = patch.Coalesce(p.SlotGranularityMinutes, merged.SlotGranularityMinutes)
	merged.MinDurationMinutes = patch.Coalesce(p.MinDurationMinutes, merged.MinDurationMinutes)
	merged.MaxDurationMinutes = patch.Coalesce(p.MaxDurationMinutes, merged.MaxDurationMinutes)
	merged.Status = patch.Coalesce(p.Status, merged.Status)
	if merged.Name == "" {
		return nil, validationError(CodeInvalidResourcePatch, "name must not be empty", nil)
	}
	if err := validateResource(&merged, CodeInvalidResourcePatch); err != nil {
		return nil, err
	}

	*resource = merged
	e.addAudit(auditInput{
		TenantID:    resource.TenantID,
		ActorUserID: actor.UserID,
		Action:      AuditResourceUpdate,
		TargetType:  "RESOURCE",
		TargetID:    resource.ID,
		RequestID:   actor.RequestID,
		Payload:     patchPayload(p),
		Now:         e.now(),
	})
	return deepCopy(resource), nil
}

func (e *Engine) GetResource(resourceID string, tenantID string) (*Resource, error) {
	resource, ok := e.resources.get(resourceID)
	if !ok || (tenantID != "" && resource.TenantID != tenantID) {
		return nil, notFoundError(CodeResourceNotFound, "resource not found", map[string]any{"resource_id": resourceID})
	}
	return deepCopy(resource), nil
}

func (e *Engine) ListResources(f ResourceFilter) []*Resource {
	out := make([]*Resource, 0, e.resources.len())
	for _, resource := range e.resources.values() {
		if f.TenantID != "" && resource.TenantID != f.TenantID {
			continue
		}
		if f.Status != nil && resource.Status != *f.Status {
			continue
		}
		out = append(out, deepCopy(resource))
	}
	return out
}

func (e *Engine) resourceForActor(resourceID string, actor Actor) (*Resource, error) {
	resource, ok := e.resources.get(resourceID)
	if !ok || (actor.TenantID != "" && resource.TenantID != actor.TenantID) {
		// tenant mismatch reads as not-found so existence never leaks across tenants
		return nil, notFoundError(CodeResourceNotFound, "resource not found", map[string]any{"resource_id": resourceID})
	}
	return resource, nil
}

func validateResource(r *Resource, code string) error {
	if r.SlotGranularityMinutes <= 0 {
		return validationError(code, "slot_granularity_minutes must be positive integer", map[string]any{
			"field": "slot_granularity_minutes", "value": r.SlotGranularityMinutes,
		})
	}
	if r.MinDurationMinutes <= 0 {
		return validationError(code, "min_duration_minutes must be positive integer", map[string]any{
			"field": "min_duration_minutes", "value": r.MinDurationMinutes,
		})
	}
	if r.MaxDurationMinutes <= 0 {
		return validationError(code, "max_duration_minutes must be positive integer", map[string]any{
			"field": "max_duration_minutes", "value": r.MaxDurationMinutes,
		})
	}
	if r.MinDurationMinutes > r.MaxDurationMinutes {
		return validationError(code, "min_duration_minutes must be <= max_duration_minutes", map[string]any{
			"min_duration_minutes": r.MinDurationMinutes,
			"max_duration_minutes": r.MaxDurationMinutes,
		})
	}
	if r.Status != CatalogStatusActive && r.Status != CatalogStatusInactive {
		return validationError(code, "status must be ACTIVE or INACTIVE", map[string]any{"status": r.Status})
	}
	return nil
}
