package request

import (
	"strings"

	"booking-hold-service/internal/engine"
)

type CreateResourceRequest struct {
	Name                   string  `json:"name" binding:"required"`
	Timezone               *string `json:"timezone,omitempty"`
	SlotGranularityMinutes *int    `json:"slot_granularity_minutes,omitempty"`
	MinDurationMinutes     *int    `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes     *int    `json:"max_duration_minutes,omitempty"`
}

func (r CreateResourceRequest) ToInput(tenantID string) engine.CreateResourceInput {
	return engine.CreateResourceInput{
		TenantID:               tenantID,
		Name:                   strings.TrimSpace(r.Name),
		Timezone:               r.Timezone,
		SlotGranularityMinutes: r.SlotGranularityMinutes,
		MinDurationMinutes:     r.MinDurationMinutes,
		MaxDurationMinutes:     r.MaxDurationMinutes,
	}
}

type PatchResourceRequest struct {
	Name                   *string `json:"name,omitempty"`
	Timezone               *string `json:"timezone,omitempty"`
	SlotGranularityMinutes *int    `json:"slot_granularity_minutes,omitempty"`
	MinDurationMinutes     *int    `json:"min_duration_minutes,omitempty"`
	MaxDurationMinutes     *int    `json:"max_duration_minutes,omitempty"`
	Status                 *string `json:"status,omitempty"`
}

func (r PatchResourceRequest) ToPatch() engine.UpdateResourcePatch {
	p := engine.UpdateResourcePatch{
		Name:                   r.Name,
		Timezone:               r.Timezone,
		SlotGranularityMinutes: r.SlotGranularityMinutes,
		MinDurationMinutes:     r.MinDurationMinutes,
		MaxDurationMinutes:     r.MaxDurationMinutes,
	}
	if r.Status != nil {
		status := engine.CatalogStatus(*r.Status)
		p.Status = &status
	}
	return p
}
