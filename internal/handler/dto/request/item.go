package request

import (
	"strings"

	"booking-hold-service/internal/engine"
)

type CreateItemRequest struct {
	Name          string `json:"name" binding:"required"`
	TotalQuantity *int   `json:"total_quantity,omitempty"`
}

func (r CreateItemRequest) ToInput(tenantID string) engine.CreateItemInput {
	return engine.CreateItemInput{
		TenantID:      tenantID,
		Name:          strings.TrimSpace(r.Name),
		TotalQuantity: r.TotalQuantity,
	}
}

type PatchItemRequest struct {
	Name          *string `json:"name,omitempty"`
	TotalQuantity *int    `json:"total_quantity,omitempty"`
	Status        *string `json:"status,omitempty"`
}

func (r PatchItemRequest) ToPatch() engine.UpdateItemPatch {
	p := engine.UpdateItemPatch{
		Name:          r.Name,
		TotalQuantity: r.TotalQuantity,
	}
	if r.Status != nil {
		status := engine.CatalogStatus(*r.Status)
		p.Status = &status
	}
	return p
}
