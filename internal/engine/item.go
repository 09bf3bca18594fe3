package engine

import (
	"booking-hold-service/internal/pkg/patch"
)

type CreateItemInput struct {
	TenantID      string
	Name          string
	TotalQuantity *int
	Status        *CatalogStatus
}

type UpdateItemPatch struct {
	Name          *string        `json:"name,omitempty"`
	TotalQuantity *int           `json:"total_quantity,omitempty"`
	Status        *CatalogStatus `json:"status,omitempty"`
}

type ItemFilter struct {
	TenantID string
	Status   *CatalogStatus
}

func (e *Engine) CreateItem(in CreateItemInput) (*Item, error) {
	if in.TenantID == "" || in.Name == "" {
		return nil, validationError(CodeInvalidItem, "tenant_id and name are required", nil)
	}
	item := &Item{
		ID:            e.nextID("I", &e.sequence.Item),
		TenantID:      in.TenantID,
		Name:          in.Name,
		TotalQuantity: patch.Coalesce(in.TotalQuantity, 0),
		Status:        patch.Coalesce(in.Status, CatalogStatusActive),
	}
	if item.TotalQuantity < 0 {
		return nil, validationError(CodeInvalidItemQuantity, "total_quantity must be integer >= 0", map[string]any{
			"total_quantity": item.TotalQuantity,
		})
	}
	if item.Status != CatalogStatusActive && item.Status != CatalogStatusInactive {
		return nil, validationError(CodeInvalidItem, "status must be ACTIVE or INACTIVE", map[string]any{"status": item.Status})
	}
	e.items.put(item.ID, item)
	return deepCopy(item), nil
}

// UpdateItem merges the provided fields and re-validates. Lowering
// total_quantity below what is already reserved (confirmed reservations plus
// active hold lines) is rejected, otherwise availability would go negative.
func (e *Engine) UpdateItem(itemID string, p UpdateItemPatch, actor Actor) (*Item, error) {
	item, err := e.itemForActor(itemID, actor)
	if err != nil {
		return nil, err
	}

	merged := *item
	merged.Name = patch.Coalesce(p.Name, merged.Name)
	merged.TotalQuantity = patch.Coalesce(p.TotalQuantity, merged.TotalQuantity)
	merged.Status = patch.Coalesce(p.Status, merged.Status)
	if merged.Name == "" {
		return nil, validationError(CodeInvalidItemPatch, "name must not be empty", nil)
	}
	if merged.TotalQuantity < 0 {
		return nil, validationError(CodeInvalidItemPatch, "total_quantity must be integer >= 0", map[string]any{
			"total_quantity": merged.TotalQuantity,
		})
	}
	if merged.Status != CatalogStatusActive && merged.Status != CatalogStatusInactive {
		return nil, validationError(CodeInvalidItemPatch, "status must be ACTIVE or INACTIVE", map[string]any{"status": merged.Status})
	}

	if merged.TotalQuantity < item.TotalQuantity {
		reserved := e.reservedQuantity(item.ID, "")
		if merged.TotalQuantity < reserved {
			return nil, conflictError(CodeItemQuantityConflict, "total_quantity is below currently reserved quantity", map[string]any{
				"item_id":           item.ID,
				"total_quantity":    merged.TotalQuantity,
				"reserved_quantity": reserved,
			})
		}
	}

	*item = merged
	e.addAudit(auditInput{
		TenantID:    item.TenantID,
		ActorUserID: actor.UserID,
		Action:      AuditItemUpdate,
		TargetType:  "ITEM",
		TargetID:    item.ID,
		RequestID:   actor.RequestID,
		Payload:     patchPayload(p),
		Now:         e.now(),
	})
	return deepCopy(item), nil
}

func (e *Engine) GetItem(itemID string, tenantID string) (*Item, error) {
	item, ok := e.items.get(itemID)
	if !ok || (tenantID != "" && item.TenantID != tenantID) {
		return nil, notFoundError(CodeItemNotFound, "item not found", map[string]any{"item_id": itemID})
	}
	return deepCopy(item), nil
}

func (e *Engine) ListItems(f ItemFilter) []*Item {
	out := make([]*Item, 0, e.items.len())
	for _, item := range e.items.values() {
		if f.TenantID != "" && item.TenantID != f.TenantID {
			continue
		}
		if f.Status != nil && item.Status != *f.Status {
			continue
		}
		out = append(out, deepCopy(item))
	}
	return out
}

func (e *Engine) itemForActor(itemID string, actor Actor) (*Item, error) {
	item, ok := e.items.get(itemID)
	if !ok || (actor.TenantID != "" && item.TenantID != actor.TenantID) {
		return nil, notFoundError(CodeItemNotFound, "item not found", map[string]any{"item_id": itemID})
	}
	return item, nil
}
