package request

import (
	"strings"
	"time"

	"booking-hold-service/internal/engine"
)

type HoldLineRequest struct {
	Kind       string     `json:"kind" binding:"required"`
	ResourceID string     `json:"resource_id,omitempty"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	ItemID     string     `json:"item_id,omitempty"`
	Quantity   *int       `json:"quantity,omitempty"`
}

type CreateHoldRequest struct {
	ExpiresInSeconds int               `json:"expires_in_seconds"`
	Lines            []HoldLineRequest `json:"lines"`
	IdempotencyKey   *string           `json:"idempotency_key,omitempty"`
	Note             *string           `json:"note,omitempty"`
	ActorUserID      *string           `json:"actor_user_id,omitempty"`
}

// GetIdempotencyKey normalizes the body key; headerKey is the fallback when
// the body carries none.
func (r CreateHoldRequest) GetIdempotencyKey(headerKey string) string {
	if r.IdempotencyKey != nil {
		if key := strings.TrimSpace(*r.IdempotencyKey); key != "" {
			return key
		}
	}
	return strings.TrimSpace(headerKey)
}

func (r CreateHoldRequest) ToInput(tenantID, userID, requestID, headerKey string) engine.CreateHoldInput {
	in := engine.CreateHoldInput{
		TenantID:         tenantID,
		CreatedByUserID:  userID,
		ExpiresInSeconds: r.ExpiresInSeconds,
		IdempotencyKey:   r.GetIdempotencyKey(headerKey),
		RequestID:        requestID,
		Lines:            make([]engine.HoldLineInput, 0, len(r.Lines)),
	}
	if r.Note != nil {
		in.Note = strings.TrimSpace(*r.Note)
	}
	for _, line := range r.Lines {
		in.Lines = append(in.Lines, engine.HoldLineInput{
			Kind:       line.Kind,
			ResourceID: line.ResourceID,
			StartAt:    line.StartAt,
			EndAt:      line.EndAt,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
		})
	}
	return in
}

// ExpireRequest optionally pins the evaluation instant, mainly for operator
// tooling and tests.
type ExpireRequest struct {
	Now *time.Time `json:"now,omitempty"`
}
