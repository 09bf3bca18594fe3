package engine

import "time"

type CatalogStatus string

const (
	CatalogStatusActive   CatalogStatus = "ACTIVE"
	CatalogStatusInactive CatalogStatus = "INACTIVE"
)

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "ACTIVE"
	HoldStatusConfirmed HoldStatus = "CONFIRMED"
	HoldStatusCancelled HoldStatus = "CANCELLED"
	HoldStatusExpired   HoldStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition may leave the status.
func (s HoldStatus) IsTerminal() bool {
	return s == HoldStatusConfirmed || s == HoldStatusCancelled || s == HoldStatusExpired
}

type LineKind string

const (
	LineKindResourceSlot LineKind = "RESOURCE_SLOT"
	LineKindInventoryQty LineKind = "INVENTORY_QTY"
)

type LineStatus string

const (
	LineStatusActive   LineStatus = "ACTIVE"
	LineStatusReleased LineStatus = "RELEASED"
)

type ArtifactStatus string

const (
	ArtifactStatusConfirmed ArtifactStatus = "CONFIRMED"
	ArtifactStatusCancelled ArtifactStatus = "CANCELLED"
)

type Resource struct {
	ID                     string        `json:"resource_id"`
	TenantID               string        `json:"tenant_id"`
	Name                   string        `json:"name"`
	Timezone               string        `json:"timezone"`
	SlotGranularityMinutes int           `json:"slot_granularity_minutes"`
	MinDurationMinutes     int           `json:"min_duration_minutes"`
	MaxDurationMinutes     int           `json:"max_duration_minutes"`
	Status                 CatalogStatus `json:"status"`
}

type Item struct {
	ID            string        `json:"item_id"`
	TenantID      string        `json:"tenant_id"`
	Name          string        `json:"name"`
	TotalQuantity int           `json:"total_quantity"`
	Status        CatalogStatus `json:"status"`
}

// HoldLine is owned by its Hold; it has no identity outside of it. Exactly one
// of the RESOURCE_SLOT or INVENTORY_QTY field groups is populated per Kind.
type HoldLine struct {
	ID         string     `json:"hold_line_id"`
	Kind       LineKind   `json:"kind"`
	ResourceID string     `json:"resource_id,omitempty"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	ItemID     string     `json:"item_id,omitempty"`
	Quantity   int        `json:"quantity,omitempty"`
	Status     LineStatus `json:"status"`
}

type Hold struct {
	ID              string     `json:"hold_id"`
	TenantID        string     `json:"tenant_id"`
	CreatedByUserID string     `json:"created_by_user_id"`
	Status          HoldStatus `json:"status"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	ExpiredAt       *time.Time `json:"expired_at"`
	IdempotencyKey  string     `json:"idempotency_key,omitempty"`
	Note            string     `json:"note,omitempty"`
	Lines           []HoldLine `json:"lines"`
}

// Booking is the durable artifact of a confirmed RESOURCE_SLOT line. It
// references its originating hold by id only; cancelling it never reopens the
// hold.
type Booking struct {
	ID              string         `json:"booking_id"`
	TenantID        string         `json:"tenant_id"`
	ResourceID      string         `json:"resource_id"`
	StartAt         time.Time      `json:"start_at"`
	EndAt           time.Time      `json:"end_at"`
	CreatedByUserID string         `json:"created_by_user_id"`
	Status          ArtifactStatus `json:"status"`
	SourceHoldID    string         `json:"source_hold_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CancelledAt     *time.Time     `json:"cancelled_at"`
}

// Reservation is the durable artifact of a confirmed INVENTORY_QTY line.
type Reservation struct {
	ID              string         `json:"reservation_id"`
	TenantID        string         `json:"tenant_id"`
	ItemID          string         `json:"item_id"`
	Quantity        int            `json:"quantity"`
	CreatedByUserID string         `json:"created_by_user_id"`
	Status          ArtifactStatus `json:"status"`
	SourceHoldID    string         `json:"source_hold_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	CancelledAt     *time.Time     `json:"cancelled_at"`
}

type AuditEntry struct {
	ID          string         `json:"audit_id"`
	TenantID    string         `json:"tenant_id"`
	ActorUserID string         `json:"actor_user_id,omitempty"`
	Action      string         `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	RequestID   string         `json:"request_id,omitempty"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Audit actions recorded by state-changing operations.
const (
	AuditHoldCreate        = "HOLD_CREATE"
	AuditHoldConfirm       = "HOLD_CONFIRM"
	AuditHoldCancel        = "HOLD_CANCEL"
	AuditHoldExpire        = "HOLD_EXPIRE"
	AuditResourceUpdate    = "RESOURCE_UPDATE"
	AuditItemUpdate        = "ITEM_UPDATE"
	AuditBookingCancel     = "BOOKING_CANCEL"
	AuditReservationCancel = "RESERVATION_CANCEL"
)

// Actor identifies who is performing a mutation. A non-empty TenantID scopes
// the operation: entities of other tenants are reported as not found.
type Actor struct {
	UserID    string
	TenantID  string
	IsAdmin   bool
	RequestID string
}
