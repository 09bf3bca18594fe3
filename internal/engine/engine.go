package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"booking-hold-service/internal/pkg/clock"

	"github.com/jinzhu/copier"
)

// Sequence holds one monotonically increasing counter per entity kind. The
// counters are part of the snapshot: after a restart the allocator continues
// exactly where it left off, so an id observed by an external system is never
// reissued.
type Sequence struct {
	Resource    uint64 `json:"resource"`
	Item        uint64 `json:"item"`
	Hold        uint64 `json:"hold"`
	Line        uint64 `json:"line"`
	Booking     uint64 `json:"booking"`
	Reservation uint64 `json:"reservation"`
	Audit       uint64 `json:"audit"`
}

// Engine owns all reservation state. Its methods are synchronous and never
// block mid-operation, so each public call is atomic with respect to the
// in-memory state; serializing concurrent mutations is the caller's job (see
// usecase.Gate).
type Engine struct {
	clock clock.Clock

	resources    *collection[*Resource]
	items        *collection[*Item]
	holds        *collection[*Hold]
	bookings     *collection[*Booking]
	reservations *collection[*Reservation]
	auditLog     []*AuditEntry
	idempotency  map[string]string
	sequence     Sequence
}

func New(c clock.Clock) *Engine {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &Engine{
		clock:        c,
		resources:    newCollection[*Resource](),
		items:        newCollection[*Item](),
		holds:        newCollection[*Hold](),
		bookings:     newCollection[*Booking](),
		reservations: newCollection[*Reservation](),
		idempotency:  map[string]string{},
	}
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) nextID(prefix string, counter *uint64) string {
	*counter++
	return fmt.Sprintf("%s%d", prefix, *counter)
}

type auditInput struct {
	TenantID    string
	ActorUserID string
	Action      string
	TargetType  string
	TargetID    string
	RequestID   string
	Payload     map[string]any
	Now         time.Time
}

func (e *Engine) addAudit(in auditInput) {
	// payloads are normalized through the wire format so a snapshot round
	// trip cannot change their value types
	in.Payload = patchPayload(in.Payload)
	e.auditLog = append(e.auditLog, &AuditEntry{
		ID:          e.nextID("A", &e.sequence.Audit),
		TenantID:    in.TenantID,
		ActorUserID: in.ActorUserID,
		Action:      in.Action,
		TargetType:  in.TargetType,
		TargetID:    in.TargetID,
		RequestID:   in.RequestID,
		Payload:     in.Payload,
		CreatedAt:   in.Now,
	})
}

// deepCopy returns an independent copy. Every value crossing the engine
// boundary goes through here: callers must never hold a reference into engine
// state, or a caller-side mutation would silently corrupt it.
func deepCopy[T any](src *T) *T {
	dst := new(T)
	// copying between identical plain struct types cannot fail
	_ = copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
	return dst
}

// patchPayload renders the raw patch for the audit trail, dropping absent
// fields.
func patchPayload(p any) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return out
}

func deepCopySlice[T any](src []*T) []*T {
	out := make([]*T, 0, len(src))
	for _, v := range src {
		out = append(out, deepCopy(v))
	}
	return out
}
