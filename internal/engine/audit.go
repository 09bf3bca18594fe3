package engine

import "time"

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditFilter struct {
	TenantID    string
	ActorUserID string
	Action      string
	TargetType  string
	TargetID    string
	RequestID   string
	FromAt      *time.Time
	ToAt        *time.Time
	Limit       int
}

// ListAuditLogs returns matching entries newest first. Limit defaults to 50
// and is capped at 200; a non-positive limit is invalid rather than meaning
// "all", so a caller cannot accidentally dump the whole log.
func (e *Engine) ListAuditLogs(f AuditFilter) ([]*AuditEntry, error) {
	limit := f.Limit
	if limit == 0 {
		limit = defaultAuditLimit
	}
	if limit < 1 || limit > maxAuditLimit {
		return nil, validationError(CodeInvalidQuery,
			"limit must be in [1, 200]", map[string]any{"limit": f.Limit})
	}

	out := make([]*AuditEntry, 0, limit)
	for i := len(e.auditLog) - 1; i >= 0 && len(out) < limit; i-- {
		entry := e.auditLog[i]
		if f.TenantID != "" && entry.TenantID != f.TenantID {
			continue
		}
		if f.ActorUserID != "" && entry.ActorUserID != f.ActorUserID {
			continue
		}
		if f.Action != "" && entry.Action != f.Action {
			continue
		}
		if f.TargetType != "" && entry.TargetType != f.TargetType {
			continue
		}
		if f.TargetID != "" && entry.TargetID != f.TargetID {
			continue
		}
		if f.RequestID != "" && entry.RequestID != f.RequestID {
			continue
		}
		if f.FromAt != nil && entry.CreatedAt.Before(*f.FromAt) {
			continue
		}
		if f.ToAt != nil && entry.CreatedAt.After(*f.ToAt) {
			continue
		}
		out = append(out, deepCopy(entry))
	}
	return out, nil
}
