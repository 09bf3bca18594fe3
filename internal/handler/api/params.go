package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/handler/middleware"

	"github.com/gin-gonic/gin"
)

// Query parameter parsing shared by the read endpoints. Every parse failure
// maps to INVALID_QUERY so clients get one stable code for malformed filters.

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.Abort(c, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON", map[string]any{
			"reason": err.Error(),
		})
		return false
	}
	return true
}

func catalogStatusQuery(c *gin.Context) (*engine.CatalogStatus, bool) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, true
	}
	status := engine.CatalogStatus(strings.ToUpper(raw))
	if status != engine.CatalogStatusActive && status != engine.CatalogStatusInactive {
		httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
			"status must be ACTIVE or INACTIVE", map[string]any{"status": raw})
		return nil, false
	}
	return &status, true
}

func holdStatusQuery(c *gin.Context) (*engine.HoldStatus, bool) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, true
	}
	status := engine.HoldStatus(strings.ToUpper(raw))
	switch status {
	case engine.HoldStatusActive, engine.HoldStatusConfirmed, engine.HoldStatusCancelled, engine.HoldStatusExpired:
		return &status, true
	}
	httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
		"status must be ACTIVE, CONFIRMED, CANCELLED or EXPIRED", map[string]any{"status": raw})
	return nil, false
}

func artifactStatusQuery(c *gin.Context) (*engine.ArtifactStatus, bool) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, true
	}
	status := engine.ArtifactStatus(strings.ToUpper(raw))
	if status != engine.ArtifactStatusConfirmed && status != engine.ArtifactStatusCancelled {
		httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
			"status must be CONFIRMED or CANCELLED", map[string]any{"status": raw})
		return nil, false
	}
	return &status, true
}

func timeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
			name+" must be an RFC 3339 timestamp", map[string]any{name: raw})
		return nil, false
	}
	utc := t.UTC()
	return &utc, true
}

func requiredTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	t, ok := timeQuery(c, name)
	if !ok {
		return time.Time{}, false
	}
	if t == nil {
		httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
			name+" is required", map[string]any{name: ""})
		return time.Time{}, false
	}
	return *t, true
}

func intQuery(c *gin.Context, name string) (*int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httperr.Abort(c, http.StatusBadRequest, engine.CodeInvalidQuery,
			name+" must be an integer", map[string]any{name: raw})
		return nil, false
	}
	return &n, true
}

// scopedTenant resolves the effective tenant for a list endpoint. Passing an
// explicit tenant_id other than the caller's own is refused rather than
// silently narrowed, so the mistake is visible.
func scopedTenant(c *gin.Context, actor middleware.ActorContext) (string, bool) {
	requested := strings.TrimSpace(c.Query("tenant_id"))
	if requested != "" && requested != actor.TenantID {
		httperr.Abort(c, http.StatusForbidden, engine.CodeForbidden,
			"cannot query another tenant", map[string]any{"tenant_id": requested})
		return "", false
	}
	return actor.TenantID, true
}
