package api

import (
	"net/http"
	"strings"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/handler/middleware"
	"booking-hold-service/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	queries usecase.Queries
}

func NewAuditHandler(queries usecase.Queries) *AuditHandler {
	return &AuditHandler{queries: queries}
}

// @Summary List audit log entries
// @Description Newest first; limit defaults to 50 and caps at 200
// @Tags audit
// @Produce json
// @Param actor_user_id query string false "Filter by acting user"
// @Param action query string false "Filter by action name"
// @Param target_type query string false "Filter by target type"
// @Param target_id query string false "Filter by target id"
// @Param request_id query string false "Filter by request id"
// @Param from_at query string false "Window start (RFC 3339)"
// @Param to_at query string false "Window end (RFC 3339)"
// @Param limit query int false "Max entries"
// @Success 200 {array} engine.AuditEntry
// @Failure 400 {object} httperr.Response
// @Router /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	fromAt, ok := timeQuery(c, "from_at")
	if !ok {
		return
	}
	toAt, ok := timeQuery(c, "to_at")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	filter := engine.AuditFilter{
		TenantID:    tenantID,
		ActorUserID: strings.TrimSpace(c.Query("actor_user_id")),
		Action:      strings.TrimSpace(c.Query("action")),
		TargetType:  strings.TrimSpace(c.Query("target_type")),
		TargetID:    strings.TrimSpace(c.Query("target_id")),
		RequestID:   strings.TrimSpace(c.Query("request_id")),
		FromAt:      fromAt,
		ToAt:        toAt,
	}
	if limit != nil {
		filter.Limit = *limit
	}

	entries, err := h.queries.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
