package api

import (
	"net/http"
	"strings"

	"booking-hold-service/internal/engine"
	reqdto "booking-hold-service/internal/handler/dto/request"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/handler/middleware"
	"booking-hold-service/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HoldHandler struct {
	commands usecase.Commands
	queries  usecase.Queries
}

func NewHoldHandler(commands usecase.Commands, queries usecase.Queries) *HoldHandler {
	return &HoldHandler{commands: commands, queries: queries}
}

// @Summary Create hold
// @Description Claim resource slots and inventory quantities atomically for a limited time
// @Tags holds
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Fallback for the body idempotency_key"
// @Param request body reqdto.CreateHoldRequest true "Hold request"
// @Success 201 {object} engine.Hold
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /holds [post]
func (h *HoldHandler) CreateHold(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req reqdto.CreateHoldRequest
	if !bindJSON(c, &req) {
		return
	}

	// the authenticated identity is authoritative; a contradicting body actor
	// is an impersonation attempt, not a fallback
	if req.ActorUserID != nil {
		bodyActor := strings.TrimSpace(*req.ActorUserID)
		if bodyActor != "" && bodyActor != actor.UserID {
			httperr.Abort(c, http.StatusForbidden, engine.CodeForbidden,
				"actor_user_id does not match authenticated user", map[string]any{"actor_user_id": bodyActor})
			return
		}
	}

	in := req.ToInput(actor.TenantID, actor.UserID, middleware.GetRequestID(c), c.GetHeader("Idempotency-Key"))
	hold, err := h.commands.CreateHold(c.Request.Context(), in)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hold)
}

// @Summary Get hold
// @Description Visible to the creating user and to admins
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} engine.Hold
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /holds/{id} [get]
func (h *HoldHandler) GetHold(c *gin.Context) {
	actor := middleware.GetActor(c)

	hold, err := h.queries.GetHold(c.Request.Context(), c.Param("id"), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, hold)
}

// @Summary List holds
// @Tags holds
// @Produce json
// @Param status query string false "ACTIVE, CONFIRMED, CANCELLED or EXPIRED"
// @Param created_by query string false "Filter by creating user"
// @Success 200 {array} engine.Hold
// @Router /holds [get]
func (h *HoldHandler) ListHolds(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	status, ok := holdStatusQuery(c)
	if !ok {
		return
	}

	holds, err := h.queries.ListHolds(c.Request.Context(), engine.HoldFilter{
		TenantID:        tenantID,
		CreatedByUserID: strings.TrimSpace(c.Query("created_by")),
		Status:          status,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, holds)
}

// @Summary Confirm hold
// @Description Convert an active hold into durable bookings and reservations
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} engine.ConfirmResult
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /holds/{id}/confirm [post]
func (h *HoldHandler) ConfirmHold(c *gin.Context) {
	actor := middleware.GetActor(c)

	result, err := h.commands.ConfirmHold(c.Request.Context(), c.Param("id"), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Cancel hold
// @Tags holds
// @Produce json
// @Param id path string true "Hold ID"
// @Success 200 {object} engine.Hold
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /holds/{id}/cancel [post]
func (h *HoldHandler) CancelHold(c *gin.Context) {
	actor := middleware.GetActor(c)

	hold, err := h.commands.CancelHold(c.Request.Context(), c.Param("id"), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, hold)
}
