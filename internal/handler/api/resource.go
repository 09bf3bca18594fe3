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

type ResourceHandler struct {
	commands usecase.Commands
	queries  usecase.Queries
}

func NewResourceHandler(commands usecase.Commands, queries usecase.Queries) *ResourceHandler {
	return &ResourceHandler{commands: commands, queries: queries}
}

// @Summary Create resource
// @Tags resources
// @Accept json
// @Produce json
// @Param request body reqdto.CreateResourceRequest true "Resource definition"
// @Success 201 {object} engine.Resource
// @Failure 400 {object} httperr.Response
// @Router /resources [post]
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req reqdto.CreateResourceRequest
	if !bindJSON(c, &req) {
		return
	}

	resource, err := h.commands.CreateResource(c.Request.Context(), req.ToInput(actor.TenantID))
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

// @Summary List resources
// @Tags resources
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Success 200 {array} engine.Resource
// @Router /resources [get]
func (h *ResourceHandler) ListResources(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	status, ok := catalogStatusQuery(c)
	if !ok {
		return
	}

	resources, err := h.queries.ListResources(c.Request.Context(), engine.ResourceFilter{
		TenantID: tenantID,
		Status:   status,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// @Summary Patch resource
// @Tags resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param request body reqdto.PatchResourceRequest true "Fields to update"
// @Success 200 {object} engine.Resource
// @Failure 404 {object} httperr.Response
// @Router /resources/{id} [patch]
func (h *ResourceHandler) PatchResource(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req reqdto.PatchResourceRequest
	if !bindJSON(c, &req) {
		return
	}

	resource, err := h.commands.UpdateResource(c.Request.Context(), c.Param("id"), req.ToPatch(), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// @Summary Resource availability
// @Description Partition a time range into slots and report each slot's state
// @Tags resources
// @Produce json
// @Param id path string true "Resource ID"
// @Param start_at query string true "RFC 3339 range start"
// @Param end_at query string true "RFC 3339 range end (exclusive)"
// @Param granularity_minutes query int false "Slot size override"
// @Param exclude_hold_id query string false "Ignore the named hold's own claims"
// @Success 200 {object} engine.ResourceAvailability
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /resources/{id}/availability [get]
func (h *ResourceHandler) GetAvailability(c *gin.Context) {
	actor := middleware.GetActor(c)

	startAt, ok := requiredTimeQuery(c, "start_at")
	if !ok {
		return
	}
	endAt, ok := requiredTimeQuery(c, "end_at")
	if !ok {
		return
	}
	granularity, ok := intQuery(c, "granularity_minutes")
	if !ok {
		return
	}

	availability, err := h.queries.GetResourceAvailability(c.Request.Context(), c.Param("id"), actor.TenantID, engine.AvailabilityQuery{
		StartAt:            startAt,
		EndAt:              endAt,
		GranularityMinutes: granularity,
		ExcludeHoldID:      strings.TrimSpace(c.Query("exclude_hold_id")),
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
