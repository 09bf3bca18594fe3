package api

import (
	"net/http"

	"booking-hold-service/internal/engine"
	reqdto "booking-hold-service/internal/handler/dto/request"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/handler/middleware"
	"booking-hold-service/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	commands usecase.Commands
	queries  usecase.Queries
}

func NewItemHandler(commands usecase.Commands, queries usecase.Queries) *ItemHandler {
	return &ItemHandler{commands: commands, queries: queries}
}

// @Summary Create inventory item
// @Tags items
// @Accept json
// @Produce json
// @Param request body reqdto.CreateItemRequest true "Item definition"
// @Success 201 {object} engine.Item
// @Failure 400 {object} httperr.Response
// @Router /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req reqdto.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.commands.CreateItem(c.Request.Context(), req.ToInput(actor.TenantID))
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// @Summary List inventory items
// @Tags items
// @Produce json
// @Param status query string false "ACTIVE or INACTIVE"
// @Success 200 {array} engine.Item
// @Router /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	status, ok := catalogStatusQuery(c)
	if !ok {
		return
	}

	items, err := h.queries.ListItems(c.Request.Context(), engine.ItemFilter{
		TenantID: tenantID,
		Status:   status,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Patch inventory item
// @Description Shrinking total_quantity below the reserved amount is refused
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param request body reqdto.PatchItemRequest true "Fields to update"
// @Success 200 {object} engine.Item
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /items/{id} [patch]
func (h *ItemHandler) PatchItem(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req reqdto.PatchItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.commands.UpdateItem(c.Request.Context(), c.Param("id"), req.ToPatch(), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary Item availability
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} engine.ItemAvailability
// @Failure 404 {object} httperr.Response
// @Router /items/{id}/availability [get]
func (h *ItemHandler) GetAvailability(c *gin.Context) {
	actor := middleware.GetActor(c)

	availability, err := h.queries.GetItemAvailability(c.Request.Context(), c.Param("id"), actor.TenantID)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
