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

type ArtifactHandler struct {
	commands usecase.Commands
	queries  usecase.Queries
}

func NewArtifactHandler(commands usecase.Commands, queries usecase.Queries) *ArtifactHandler {
	return &ArtifactHandler{commands: commands, queries: queries}
}

// @Summary List bookings
// @Tags bookings
// @Produce json
// @Param resource_id query string false "Filter by resource"
// @Param status query string false "CONFIRMED or CANCELLED"
// @Param start_at query string false "Window start (RFC 3339)"
// @Param end_at query string false "Window end (RFC 3339)"
// @Success 200 {array} engine.Booking
// @Router /bookings [get]
func (h *ArtifactHandler) ListBookings(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	status, ok := artifactStatusQuery(c)
	if !ok {
		return
	}
	startAt, ok := timeQuery(c, "start_at")
	if !ok {
		return
	}
	endAt, ok := timeQuery(c, "end_at")
	if !ok {
		return
	}

	bookings, err := h.queries.ListBookings(c.Request.Context(), engine.BookingFilter{
		TenantID:   tenantID,
		ResourceID: strings.TrimSpace(c.Query("resource_id")),
		Status:     status,
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// @Summary Cancel booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} engine.Booking
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *ArtifactHandler) CancelBooking(c *gin.Context) {
	actor := middleware.GetActor(c)

	booking, err := h.commands.CancelBooking(c.Request.Context(), c.Param("id"), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// @Summary List reservations
// @Tags reservations
// @Produce json
// @Param item_id query string false "Filter by item"
// @Param status query string false "CONFIRMED or CANCELLED"
// @Success 200 {array} engine.Reservation
// @Router /reservations [get]
func (h *ArtifactHandler) ListReservations(c *gin.Context) {
	actor := middleware.GetActor(c)
	tenantID, ok := scopedTenant(c, actor)
	if !ok {
		return
	}
	status, ok := artifactStatusQuery(c)
	if !ok {
		return
	}

	reservations, err := h.queries.ListReservations(c.Request.Context(), engine.ReservationFilter{
		TenantID: tenantID,
		ItemID:   strings.TrimSpace(c.Query("item_id")),
		Status:   status,
	})
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// @Summary Cancel reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} engine.Reservation
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/cancel [post]
func (h *ArtifactHandler) CancelReservation(c *gin.Context) {
	actor := middleware.GetActor(c)

	reservation, err := h.commands.CancelReservation(c.Request.Context(), c.Param("id"), actor.Engine())
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}
