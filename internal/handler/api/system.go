package api

import (
	"net/http"

	reqdto "booking-hold-service/internal/handler/dto/request"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	commands usecase.Commands
}

func NewSystemHandler(commands usecase.Commands) *SystemHandler {
	return &SystemHandler{commands: commands}
}

// @Summary Expire overdue holds
// @Description Sweep every ACTIVE hold whose expiry has passed; meant to be driven by a scheduler
// @Tags system
// @Accept json
// @Produce json
// @Param request body reqdto.ExpireRequest false "Optional evaluation instant"
// @Success 200 {object} map[string]int
// @Router /system/expire [post]
func (h *SystemHandler) ExpireHolds(c *gin.Context) {
	var req reqdto.ExpireRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	count, err := h.commands.ExpireHolds(c.Request.Context(), req.Now)
	if err != nil {
		httperr.AbortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
