package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"booking-hold-service/internal/handler/api"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/handler/middleware"
	"booking-hold-service/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Resource *api.ResourceHandler
	Item     *api.ItemHandler
	Hold     *api.HoldHandler
	Artifact *api.ArtifactHandler
	Audit    *api.AuditHandler
	System   *api.SystemHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, authMiddleware)
	setupRoutes(engine, h)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, authMiddleware *middleware.AuthMiddleware) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(authMiddleware.ResolveActor())
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())

	engine.NoRoute(func(c *gin.Context) {
		httperr.Abort(c, http.StatusNotFound, "NOT_FOUND", "route not found", map[string]any{"path": c.Request.URL.Path})
	})
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		httperr.Abort(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]any{
			"method": c.Request.Method,
		})
	})
}

func setupRoutes(engine *gin.Engine, h Handlers) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	adminOnly := middleware.RequireRole(middleware.RoleAdmin)
	anyRole := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMember, middleware.RoleViewer)
	holdWriters := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMember)
	identified := middleware.RequireUser()

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.RequireTenant())
	{
		resources := v1.Group("/resources")
		{
			addRoutes(resources, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Resource.CreateResource, Mw: []gin.HandlerFunc{adminOnly, identified}},
				{Method: http.MethodGet, Path: "", Handler: h.Resource.ListResources, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodPatch, Path: "/:id", Handler: h.Resource.PatchResource, Mw: []gin.HandlerFunc{adminOnly, identified}},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Resource.GetAvailability, Mw: []gin.HandlerFunc{anyRole}},
			})
		}

		items := v1.Group("/items")
		{
			addRoutes(items, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Item.CreateItem, Mw: []gin.HandlerFunc{adminOnly, identified}},
				{Method: http.MethodGet, Path: "", Handler: h.Item.ListItems, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodPatch, Path: "/:id", Handler: h.Item.PatchItem, Mw: []gin.HandlerFunc{adminOnly, identified}},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Item.GetAvailability, Mw: []gin.HandlerFunc{anyRole}},
			})
		}

		holds := v1.Group("/holds")
		{
			addRoutes(holds, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Hold.CreateHold, Mw: []gin.HandlerFunc{holdWriters, identified}},
				{Method: http.MethodGet, Path: "", Handler: h.Hold.ListHolds, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Hold.GetHold, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Hold.ConfirmHold, Mw: []gin.HandlerFunc{holdWriters, identified}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Hold.CancelHold, Mw: []gin.HandlerFunc{holdWriters, identified}},
			})
		}

		bookings := v1.Group("/bookings")
		{
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Artifact.ListBookings, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Artifact.CancelBooking, Mw: []gin.HandlerFunc{holdWriters, identified}},
			})
		}

		reservations := v1.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Artifact.ListReservations, Mw: []gin.HandlerFunc{anyRole}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Artifact.CancelReservation, Mw: []gin.HandlerFunc{holdWriters, identified}},
			})
		}

		addRoutes(v1, []route{
			{Method: http.MethodGet, Path: "/audit-logs", Handler: h.Audit.ListAuditLogs, Mw: []gin.HandlerFunc{adminOnly}},
			{Method: http.MethodPost, Path: "/system/expire", Handler: h.System.ExpireHolds, Mw: []gin.HandlerFunc{adminOnly}},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
