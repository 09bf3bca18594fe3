package components

import (
	"booking-hold-service/internal/handler"
	"booking-hold-service/internal/handler/api"
	"booking-hold-service/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewResourceHandler,
		api.NewItemHandler,
		api.NewHoldHandler,
		api.NewArtifactHandler,
		api.NewAuditHandler,
		api.NewSystemHandler,
		middleware.NewAuthMiddleware,
		newHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func newHandlers(
	resource *api.ResourceHandler,
	item *api.ItemHandler,
	hold *api.HoldHandler,
	artifact *api.ArtifactHandler,
	audit *api.AuditHandler,
	system *api.SystemHandler,
) handler.Handlers {
	return handler.Handlers{
		Resource: resource,
		Item:     item,
		Hold:     hold,
		Artifact: artifact,
		Audit:    audit,
		System:   system,
	}
}
