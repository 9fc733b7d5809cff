package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/delivery-storefront/internal/backend/httpx/middlewares"
)

type RouterOptions struct {
	// OperatorToken guards the staff endpoints. Empty leaves them open.
	OperatorToken string
	ServiceName   string
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMeta)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/products", handler.ListProducts)
	r.Get("/site/status", handler.GetSiteStatus)
	r.Post("/orders", handler.SubmitOrder)
	r.Get("/orders/{id}", handler.GetOrderByID)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireOperator(opts.OperatorToken))
		r.Patch("/site/status", handler.SetSiteStatus)
		r.Patch("/site/offline-message", handler.SetOfflineMessage)
		r.Post("/orders/{id}/actions", handler.ApplyOrderAction)
	})

	name := opts.ServiceName
	if name == "" {
		name = "dev-backend"
	}
	return otelhttp.NewHandler(r, name)
}
