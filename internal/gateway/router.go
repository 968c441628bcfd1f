package gateway

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/infra"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/middleware"
)

// NewRouter wires the gateway endpoints.
func NewRouter(app *App, logger infra.Logger, allowedOrigins []string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Logger(logger))

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/state", func(r chi.Router) {
		r.Get("/", app.GetState)
		r.Get("/stream", app.StreamState)
		r.Get("/ws", app.StateSocket)
	})

	r.Post("/v1/actions", app.PostAction)

	return r
}
