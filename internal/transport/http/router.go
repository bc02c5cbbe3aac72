package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-user-registration/internal/application/registration"
	"github.com/go-user-registration/internal/config"
	"github.com/go-user-registration/internal/transport/http/handler"
	appmiddleware "github.com/go-user-registration/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router. The returned stop func releases
// background resources held by middleware; call it after the server shuts down.
func NewRouter(cfg *config.Config, svc registration.Service) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	registerRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RegisterRateLimit), cfg.RegisterRateBurst)

	healthH := handler.NewHealthHandler(svc)
	userH := handler.NewUserHandler(svc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(registerRL.Limit).Post("/users", userH.Register)
		r.Get("/users", userH.List)
		r.Delete("/users/{email}", userH.Delete)
		r.Post("/users/delete", userH.DeleteMany)
	})

	return r, registerRL.Stop
}
