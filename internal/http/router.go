package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authsvc "github.com/MrJamesThe3rd/khata/internal/auth"
	"github.com/MrJamesThe3rd/khata/internal/http/auth"
	"github.com/MrJamesThe3rd/khata/internal/http/backup"
	"github.com/MrJamesThe3rd/khata/internal/http/ledger"
	"github.com/MrJamesThe3rd/khata/internal/http/overview"
	"github.com/MrJamesThe3rd/khata/internal/http/transfer"
)

// Handlers groups the v1 API handlers.
type Handlers struct {
	Customers         *ledger.Handler
	Creditors         *ledger.Handler
	CustomerTransfers *transfer.Handler
	CreditorTransfers *transfer.Handler
	Archive           *transfer.Archive
	Backup            *backup.Handler
	Overview          *overview.Handler
	Auth              *auth.Handler
}

func New(h Handlers, authenticator *authsvc.Service, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", h.Auth.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Middleware)

			r.Route("/customers", func(r chi.Router) {
				h.CustomerTransfers.Routes(r)
				h.Customers.Routes(r)
			})

			r.Route("/creditors", func(r chi.Router) {
				h.CreditorTransfers.Routes(r)
				h.Creditors.Routes(r)
			})

			r.Method(http.MethodGet, "/export", h.Archive)
			r.Route("/backup", h.Backup.Routes)
			h.Overview.Routes(r)
		})
	})

	return router
}
