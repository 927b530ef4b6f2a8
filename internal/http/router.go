package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ebill/internal/auth"
	"github.com/MrJamesThe3rd/ebill/internal/http/admin"
	authHandler "github.com/MrJamesThe3rd/ebill/internal/http/auth"
	"github.com/MrJamesThe3rd/ebill/internal/http/bill"
	"github.com/MrJamesThe3rd/ebill/internal/http/importcsv"
	"github.com/MrJamesThe3rd/ebill/internal/http/report"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

type Handlers struct {
	Auth    *authHandler.Handler
	Bills   *bill.Handler
	Reports *report.Handler
	Import  *importcsv.Handler
	Admin   *admin.Handler
}

func New(tokens *auth.Tokens, allowedOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokens))

			r.Route("/bills", h.Bills.Routes)
			r.Route("/reports", h.Reports.Routes)
			r.Route("/import", h.Import.Routes)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(user.RoleAdmin))
				h.Admin.Routes(r)
			})
		})
	})

	return router
}
