/*
server.go - HTTP router and middleware configuration

Router: chi, with the same middleware stack the teacher's server.go
used (Logger, Recoverer, RequestID, CORS) — generalized from the
teacher's PTO/rewards route groups to the route table in §6: overtime
logs, employee ledger/progress views, certifications, admin
operations, holidays, and configuration. There is no bundled frontend
for this surface, so the teacher's static-file fallback is dropped.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with every route in §6 wired to h.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/overtime-logs", func(r chi.Router) {
			r.Get("/", h.ListLogs)
			r.Post("/", h.SubmitLogs)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}/ledger", h.EmployeeLedger)
			r.Get("/{id}/progress", h.EmployeeProgress)
		})

		r.Route("/certifications", func(r chi.Router) {
			r.Get("/", h.ListCertifications)
			r.Post("/", h.CertifyPeriod)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/expire-sweep", h.ExpireSweep)
			r.Get("/uncertified-stats", h.UncertifiedStats)
			r.Post("/adjustments", h.Adjust)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
		})

		r.Route("/configuration", func(r chi.Router) {
			r.Get("/", h.GetConfiguration)
			r.Put("/{key}", h.SetConfiguration)
		})

		r.Route("/libraries", func(r chi.Router) {
			r.Get("/{category}", h.GetLibrary)
			r.Put("/{category}", h.SetLibrary)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
