package server

import (
	"net/http"
	"time"

	"github.com/barretodotcom/inmocrm/api/requests"
	"github.com/barretodotcom/inmocrm/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.With(middleware.AllowContentType("application/json")).Post("/auth/login", s.Login)

			r.Group(func(r chi.Router) {
				r.Use(s.RequireAuth)
				r.Get("/reports/soft-delete/{table}", s.SoftDeleteReport)
				r.Get("/reports/codes", s.CodesReport)
				r.Get("/reports/payments", s.PaymentsReport)
				r.Get("/reports/inquiries", s.InquiriesReport)
				r.Get("/breadcrumbs", s.Breadcrumbs)
				r.Get("/settings/maintenance", s.GetMaintenance)

				r.Group(func(r chi.Router) {
					r.Use(s.RequireAdmin)
					r.Post("/records/{table}/{id}/delete", s.SoftDeleteRecord)
					r.Post("/records/{table}/{id}/restore", s.RestoreRecord)
					r.With(middleware.AllowContentType("application/json")).Put("/settings/maintenance", s.PutMaintenance)
				})
			})
		})

		// no timeout: the connection lives as long as the admin tab
		r.Get("/ws", s.ServeWS)
	})

	return r
}

// ServeWS sends the current maintenance state once the token is accepted.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	initial := func() any {
		ev, err := s.MaintenanceEvent(r)
		if err != nil {
			s.Log.Warn("maintenance state unavailable for ws client", zap.Error(err))
			return nil
		}
		return ev
	}
	ws.Serve(s.Hub, requests.ClaimsProvider{Secret: s.JwtSecret}, initial, w, r)
}
