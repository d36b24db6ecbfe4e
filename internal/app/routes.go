// internal/app/routes.go
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/membership"
	"libris/internal/observability"
	"libris/internal/respond"
	"libris/internal/reviews"
	"libris/internal/stats"
)

func (a *App) newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(a.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:         int(12 * time.Hour / time.Second),
	}))

	catalogSvc := catalog.NewService(a.db)
	membershipSvc := membership.NewService(a.db,
		a.cfg.Circulation.RegistrationRatePerMinute, a.cfg.Circulation.RegistrationBurst)
	circulationSvc := circulation.NewService(a.db,
		observability.NewLendingMetrics(), a.cfg.Circulation.LoanPeriodDays)
	reviewsSvc := reviews.NewService(a.db)
	statsSvc := stats.NewService(a.db)

	circulationHandler := circulation.NewHandler(circulationSvc)

	r.Get("/health", a.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/books", catalog.NewHandler(catalogSvc).Routes())
		r.Mount("/users", membership.NewHandler(membershipSvc).Routes(circulationHandler.HandleHistory))
		r.Mount("/borrowings", circulationHandler.Routes())
		r.Mount("/reviews", reviews.NewHandler(reviewsSvc).Routes())
		r.Get("/stats", stats.NewHandler(statsSvc).HandleSummary)
	})

	return r
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "error", "db": false})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "ok", "db": true})
}
