package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/MichealAPI/payly/docs"
	"github.com/MichealAPI/payly/internal/auth"
	"github.com/MichealAPI/payly/internal/metrics"
	"github.com/MichealAPI/payly/internal/middleware"
)

// NewRouter mounts the REST routes. Everything under /api/v1 requires a bearer token.
func NewRouter(balances BalanceReader, jwtManager *auth.JWTManager) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuthHTTP(jwtManager))
		r.Mount("/groups", NewHandler(balances).Routes())
	})

	return r
}
