package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ariel-research/budget-survey-sub001/internal/events"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/store"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Strategies   *strategy.Registry
	Store        store.Store
	Events       events.Client
	Cache        *simplex.Cache
	DefaultPairs int
	MaxPairs     int
	MaxDimension int
	AdminToken   string
	Logger       *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(RateLimitMiddleware(120))

	pairs := NewPairsHandler(d.Strategies, d.Store, d.Events, Limits{DefaultPairs: d.DefaultPairs, MaxPairs: d.MaxPairs, MaxDimension: d.MaxDimension}, d.Logger)
	strategies := NewStrategiesHandler(d.Strategies)
	batches := NewBatchesHandler(d.Store)
	admin := NewAdminHandler(d.Cache)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RespondentIDMiddleware)

		r.Post("/pairs", pairs.Create)
		r.Get("/strategies", strategies.List)
		r.Get("/strategies/{name}", strategies.Get)
		r.Get("/batches", batches.List)
		r.Get("/batches/{id}", batches.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.AdminToken))
			r.Get("/cache/stats", admin.CacheStats)
			r.Get("/admin/batches", batches.ListAll)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
