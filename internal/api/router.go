package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/veritaslab/veritas/internal/api/handlers"
	mw "github.com/veritaslab/veritas/internal/api/middleware"
	"github.com/veritaslab/veritas/internal/buildconfig"
	"github.com/veritaslab/veritas/internal/config"
	"github.com/veritaslab/veritas/internal/domain"
	"github.com/veritaslab/veritas/internal/service"
	"github.com/veritaslab/veritas/internal/store"
	"go.uber.org/zap"
)

// App holds the router and the engine services behind it.
type App struct {
	Router    *chi.Mux
	Ingest    *service.IngestService
	Lineage   *service.LineageService
	Consensus *service.ConsensusService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(logger *zap.Logger) *App {
	// Stores
	vectorStore := store.NewVectorStore()
	lineageStore := store.NewLineageStore()

	thresholds := config.Thresholds()

	// Services
	lineageSvc := service.NewLineageService(lineageStore, logger)
	detector := service.NewContradictionDetector(config.NumericDivergenceLimit())
	ingestSvc := service.NewIngestService(vectorStore, lineageSvc, detector, thresholds, logger)
	consensusSvc := service.NewConsensusService(vectorStore, thresholds, config.ConsensusCacheTTL(), logger)

	// Every effective merge drops the cached consensus view.
	ingestSvc.SetSnapshotInvalidator(consensusSvc)

	// Handlers
	observationHandler := handlers.NewObservationHandler(ingestSvc)
	lineageHandler := handlers.NewLineageHandler(lineageSvc)
	vectorHandler := handlers.NewVectorHandler(consensusSvc)
	consensusHandler := handlers.NewConsensusHandler(consensusSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Ingest:    ingestSvc,
		Lineage:   lineageSvc,
		Consensus: consensusSvc,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(vectorStore))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKeys()))

		r.Post("/observations", observationHandler.Ingest)

		r.Route("/lineage", func(r chi.Router) {
			r.Post("/", lineageHandler.Record)
			r.Get("/independence", lineageHandler.Independence)
			r.Get("/upstreams", lineageHandler.Upstreams)
			r.Get("/convergences", lineageHandler.Convergences)
		})

		r.Route("/vectors", func(r chi.Router) {
			r.Get("/", vectorHandler.GetByClaim)
			r.Get("/{claimHash}", vectorHandler.GetByClaimHash)
		})

		r.Get("/consensus", consensusHandler.List)
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that only serve.
func NewRouter(logger *zap.Logger) *chi.Mux {
	return NewApp(logger).Router
}

func healthHandler(vectors domain.VectorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"version": buildconfig.Version(),
			"vectors": vectors.Len(),
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.VectorStore  = (*store.VectorStore)(nil)
	_ domain.LineageGraph = (*store.LineageStore)(nil)
)
