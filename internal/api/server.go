// Package api provides the HTTP API server and handlers for the reading log.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readlog/readlog-server/internal/http/response"
	"github.com/readlog/readlog-server/internal/ratelimit"
	"github.com/readlog/readlog-server/internal/store/sqlite"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// LLMRequestsPerMinute limits per-client calls to routes that reach the text generator or the catalog.
	LLMRequestsPerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *sqlite.Store
	services   *Services
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	llmLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	perMinute := opts.LLMRequestsPerMinute
	if perMinute <= 0 {
		perMinute = 20
	}

	s := &Server{
		store:      store,
		services:   services,
		router:     chi.NewRouter(),
		logger:     logger,
		llmLimiter: ratelimit.New(ratelimit.PerInterval(perMinute, time.Minute), perMinute/2+1),
	}

	s.setupMiddleware(opts)

	config := huma.DefaultConfig("readlog API", "1.0.0")
	config.Info.Description = "Personal reading log with reading statistics and a concept knowledge map"
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.llmLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found: "+r.URL.Path, s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerCategoryRoutes()
	s.registerGoalRoutes()
	s.registerStatsRoutes()
	s.registerConceptRoutes()
	s.registerVocabularyRoutes()
}
