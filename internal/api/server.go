// Package api exposes the PageTrail services over HTTP using huma on chi.
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
	"github.com/listenupapp/pagetrail-server/internal/ratelimit"
	"github.com/listenupapp/pagetrail-server/internal/search"
	"github.com/listenupapp/pagetrail-server/internal/service"
	"github.com/listenupapp/pagetrail-server/internal/store"
)

// Services groups the business services used by the API server.
type Services struct {
	Readers  *service.ReaderService
	Progress *service.ProgressService
	Catalog  *service.CatalogService
}

// Options configures the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string
	Limiter     *ratelimit.KeyedRateLimiter // nil disables rate limiting
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	index    *search.BookIndex
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates the HTTP handler with middleware and all routes.
func NewServer(st store.Store, index *search.BookIndex, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(opts.CORSOrigins)))
	if opts.Limiter != nil {
		router.Use(RateLimitMiddleware(opts.Limiter, logger))
	}

	RegisterErrorHandler()
	humaConfig := huma.DefaultConfig("PageTrail API", opts.Version)
	api := humachi.New(router, humaConfig)

	s := &Server{
		store:    st,
		index:    index,
		services: services,
		router:   router,
		api:      api,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerBadgeRoutes()
	s.registerReaderRoutes()
	s.registerProgressRoutes()
	s.registerBookRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}
}
