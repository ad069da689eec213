// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/burgermaster/blendcalc/internal/infrastructure/config"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/handlers"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/middleware"
	"github.com/burgermaster/blendcalc/internal/infrastructure/monitoring"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// compressibleTypes are the content types the compressor encodes
var compressibleTypes = []string{
	"application/json",
	"application/x-yaml",
	"text/plain",
	"text/markdown",
}

// APIServer represents the JSON API HTTP server
type APIServer struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	api     *handlers.APIHandlers
	openAPI *OpenAPIHandler
	metrics *monitoring.MetricsCollector
	limiter *middleware.RateLimiter
}

// NewAPIServer creates a new API server instance. metrics and aiHealth may
// be nil.
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	service inbound.BlendService,
	aiHealth handlers.AIHealth,
	metrics *monitoring.MetricsCollector,
) *APIServer {
	logger := log.Named("http")
	s := &APIServer{
		config:  cfg,
		logger:  logger,
		api:     handlers.NewAPIHandlers(service, aiHealth, logger, cfg.App.Version),
		openAPI: NewOpenAPIHandler(logger),
		metrics: metrics,
	}
	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, logger)
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	return s
}

func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}
	if s.config.Server.EnableCompression {
		compressor := chimiddleware.NewCompressor(5, compressibleTypes...)
		compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
			return brotli.NewWriterLevel(w, level)
		})
		r.Use(compressor.Handler)
	}
	r.Use(middleware.MaxBody(s.config.Server.MaxBodyBytes))

	r.Get("/health", s.api.HealthCheck)
	if s.metrics != nil && s.config.Monitoring.MetricsEnabled {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", s.setupAPIV1Routes)

	return r
}

func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	h := s.api

	r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
	r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)

	r.Get("/state", h.GetState)
	r.Delete("/state", h.ResetState)
	r.Get("/calculation", h.GetCalculation)
	r.Post("/calculate", h.Calculate)

	r.Route("/recipe", func(r chi.Router) {
		r.Put("/", h.ReplaceRecipe)
		r.Put("/fat-ratio", h.SetFatRatio)
		r.Put("/unit-weight", h.SetUnitWeight)
		r.Put("/size/{id}", h.SelectSize)
		r.Post("/meats", h.AddMeat)
		r.Put("/meats/{index}", h.UpdateMeat)
		r.Delete("/meats/{index}", h.RemoveMeat)

		r.Group(func(r chi.Router) {
			s.limitAI(r)
			r.Post("/extract", h.ExtractRecipe)
		})
	})

	r.Put("/units", h.SetUnits)
	r.Put("/prices/{name}", h.SetPrice)
	r.Put("/selling-price", h.SetSellingPrice)

	r.Get("/sizes", h.ListSizes)
	r.Get("/categories", h.ListCategories)
	r.Get("/shopping-list", h.ShoppingList)
	r.Get("/production-sheet", h.ProductionSheet)

	r.Route("/suggestions", func(r chi.Router) {
		r.Post("/apply", h.ApplySuggestion)
		r.Group(func(r chi.Router) {
			s.limitAI(r)
			r.Post("/search", h.SearchSuggestions)
		})
	})
}

// limitAI rate limits the routes that reach the AI provider. Extraction and
// search share one budget per client.
func (s *APIServer) limitAI(r chi.Router) {
	if s.limiter != nil {
		r.Use(s.limiter.Handler)
	}
}

// Handler returns the routed handler
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
// The listener is bound before Start returns so startup errors surface.
func (s *APIServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting API server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
