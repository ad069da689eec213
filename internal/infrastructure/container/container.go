// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"time"

	aiapp "github.com/burgermaster/blendcalc/internal/application/ai"
	"github.com/burgermaster/blendcalc/internal/application/calculator"
	aiinfra "github.com/burgermaster/blendcalc/internal/infrastructure/ai"
	"github.com/burgermaster/blendcalc/internal/infrastructure/ai/gemini"
	"github.com/burgermaster/blendcalc/internal/infrastructure/catalog"
	"github.com/burgermaster/blendcalc/internal/infrastructure/config"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/apiserver"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/handlers"
	"github.com/burgermaster/blendcalc/internal/infrastructure/monitoring"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/burgermaster/blendcalc/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigPath is the configuration file to load. Empty searches the default
// locations.
type ConfigPath string

// New returns the application graph for the given configuration file
func New(configPath string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(configPath)),
		Module,
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	StorageModule,
	CacheModule,

	// Application modules
	AIModule,
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) *config.Loader {
		return config.NewLoader(string(path))
	},
	func(loader *config.Loader) (*config.Config, error) {
		return loader.Load()
	},
)

// LoggerModule provides logging. The atomic level lets config reloads
// change verbosity without a restart.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.Build(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	func(log *zap.Logger) *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	},
	func(reg *prometheus.Registry, log *zap.Logger) *monitoring.MetricsCollector {
		return monitoring.NewMetricsCollector(reg, reg, log)
	},
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    "blendcalc",
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			Endpoint:       cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.TracingEnabled,
		}, log)
	},
)

// StorageModule provides the calculator state store
var StorageModule = fx.Provide(
	newRedisConnector,
	NewStateStore,
)

// CacheModule provides caching for AI search results
var CacheModule = fx.Provide(
	NewCacheRepository,
)

// AIModule provides the blend catalog, the AI provider and its health check
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*catalog.Catalog, error) {
		if cfg.Catalog.Path == "" {
			return catalog.Default()
		}
		log.Info("Loading blend catalog", zap.String("path", cfg.Catalog.Path))
		return catalog.LoadFile(cfg.Catalog.Path)
	},
	newGeminiClient,
	newBlendAIService,
	newAIHealthChecker,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		func(store outbound.StateStore, ai *aiapp.BlendAIService, metrics *monitoring.MetricsCollector, log *zap.Logger) *calculator.Service {
			return calculator.NewService(store, ai, log, calculator.WithMetrics(metrics))
		},
		fx.As(new(inbound.BlendService)),
	),
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		service inbound.BlendService,
		health *aiinfra.HealthChecker,
		metrics *monitoring.MetricsCollector,
	) *apiserver.APIServer {
		var aiHealth handlers.AIHealth
		if health != nil {
			aiHealth = health
		}
		return apiserver.NewAPIServer(cfg, log, service, aiHealth, metrics)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// newGeminiClient returns nil when AI is disabled
func newGeminiClient(cfg *config.Config, log *zap.Logger) *gemini.Client {
	if cfg.AI.Provider != config.ProviderGemini {
		log.Info("AI provider disabled, search is served from the catalog")
		return nil
	}
	return gemini.NewClient(gemini.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		SearchModel: cfg.AI.SearchModel,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.Timeout,
	}, log)
}

func newBlendAIService(
	cfg *config.Config,
	client *gemini.Client,
	cache outbound.CacheRepository,
	blends *catalog.Catalog,
	metrics *monitoring.MetricsCollector,
	log *zap.Logger,
) *aiapp.BlendAIService {
	var primary outbound.BlendAI
	provider := config.ProviderNone
	if client != nil {
		primary = gemini.NewCachedClient(client, cache, cfg.AI.CacheTTL, log)
		provider = config.ProviderGemini
	}

	return aiapp.NewBlendAIService(primary, provider, blends, metrics, log,
		aiapp.WithRequestsPerMinute(cfg.AI.RequestsPerMinute, cfg.AI.Burst),
		aiapp.WithCircuitBreaker(cfg.AI.BreakerFailures, cfg.AI.BreakerCooldown))
}

func newAIHealthChecker(client *gemini.Client, log *zap.Logger) *aiinfra.HealthChecker {
	if client == nil {
		return aiinfra.NewHealthChecker(config.ProviderNone, nil, true, log)
	}
	return aiinfra.NewHealthChecker(config.ProviderGemini, client, true, log)
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	loader *config.Loader,
	level zap.AtomicLevel,
	log *zap.Logger,
	server *apiserver.APIServer,
	tracing *monitoring.TracingProvider,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Burger Master Pro",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			if file := loader.ConfigFile(); file != "" {
				watchLogLevel(loader, level, log)
				log.Info("Watching configuration file", zap.String("file", file))
			}

			if err := server.Start(); err != nil {
				return fmt.Errorf("failed to start HTTP server: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Burger Master Pro")

			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout(cfg))
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}

// watchLogLevel applies log level changes from the config file
func watchLogLevel(loader *config.Loader, level zap.AtomicLevel, log *zap.Logger) {
	loader.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn("Ignoring invalid configuration change", zap.Error(err))
			return
		}
		next := logger.ParseLevel(cfg.App.LogLevel)
		if next != level.Level() {
			log.Info("Log level changed",
				zap.String("from", level.Level().String()),
				zap.String("to", next.String()))
			level.SetLevel(next)
		}
	})
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 30 * time.Second
}
