// Package container builds and owns the FindMyAI service graph shared by the
// API server and the operator CLI.
package container

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/auth"
	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/config"
	"github.com/bynikesh/findmyai-sub001/internal/database"
	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/importer"
	"github.com/bynikesh/findmyai-sub001/internal/importer/sources"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/bynikesh/findmyai-sub001/internal/pagemeta"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/search"
	"github.com/bynikesh/findmyai-sub001/internal/storage"
	"github.com/bynikesh/findmyai-sub001/internal/telemetry"
	"github.com/bynikesh/findmyai-sub001/internal/trending"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ServiceName identifies the backend in traces and health output
const ServiceName = "findmyai-backend"

// devJWTSecret signs tokens when no secret is configured outside production
const devJWTSecret = "findmyai-dev-secret"

// InitializationError reports the backends Build could not bring up.
// Err carries the underlying failure when there is a single cause.
type InitializationError struct {
	MissingDeps []string
	Err         error
}

func (e *InitializationError) Error() string {
	msg := "missing required dependencies: " + strings.Join(e.MissingDeps, ", ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Container holds all application dependencies.
// Optional backends (Redis, Elasticsearch, S3, AI provider) are nil when not configured.
type Container struct {
	cfg *config.Config

	// Core infrastructure
	db    *gorm.DB
	cache *cache.RedisClient
	repo  *repository.ToolRepository

	// Services
	auth     *auth.Service
	search   *search.Service
	uploader *storage.S3Uploader
	enricher *enrichment.Enricher
	importer *importer.Importer
	trending *trending.Calculator

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.Mutex
}

// Build connects every configured backend and wires the services on top.
// The database is required; every other backend degrades to "disabled" with a warning.
// Call Cleanup when done, even if Build returns an error.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{cfg: cfg}
	metrics.Initialize()

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.Config{
			ServiceName:  ServiceName,
			Environment:  cfg.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			Enabled:      true,
			SamplingRate: cfg.Telemetry.SamplingRate,
		})
		if err != nil {
			logger.WarnWithFields("Tracing disabled: failed to initialize tracer", err)
		} else if tp != nil {
			c.OnCleanup(tp.Shutdown)
		}
	}

	if err := database.Initialize(cfg); err != nil {
		return c, &InitializationError{MissingDeps: []string{"database"}, Err: err}
	}
	c.OnCleanup(func(context.Context) error { return database.Close() })
	if err := database.Migrate(); err != nil {
		return c, &InitializationError{MissingDeps: []string{"database"}, Err: fmt.Errorf("migrate: %w", err)}
	}
	c.db = database.DB
	c.repo = repository.NewToolRepository(c.db)

	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, continuing without cache and distributed locks", err)
		} else {
			c.cache = rc
			c.OnCleanup(func(context.Context) error { return rc.Close() })
		}
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logger.Log.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	c.auth = auth.NewService(c.db, []byte(secret), cfg.Auth.TokenTTL)

	c.search = search.NewService(c.connectSearch(ctx), c.repo, c.cache)
	c.uploader = c.connectStorage(ctx)
	c.enricher = c.connectEnricher(ctx)
	c.importer = c.buildImporter()
	c.trending = trending.NewCalculator(c.repo)

	return c, c.Validate()
}

func (c *Container) connectSearch(ctx context.Context) *search.Client {
	if c.cfg.Search.ElasticsearchURL == "" {
		logger.Log.Info("ELASTICSEARCH_URL not set, search uses SQL matching")
		return nil
	}
	client, err := search.NewClient(c.cfg.Search.ElasticsearchURL, c.transport())
	if err != nil {
		logger.WarnWithFields("Elasticsearch unavailable, search uses SQL matching", err)
		return nil
	}
	if err := client.InitializeIndices(ctx); err != nil {
		logger.WarnWithFields("Failed to initialize search indices", err)
	}
	return client
}

func (c *Container) connectStorage(ctx context.Context) *storage.S3Uploader {
	if c.cfg.Storage.LogoBucket == "" {
		return nil
	}
	uploader, err := storage.NewS3Uploader(ctx, c.cfg.Storage.Region, c.cfg.Storage.LogoBucket,
		c.cfg.Storage.CDNBaseURL, telemetry.NewInstrumentedHTTPClient(10*time.Second))
	if err != nil {
		logger.WarnWithFields("Logo mirroring disabled: failed to initialize S3 uploader", err)
		return nil
	}
	if err := uploader.CheckBucketAccess(ctx); err != nil {
		logger.WarnWithFields("Logo mirroring disabled: S3 bucket access failed", err)
		return nil
	}
	return uploader
}

func (c *Container) connectEnricher(ctx context.Context) *enrichment.Enricher {
	gen, err := enrichment.NewGenerator(ctx, enrichment.ProviderConfig{
		Provider: c.cfg.AI.Provider,
		APIKey:   c.cfg.AI.APIKey,
		Model:    c.cfg.AI.Model,
		BaseURL:  c.cfg.AI.BaseURL,
	}, telemetry.NewInstrumentedHTTPClient(c.cfg.Import.EnrichTimeout))
	if err != nil {
		logger.WarnWithFields("AI enrichment disabled: failed to create generator", err)
		return nil
	}
	if gen == nil {
		return nil
	}
	logger.Log.Info("AI enrichment enabled", zap.String("provider", gen.Name()))
	return enrichment.NewEnricher(gen, enrichment.Options{
		Timeout:   c.cfg.Import.EnrichTimeout,
		PerMinute: c.cfg.Import.EnrichPerMinute,
	})
}

func (c *Container) buildImporter() *importer.Importer {
	srcs := sources.NewDefault(sources.Config{
		HuggingFaceURL: c.cfg.Import.HuggingFaceURL,
		OpenRouterURL:  c.cfg.Import.OpenRouterURL,
		GitHubURL:      c.cfg.Import.GitHubURL,
		GitHubToken:    c.cfg.Import.GitHubToken,
		Limit:          c.cfg.Import.MaxPerSource,
		Timeout:        c.cfg.Import.SourceTimeout,
		HTTPClient:     telemetry.NewInstrumentedHTTPClient(c.cfg.Import.SourceTimeout),
	})

	opts := importer.Options{
		Pages:         pagemeta.NewCollyFetcher(c.cfg.Import.PageTimeout, c.transport()),
		Index:         c.search,
		Redis:         c.cache,
		LockTTL:       c.cfg.Import.LockTTL,
		SourceTimeout: c.cfg.Import.SourceTimeout,
	}
	// assigned only when set so the interface stays nil
	if c.enricher != nil && c.cfg.Import.EnrichEnabled {
		opts.Enricher = c.enricher
	}
	if c.uploader != nil {
		opts.Logos = c.uploader
	}
	return importer.New(c.repo, srcs, opts)
}

// transport traces outbound calls made by clients that take a RoundTripper
func (c *Container) transport() http.RoundTripper {
	return telemetry.NewInstrumentedHTTPClient(0).Transport
}

// Config returns the configuration the container was built from
func (c *Container) Config() *config.Config { return c.cfg }

// DB returns the database connection
func (c *Container) DB() *gorm.DB { return c.db }

// Cache returns the Redis client, nil when Redis is not configured
func (c *Container) Cache() *cache.RedisClient { return c.cache }

// Repository returns the catalog repository
func (c *Container) Repository() *repository.ToolRepository { return c.repo }

// Auth returns the authentication service
func (c *Container) Auth() *auth.Service { return c.auth }

// Search returns the search service. It falls back to SQL without Elasticsearch.
func (c *Container) Search() *search.Service { return c.search }

// Enricher returns the AI enricher, nil when no provider is configured
func (c *Container) Enricher() *enrichment.Enricher { return c.enricher }

// Importer returns the catalog importer
func (c *Container) Importer() *importer.Importer { return c.importer }

// Trending returns the trending calculator
func (c *Container) Trending() *trending.Calculator { return c.trending }

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services
func (c *Container) Cleanup(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			logger.Log.Error("Cleanup function failed", zap.Int("index", i), zap.Error(err))
		}
	}
	c.cleanupFuncs = nil
}

// Validate checks that all required dependencies are registered
func (c *Container) Validate() error {
	var missing []string
	if c.db == nil {
		missing = append(missing, "database")
	}
	if c.auth == nil {
		missing = append(missing, "auth service")
	}
	if c.importer == nil {
		missing = append(missing, "importer")
	}
	if c.trending == nil {
		missing = append(missing, "trending calculator")
	}
	if c.cfg != nil {
		for _, svc := range c.cfg.RequiredServices {
			if !c.connected(svc) {
				missing = append(missing, svc)
			}
		}
	}
	if len(missing) > 0 {
		return &InitializationError{MissingDeps: missing}
	}
	return nil
}

// connected reports whether the named optional backend was brought up
func (c *Container) connected(service string) bool {
	switch service {
	case "redis":
		return c.cache != nil
	case "elasticsearch":
		return c.search != nil && c.search.Enabled()
	case "s3":
		return c.uploader != nil
	case "ai":
		return c.enricher != nil
	}
	return false
}
