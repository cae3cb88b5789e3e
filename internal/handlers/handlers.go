package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/auth"
	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/importer"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/search"
	"github.com/bynikesh/findmyai-sub001/internal/trending"
	"go.uber.org/zap"
)

const (
	listingCacheTTL = 5 * time.Minute
	// every cached listing lives under this prefix
	listingCachePrefix = "tools:list:"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	repo     *repository.ToolRepository
	auth     *auth.Service
	search   *search.Service
	trending *trending.Calculator
	importer *importer.Importer
	enricher *enrichment.Enricher
	redis    *cache.RedisClient
	now      func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(repo *repository.ToolRepository, authService *auth.Service) *Handlers {
	return &Handlers{
		repo: repo,
		auth: authService,
		now:  time.Now,
	}
}

// SetSearchService sets the catalog search service
func (h *Handlers) SetSearchService(s *search.Service) {
	h.search = s
}

// SetTrendingCalculator sets the calculator behind the trending job endpoint
func (h *Handlers) SetTrendingCalculator(calc *trending.Calculator) {
	h.trending = calc
}

// SetImporter sets the catalog importer behind the import job endpoints
func (h *Handlers) SetImporter(im *importer.Importer) {
	h.importer = im
}

// SetEnricher sets the enricher used for AI-assisted content generation
func (h *Handlers) SetEnricher(e *enrichment.Enricher) {
	h.enricher = e
}

// SetCache sets the Redis client used for listing caches
func (h *Handlers) SetCache(rc *cache.RedisClient) {
	h.redis = rc
}

// cached serves key from Redis when present, otherwise calls load and stores the result
func cached[T any](ctx context.Context, rc *cache.RedisClient, key string, load func() (T, error)) (T, error) {
	if rc != nil {
		var hit T
		err := rc.GetJSON(ctx, key, &hit)
		if err == nil {
			metrics.RecordCacheHit("listing")
			return hit, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Log.Warn("Listing cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.RecordCacheMiss("listing")
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if rc != nil {
		if err := rc.SetJSON(ctx, key, value, listingCacheTTL); err != nil {
			logger.Log.Warn("Listing cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

// InvalidateListings drops every cached listing. Called after catalog writes
// and after trending runs.
func (h *Handlers) InvalidateListings(ctx context.Context) {
	if h.redis == nil {
		return
	}
	if err := h.redis.DeletePattern(ctx, listingCachePrefix+"*"); err != nil {
		logger.Log.Warn("Failed to invalidate listing cache", zap.Error(err))
	}
}
