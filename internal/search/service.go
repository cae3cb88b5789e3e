package search

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"go.uber.org/zap"
)

// Backend names reported with each result
const (
	BackendElasticsearch = "elasticsearch"
	BackendSQL           = "sql"
)

const defaultCacheTTL = 5 * time.Minute

// Result is a page of hydrated tools
type Result struct {
	Tools   []models.Tool `json:"tools"`
	Total   int64         `json:"total"`
	Backend string        `json:"backend"`
}

// Service searches the catalog through Elasticsearch when available and falls
// back to SQL LIKE matching otherwise. Results are cached in Redis when configured.
type Service struct {
	client *Client
	repo   *repository.ToolRepository
	redis  *cache.RedisClient
	ttl    time.Duration
}

// NewService creates a search service. client and redis may be nil.
func NewService(client *Client, repo *repository.ToolRepository, redis *cache.RedisClient) *Service {
	return &Service{
		client: client,
		repo:   repo,
		redis:  redis,
		ttl:    defaultCacheTTL,
	}
}

// Enabled reports whether an Elasticsearch backend is configured
func (s *Service) Enabled() bool {
	return s.client != nil
}

func cacheKey(q Query) string {
	data, _ := json.Marshal(q)
	return fmt.Sprintf("search:tools:%x", md5.Sum(data))
}

// Search runs q and returns verified tools in relevance order
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	key := cacheKey(q)
	if s.redis != nil {
		var cached Result
		err := s.redis.GetJSON(ctx, key, &cached)
		if err == nil {
			metrics.RecordCacheHit("search")
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Log.Debug("Search cache read failed", zap.Error(err))
		}
		metrics.RecordCacheMiss("search")
	}

	result, err := s.search(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.RecordSearch(result.Backend)

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, key, result, s.ttl); err != nil {
			logger.Log.Debug("Search cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) search(ctx context.Context, q Query) (*Result, error) {
	if s.client != nil {
		hits, err := s.client.SearchTools(ctx, q)
		if err == nil {
			tools, err := s.hydrate(ctx, hits.IDs)
			if err != nil {
				return nil, err
			}
			return &Result{Tools: tools, Total: hits.Total, Backend: BackendElasticsearch}, nil
		}
		logger.Log.Warn("Elasticsearch query failed, falling back to SQL", zap.Error(err))
	}

	tools, total, err := s.repo.ListTools(ctx, repository.ToolFilter{
		Query:        q.Text,
		CategorySlug: q.Category,
		Pricing:      q.Pricing,
		VerifiedOnly: true,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Tools: tools, Total: total, Backend: BackendSQL}, nil
}

// hydrate loads tools for ids preserving the order of ids. Ids no longer in the
// store are dropped.
func (s *Service) hydrate(ctx context.Context, ids []string) ([]models.Tool, error) {
	if len(ids) == 0 {
		return []models.Tool{}, nil
	}
	found, _, err := s.repo.ListTools(ctx, repository.ToolFilter{IDs: ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tools := make([]models.Tool, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tools = append(tools, t)
		}
	}
	return tools, nil
}

// IndexTool indexes tool and drops cached results. Failures are logged only.
func (s *Service) IndexTool(ctx context.Context, tool *models.Tool) {
	s.invalidate(ctx)
	if s.client == nil || tool == nil {
		return
	}
	if err := s.client.IndexTool(ctx, ToolToDocument(*tool)); err != nil {
		logger.Log.Warn("Failed to index tool", logger.WithToolID(tool.ID), zap.Error(err))
	}
}

// RemoveTool deletes the tool document and drops cached results. Failures are logged only.
func (s *Service) RemoveTool(ctx context.Context, toolID string) {
	s.invalidate(ctx)
	if s.client == nil {
		return
	}
	if err := s.client.DeleteTool(ctx, toolID); err != nil {
		logger.Log.Warn("Failed to remove tool from index", logger.WithToolID(toolID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeletePattern(ctx, "search:tools:*"); err != nil {
		logger.Log.Debug("Failed to invalidate search cache", zap.Error(err))
	}
}
