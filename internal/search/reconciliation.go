package search

import (
	"context"
	"fmt"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"go.uber.org/zap"
)

const reindexBatchSize = 200

// Reindex pushes every tool in the catalog store to Elasticsearch, so the index
// catches up with rows written while it was unreachable. Returns the number indexed.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, fmt.Errorf("elasticsearch not configured")
	}

	start := time.Now()
	indexed, failed := 0, 0
	for offset := 0; ; offset += reindexBatchSize {
		tools, _, err := s.repo.ListTools(ctx, repository.ToolFilter{
			Sort:   repository.SortNewest,
			Limit:  reindexBatchSize,
			Offset: offset,
		})
		if err != nil {
			return indexed, fmt.Errorf("load tools: %w", err)
		}

		for _, tool := range tools {
			if err := ctx.Err(); err != nil {
				return indexed, err
			}
			if err := s.client.IndexTool(ctx, ToolToDocument(tool)); err != nil {
				failed++
				logger.Log.Warn("Failed to reindex tool", logger.WithToolID(tool.ID), zap.Error(err))
				continue
			}
			indexed++
		}

		if len(tools) < reindexBatchSize {
			break
		}
	}

	s.invalidate(ctx)
	logger.Log.Info("Search reindex completed",
		zap.Int("indexed", indexed),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	return indexed, nil
}
