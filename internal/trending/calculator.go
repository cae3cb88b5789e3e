package trending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Store is the catalog access the calculator needs
type Store interface {
	ListForScoring(ctx context.Context) ([]repository.ScoringRow, error)
	CountViewsSince(ctx context.Context, toolID string, since time.Time) (int64, error)
	UpdateTrending(ctx context.Context, id string, score float64, isTrending bool) error
}

// Summary reports a finished run. Failed entries keep their previous score.
type Summary struct {
	Processed int           `json:"processed"`
	Trending  int           `json:"trending"`
	Failed    int           `json:"failed"`
	FailedIDs []string      `json:"failed_ids"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Calculator recomputes trending_score and is_trending for every tool
type Calculator struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex

	// OnComplete runs after every run that listed tools successfully
	OnComplete func(ctx context.Context, s *Summary)
}

// NewCalculator creates a calculator using the wall clock
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store, now: time.Now}
}

// Run scores every tool sequentially against a single "now". A failing tool is
// recorded in the summary and the run continues. The error is non-nil only when
// the tool list cannot be loaded or ctx ends the run early.
func (c *Calculator) Run(ctx context.Context) (*Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := telemetry.TraceTrendingRun(ctx)
	defer span.End()

	now := c.now().UTC()
	summary := &Summary{StartedAt: now, FailedIDs: []string{}}

	rows, err := c.store.ListForScoring(ctx)
	if err != nil {
		span.RecordError(err)
		metrics.RecordTrendingRun("failed", 0, time.Since(now))
		return nil, fmt.Errorf("list tools for scoring: %w", err)
	}

	var runErr error
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		trending, err := c.scoreOne(ctx, row, now)
		if err != nil {
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, row.ID)
			logger.Log.Warn("Failed to score tool", logger.WithToolID(row.ID), zap.Error(err))
			continue
		}
		summary.Processed++
		if trending {
			summary.Trending++
		}
	}
	summary.Duration = time.Since(now)

	span.SetAttributes(
		attribute.Int("trending.processed", summary.Processed),
		attribute.Int("trending.trending", summary.Trending),
		attribute.Int("trending.failed", summary.Failed),
	)

	status := "success"
	switch {
	case runErr != nil:
		status = "cancelled"
	case summary.Failed > 0:
		status = "partial"
	}
	metrics.RecordTrendingRun(status, summary.Trending, summary.Duration)

	logger.Log.Info("Trending run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("trending", summary.Trending),
		zap.Int("failed", summary.Failed),
		zap.String("status", status),
		logger.WithDuration(summary.Duration),
	)

	if c.OnComplete != nil {
		c.OnComplete(ctx, summary)
	}
	return summary, runErr
}

func (c *Calculator) scoreOne(ctx context.Context, row repository.ScoringRow, now time.Time) (bool, error) {
	views7, err := c.store.CountViewsSince(ctx, row.ID, now.Add(-week))
	if err != nil {
		return false, fmt.Errorf("count 7-day views: %w", err)
	}
	views1, err := c.store.CountViewsSince(ctx, row.ID, now.Add(-day))
	if err != nil {
		return false, fmt.Errorf("count 1-day views: %w", err)
	}

	score := Score(views7, views1, AgeDays(row.CreatedAt, now))
	trending := IsTrending(score)
	if err := c.store.UpdateTrending(ctx, row.ID, score, trending); err != nil {
		return false, fmt.Errorf("update score: %w", err)
	}
	return trending, nil
}
