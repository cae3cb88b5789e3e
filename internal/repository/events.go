package repository

import (
	"context"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/models"
)

// RecordView appends a view event
func (r *ToolRepository) RecordView(ctx context.Context, view *models.ToolView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

// RecordClick appends an outbound click event
func (r *ToolRepository) RecordClick(ctx context.Context, click *models.ToolClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}

// CountViewsSince counts view events for toolID with timestamp >= since
func (r *ToolRepository) CountViewsSince(ctx context.Context, toolID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ToolView{}).
		Where("tool_id = ? AND viewed_at >= ?", toolID, since).
		Count(&count).Error
	return count, err
}

// CountClicksSince counts click events for toolID with timestamp >= since
func (r *ToolRepository) CountClicksSince(ctx context.Context, toolID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ToolClick{}).
		Where("tool_id = ? AND clicked_at >= ?", toolID, since).
		Count(&count).Error
	return count, err
}

// DailyCount is one bucket of a per-day series, Day formatted as 2006-01-02 (UTC)
type DailyCount struct {
	Day    string `json:"day"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// DailySeries returns views and clicks per UTC day for the last `days` days,
// oldest first, including days without events
func (r *ToolRepository) DailySeries(ctx context.Context, toolID string, days int, now time.Time) ([]DailyCount, error) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	var viewTimes, clickTimes []time.Time
	if err := r.db.WithContext(ctx).Model(&models.ToolView{}).
		Where("tool_id = ? AND viewed_at >= ?", toolID, start).
		Pluck("viewed_at", &viewTimes).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.ToolClick{}).
		Where("tool_id = ? AND clicked_at >= ?", toolID, start).
		Pluck("clicked_at", &clickTimes).Error; err != nil {
		return nil, err
	}

	series := make([]DailyCount, days)
	index := make(map[string]int, days)
	for i := range series {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		series[i].Day = day
		index[day] = i
	}
	for _, t := range viewTimes {
		if i, ok := index[t.UTC().Format("2006-01-02")]; ok {
			series[i].Views++
		}
	}
	for _, t := range clickTimes {
		if i, ok := index[t.UTC().Format("2006-01-02")]; ok {
			series[i].Clicks++
		}
	}
	return series, nil
}

// Overview is the admin dashboard summary
type Overview struct {
	Tools      int64 `json:"tools"`
	Unverified int64 `json:"unverified"`
	Trending   int64 `json:"trending"`
	Categories int64 `json:"categories"`
	Reviews    int64 `json:"reviews"`
	Views7d    int64 `json:"views_7d"`
	Clicks7d   int64 `json:"clicks_7d"`
}

// GetOverview aggregates catalog-wide counters
func (r *ToolRepository) GetOverview(ctx context.Context, now time.Time) (*Overview, error) {
	db := r.db.WithContext(ctx)
	since := now.Add(-7 * 24 * time.Hour)
	o := &Overview{}

	counts := []struct {
		dest  *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&o.Tools, &models.Tool{}, "", nil},
		{&o.Unverified, &models.Tool{}, "verified = ?", []interface{}{false}},
		{&o.Trending, &models.Tool{}, "is_trending = ?", []interface{}{true}},
		{&o.Categories, &models.Category{}, "", nil},
		{&o.Reviews, &models.Review{}, "", nil},
		{&o.Views7d, &models.ToolView{}, "viewed_at >= ?", []interface{}{since}},
		{&o.Clicks7d, &models.ToolClick{}, "clicked_at >= ?", []interface{}{since}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return o, nil
}
