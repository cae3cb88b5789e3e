package repository

import (
	"context"

	"github.com/bynikesh/findmyai-sub001/internal/models"
)

// CreateImportRun appends an import run log row
func (r *ToolRepository) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// RecentImportRuns returns the newest import runs first
func (r *ToolRepository) RecentImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.ImportRun
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
