package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"gorm.io/gorm"
)

var ErrReviewNotFound = errors.New("review not found")

// CreateReview inserts a review and recomputes the tool's rating aggregates.
// A second review by the same user for the same tool fails with gorm.ErrDuplicatedKey.
func (r *ToolRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tool{}).Where("id = ?", review.ToolID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrToolNotFound
		}
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.ToolID)
	})
}

// GetReview loads one review
func (r *ToolRepository) GetReview(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	return &review, err
}

// DeleteReview removes a review and recomputes the tool's rating aggregates
func (r *ToolRepository) DeleteReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Review{}, "id = ?", review.ID).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.ToolID)
	})
}

// ListReviews returns a page of reviews for a tool, newest first, with authors
func (r *ToolRepository) ListReviews(ctx context.Context, toolID string, limit, offset int) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{}).Where("tool_id = ?", toolID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error
	return reviews, total, err
}

// recomputeRating recalculates average_rating and review_count from scratch
func recomputeRating(tx *gorm.DB, toolID string) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("tool_id = ?", toolID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("aggregate ratings: %w", err)
	}

	return tx.Model(&models.Tool{}).Where("id = ?", toolID).
		UpdateColumns(map[string]interface{}{
			"average_rating": agg.Avg,
			"review_count":   agg.Count,
		}).Error
}
