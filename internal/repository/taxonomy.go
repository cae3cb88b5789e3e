package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// resolveCategories finds each category by name (case-insensitive) or by
// slug, creating it when neither matches. Blank and repeated names are dropped.
func resolveCategories(tx *gorm.DB, names []string) ([]models.Category, error) {
	result := make([]models.Category, 0, len(names))
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := util.Slugify(name)
		if name == "" || slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		var category models.Category
		err := tx.Where("LOWER(name) = LOWER(?) OR slug = ?", name, slug).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{Name: name, Slug: slug}
			err = tx.Create(&category).Error
		}
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", name, err)
		}
		result = append(result, category)
	}
	return result, nil
}

// resolveTags finds or creates each tag by name, case-insensitively
func resolveTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	result := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true

		var tag models.Tag
		err := tx.Where("LOWER(name) = ?", key).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, Slug: util.Slugify(name)}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		result = append(result, tag)
	}
	return result, nil
}

// ListCategories returns categories ordered by name with their tool counts.
// featuredOnly limits the result to featured categories.
func (r *ToolRepository) ListCategories(ctx context.Context, featuredOnly bool) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Model(&models.Category{})
	if featuredOnly {
		q = q.Where("featured = ?", true)
	}

	var categories []models.Category
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		CategoryID string
		Count      int64
	}
	err := r.db.WithContext(ctx).Table("tool_categories").
		Select("category_id, COUNT(*) AS count").
		Group("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.CategoryID] = c.Count
	}
	for i := range categories {
		categories[i].ToolCount = byID[categories[i].ID]
	}
	return categories, nil
}

// GetCategoryBySlug loads one category
func (r *ToolRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	return &category, err
}

// CreateCategory inserts a category, deriving the slug from the name when empty
func (r *ToolRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return ErrInvalidInput
	}
	if category.Slug == "" {
		category.Slug = util.Slugify(category.Name)
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory replaces name, slug, description, icon and featured
func (r *ToolRepository) UpdateCategory(ctx context.Context, id string, update *models.Category) (*models.Category, error) {
	if update.Slug == "" {
		update.Slug = util.Slugify(update.Name)
	}
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).
		Select("name", "slug", "description", "icon", "featured").
		Updates(update)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}

	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	return &category, err
}

// DeleteCategory removes a category and detaches it from every tool
func (r *ToolRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tool_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// ListTags returns all tags ordered by name
func (r *ToolRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
