package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrToolNotFound = errors.New("tool not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Sort orders accepted by ListTools
const (
	SortTrending = "trending"
	SortNewest   = "newest"
	SortRating   = "rating"
	SortName     = "name"
)

// ToolFilter narrows a catalog listing. Zero values mean "no filter".
type ToolFilter struct {
	Query        string
	CategorySlug string
	Tag          string
	Pricing      []string
	TrendingOnly bool
	// VerifiedOnly hides unreviewed submissions and imports
	VerifiedOnly   bool
	UnverifiedOnly bool
	IDs            []string
	Sort           string
	Limit          int
	Offset         int
}

// ToolRepository is the catalog store: tools, their taxonomy, event logs and import runs
type ToolRepository struct {
	db *gorm.DB
}

// NewToolRepository creates a new tool repository
func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// DB exposes the underlying handle for callers that need a transaction
func (r *ToolRepository) DB() *gorm.DB {
	return r.db
}

// ListTools returns one page of tools matching filter, plus the total match count
func (r *ToolRepository) ListTools(ctx context.Context, filter ToolFilter) ([]models.Tool, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Tool{})

	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(tools.name) LIKE ? OR LOWER(tools.description) LIKE ? OR LOWER(tools.short_description) LIKE ?", like, like, like)
	}
	if filter.CategorySlug != "" {
		q = q.Where("tools.id IN (?)",
			r.db.Table("tool_categories").
				Select("tool_categories.tool_id").
				Joins("JOIN categories ON categories.id = tool_categories.category_id").
				Where("categories.slug = ?", filter.CategorySlug),
		)
	}
	if filter.Tag != "" {
		q = q.Where("tools.id IN (?)",
			r.db.Table("tool_tags").
				Select("tool_tags.tool_id").
				Joins("JOIN tags ON tags.id = tool_tags.tag_id").
				Where("tags.slug = ? OR LOWER(tags.name) = LOWER(?)", filter.Tag, filter.Tag),
		)
	}
	for _, p := range filter.Pricing {
		q = q.Where(jsonArrayContains(r.db, "tools.pricing", p))
	}
	if filter.TrendingOnly {
		q = q.Where("tools.is_trending = ?", true)
	}
	if filter.VerifiedOnly {
		q = q.Where("tools.verified = ?", true)
	} else if filter.UnverifiedOnly {
		q = q.Where("tools.verified = ?", false)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("tools.id IN ?", filter.IDs)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tools: %w", err)
	}

	switch filter.Sort {
	case SortNewest:
		q = q.Order("tools.created_at DESC")
	case SortRating:
		q = q.Order("tools.average_rating DESC").Order("tools.review_count DESC")
	case SortName:
		q = q.Order("tools.name ASC")
	default:
		q = q.Order("tools.trending_score DESC").Order("tools.created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var tools []models.Tool
	if err := q.Preload("Categories").Preload("Tags").Find(&tools).Error; err != nil {
		return nil, 0, fmt.Errorf("list tools: %w", err)
	}
	return tools, total, nil
}

// jsonArrayContains matches rows whose JSON array column holds value
func jsonArrayContains(db *gorm.DB, column, value string) clause.Expr {
	if db.Dialector.Name() == "postgres" {
		return gorm.Expr(column+" @> ?::jsonb", fmt.Sprintf("[%q]", value))
	}
	return gorm.Expr("EXISTS (SELECT 1 FROM json_each("+column+") WHERE json_each.value = ?)", value)
}

// GetToolBySlug loads a tool with categories and tags
func (r *ToolRepository) GetToolBySlug(ctx context.Context, slug string) (*models.Tool, error) {
	return r.getTool(ctx, "slug = ?", slug)
}

// GetToolByID loads a tool with categories and tags
func (r *ToolRepository) GetToolByID(ctx context.Context, id string) (*models.Tool, error) {
	return r.getTool(ctx, "id = ?", id)
}

func (r *ToolRepository) getTool(ctx context.Context, where string, arg string) (*models.Tool, error) {
	var tool models.Tool
	err := r.db.WithContext(ctx).Preload("Categories").Preload("Tags").Where(where, arg).First(&tool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrToolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// ToolExists reports whether a tool matches (source, externalID) or has the same
// name ignoring case. Either match counts as a duplicate.
func (r *ToolRepository) ToolExists(ctx context.Context, source, externalID, name string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Tool{})
	if source != "" && externalID != "" {
		q = q.Where("(source = ? AND external_id = ?) OR LOWER(name) = LOWER(?)", source, externalID, name)
	} else {
		q = q.Where("LOWER(name) = LOWER(?)", name)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateTool inserts tool with its categories and tags in one transaction.
// Categories and tags are resolved by name and created when missing.
func (r *ToolRepository) CreateTool(ctx context.Context, tool *models.Tool, categoryNames, tagNames []string) error {
	if tool == nil || strings.TrimSpace(tool.Name) == "" {
		return ErrInvalidInput
	}
	if tool.Slug == "" {
		tool.Slug = util.SlugWithSuffix(tool.Name)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := resolveCategories(tx, categoryNames)
		if err != nil {
			return err
		}
		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}

		tool.Categories = categories
		tool.Tags = tags
		if err := tx.Omit("Categories.*", "Tags.*").Create(tool).Error; err != nil {
			return fmt.Errorf("insert tool: %w", err)
		}
		return nil
	})
}

// ReplaceTool overwrites every editable field of the tool with id.
// Trending fields, rating aggregates and import provenance are preserved.
func (r *ToolRepository) ReplaceTool(ctx context.Context, id string, update *models.Tool, categoryNames, tagNames []string) (*models.Tool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Tool
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrToolNotFound
			}
			return err
		}

		if update.Slug == "" {
			update.Slug = existing.Slug
		}
		err := tx.Model(&existing).
			Select("name", "slug", "description", "short_description", "website_url", "logo_url", "cover_url",
				"pricing", "pricing_details", "features", "platforms", "models", "pros", "cons", "use_cases",
				"ideal_for", "has_free_trial", "is_open_source", "has_api", "verified").
			Updates(update).Error
		if err != nil {
			return fmt.Errorf("update tool: %w", err)
		}

		categories, err := resolveCategories(tx, categoryNames)
		if err != nil {
			return err
		}
		tags, err := resolveTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := tx.Model(&existing).Association("Categories").Replace(categories); err != nil {
			return fmt.Errorf("replace categories: %w", err)
		}
		if err := tx.Model(&existing).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetToolByID(ctx, id)
}

// DeleteTool removes a tool together with its events, reviews and associations
func (r *ToolRepository) DeleteTool(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tool models.Tool
		res := tx.Where("id = ?", id).Limit(1).Find(&tool)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrToolNotFound
		}

		for _, m := range []interface{}{&models.ToolView{}, &models.ToolClick{}, &models.Review{}} {
			if err := tx.Where("tool_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Select(clause.Associations).Delete(&tool).Error
	})
}

// SetVerified flips the verified flag
func (r *ToolRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	res := r.db.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).Update("verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrToolNotFound
	}
	return nil
}

// ScoringRow is the slice of a tool the trending calculator needs
type ScoringRow struct {
	ID        string
	CreatedAt time.Time
}

// ListForScoring returns every tool id with its creation time
func (r *ToolRepository) ListForScoring(ctx context.Context) ([]ScoringRow, error) {
	var rows []ScoringRow
	err := r.db.WithContext(ctx).Model(&models.Tool{}).Select("id", "created_at").Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// UpdateTrending overwrites a tool's score and flag
func (r *ToolRepository) UpdateTrending(ctx context.Context, id string, score float64, isTrending bool) error {
	res := r.db.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"trending_score": score, "is_trending": isTrending})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrToolNotFound
	}
	return nil
}
