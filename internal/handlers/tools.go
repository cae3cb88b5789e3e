package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/search"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolListResponse is a page of tools
type ToolListResponse struct {
	Tools []models.Tool `json:"tools"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// toolFilterFromQuery reads the catalog filters shared by public and admin listings
func toolFilterFromQuery(c *gin.Context) (repository.ToolFilter, util.Pagination, bool) {
	page := util.ParsePagination(c)
	filter := repository.ToolFilter{
		Query:        c.Query("q"),
		CategorySlug: c.Query("category"),
		Tag:          c.Query("tag"),
		Pricing:      util.ParseCSV(c.Query("pricing")),
		TrendingOnly: util.ParseBool(c.Query("trending")),
		Sort:         c.DefaultQuery("sort", repository.SortTrending),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}

	if !validPricing(c, filter.Pricing) {
		return filter, page, false
	}
	switch filter.Sort {
	case repository.SortTrending, repository.SortNewest, repository.SortRating, repository.SortName:
	default:
		util.RespondValidationError(c, "sort", "sort must be trending, newest, rating or name")
		return filter, page, false
	}
	return filter, page, true
}

// ListTools returns verified tools matching the query filters
// GET /api/v1/tools
func (h *Handlers) ListTools(c *gin.Context) {
	filter, page, ok := toolFilterFromQuery(c)
	if !ok {
		return
	}
	filter.VerifiedOnly = true

	tools, total, err := h.repo.ListTools(c.Request.Context(), filter)
	if util.HandleDBError(c, err, "tools") {
		return
	}
	c.JSON(http.StatusOK, ToolListResponse{Tools: tools, Total: total, Page: page.Page, Limit: page.Limit})
}

// GetTool returns one tool and records a view event
// GET /api/v1/tools/:slug
func (h *Handlers) GetTool(c *gin.Context) {
	ctx := c.Request.Context()
	tool, err := h.repo.GetToolBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}
	if !tool.Verified && !isAdmin(c) {
		util.RespondNotFound(c, "tool")
		return
	}

	view := &models.ToolView{
		ToolID:    tool.ID,
		UserID:    util.OptionalUserID(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}
	// a lost view must not fail the page
	if err := h.repo.RecordView(ctx, view); err != nil {
		logger.Log.Warn("Failed to record tool view", logger.WithToolID(tool.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, tool)
}

// TrackClick records an outbound click and returns the destination URL
// POST /api/v1/tools/:slug/click
func (h *Handlers) TrackClick(c *gin.Context) {
	ctx := c.Request.Context()
	tool, err := h.repo.GetToolBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}

	click := &models.ToolClick{
		ToolID:    tool.ID,
		UserID:    util.OptionalUserID(c),
		IPAddress: c.ClientIP(),
		Referrer:  c.Request.Referer(),
	}
	if err := h.repo.RecordClick(ctx, click); util.HandleDBError(c, err, "click") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"tool_id": tool.ID, "url": tool.WebsiteURL})
}

// GetTrendingTools returns the current trending tools, highest score first
// GET /api/v1/tools/trending
func (h *Handlers) GetTrendingTools(c *gin.Context) {
	limit := util.ParseInt(c.Query("limit"), 12)
	if limit < 1 || limit > 50 {
		limit = 12
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("%strending:%d", listingCachePrefix, limit)
	tools, err := cached(ctx, h.redis, key, func() ([]models.Tool, error) {
		tools, _, err := h.repo.ListTools(ctx, repository.ToolFilter{
			TrendingOnly: true,
			VerifiedOnly: true,
			Sort:         repository.SortTrending,
			Limit:        limit,
		})
		return tools, err
	})
	if util.HandleDBError(c, err, "tools") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": tools})
}

// SubmitToolRequest is a public tool suggestion. Submissions stay unverified
// until an admin approves them.
type SubmitToolRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=120"`
	WebsiteURL  string   `json:"website_url" binding:"required,url"`
	Description string   `json:"description" binding:"max=5000"`
	Pricing     []string `json:"pricing"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags" binding:"max=15"`
	Email       string   `json:"email" binding:"omitempty,email"`
}

// SubmitTool accepts a public tool submission
// POST /api/v1/tools/submit
func (h *Handlers) SubmitTool(c *gin.Context) {
	var req SubmitToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !validPricing(c, req.Pricing) {
		return
	}

	ctx := c.Request.Context()
	exists, err := h.repo.ToolExists(ctx, "", "", req.Name)
	if util.HandleDBError(c, err, "tool") {
		return
	}
	if exists {
		util.RespondConflict(c, "a tool with this name is already listed")
		return
	}

	pricing := req.Pricing
	if len(pricing) == 0 {
		pricing = []string{models.PricingFree}
	}
	tool := &models.Tool{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		ShortDescription: truncate(req.Description, 160),
		WebsiteURL:       req.WebsiteURL,
		LogoURL:          models.PlaceholderLogo,
		CoverURL:         models.PlaceholderCover,
		Pricing:          pricing,
		Verified:         false,
		SubmitterEmail:   req.Email,
	}
	if err := h.repo.CreateTool(ctx, tool, req.Categories, req.Tags); util.HandleDBError(c, err, "tool") {
		return
	}

	logger.Log.Info("Tool submitted", logger.WithToolID(tool.ID), zap.String("name", tool.Name))
	c.JSON(http.StatusCreated, gin.H{"id": tool.ID, "slug": tool.Slug, "verified": false})
}

// SearchTools runs a full-text search over verified tools
// GET /api/v1/search?q=
func (h *Handlers) SearchTools(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.RespondValidationError(c, "q", "query is required")
		return
	}
	if h.search == nil {
		util.RespondInternalError(c, "search is not configured")
		return
	}

	page := util.ParsePagination(c)
	result, err := h.search.Search(c.Request.Context(), search.Query{
		Text:     q,
		Category: c.Query("category"),
		Pricing:  util.ParseCSV(c.Query("pricing")),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if util.HandleDBError(c, err, "search results") {
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListCategories returns categories with tool counts; ?featured=true limits to featured ones
// GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	featured := util.ParseBool(c.Query("featured"))
	ctx := c.Request.Context()

	key := fmt.Sprintf("%scategories:%t", listingCachePrefix, featured)
	categories, err := cached(ctx, h.redis, key, func() ([]models.Category, error) {
		return h.repo.ListCategories(ctx, featured)
	})
	if util.HandleDBError(c, err, "categories") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns a category and a page of its verified tools
// GET /api/v1/categories/:slug
func (h *Handlers) GetCategory(c *gin.Context) {
	ctx := c.Request.Context()
	category, err := h.repo.GetCategoryBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrCategoryNotFound) {
		util.RespondNotFound(c, "category")
		return
	}
	if util.HandleDBError(c, err, "category") {
		return
	}

	page := util.ParsePagination(c)
	tools, total, err := h.repo.ListTools(ctx, repository.ToolFilter{
		CategorySlug: category.Slug,
		VerifiedOnly: true,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if util.HandleDBError(c, err, "tools") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"tools":    ToolListResponse{Tools: tools, Total: total, Page: page.Page, Limit: page.Limit},
	})
}

// ListTags returns every tag
// GET /api/v1/tags
func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.repo.ListTags(c.Request.Context())
	if util.HandleDBError(c, err, "tags") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// isAdmin reports whether an optional-auth request carries an admin user
func isAdmin(c *gin.Context) bool {
	value, ok := c.Get(util.ContextUserKey)
	if !ok {
		return false
	}
	user, ok := value.(*models.User)
	return ok && user.IsAdmin
}

func validPricing(c *gin.Context, pricing []string) bool {
	for _, p := range pricing {
		if !models.IsValidPricing(p) {
			util.RespondValidationError(c, "pricing", fmt.Sprintf("unknown pricing %q", p))
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
