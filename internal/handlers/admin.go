package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	apierrors "github.com/bynikesh/findmyai-sub001/internal/errors"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolRequest is the full editable representation of a tool. PUT replaces every field.
type ToolRequest struct {
	Name             string   `json:"name" binding:"required,min=1,max=120"`
	Slug             string   `json:"slug" binding:"omitempty,max=140"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description" binding:"max=300"`
	WebsiteURL       string   `json:"website_url" binding:"omitempty,url"`
	LogoURL          string   `json:"logo_url"`
	CoverURL         string   `json:"cover_url"`
	Pricing          []string `json:"pricing"`
	PricingDetails   string   `json:"pricing_details"`
	Features         []string `json:"features"`
	Platforms        []string `json:"platforms"`
	Models           []string `json:"models"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	UseCases         []string `json:"use_cases"`
	IdealFor         string   `json:"ideal_for"`
	HasFreeTrial     bool     `json:"has_free_trial"`
	IsOpenSource     bool     `json:"is_open_source"`
	HasAPI           bool     `json:"has_api"`
	Verified         *bool    `json:"verified"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
}

func (r *ToolRequest) tool() *models.Tool {
	t := &models.Tool{
		Name:             strings.TrimSpace(r.Name),
		Slug:             util.Slugify(r.Slug),
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		WebsiteURL:       r.WebsiteURL,
		LogoURL:          r.LogoURL,
		CoverURL:         r.CoverURL,
		Pricing:          orEmpty(r.Pricing),
		PricingDetails:   r.PricingDetails,
		Features:         orEmpty(r.Features),
		Platforms:        orEmpty(r.Platforms),
		Models:           orEmpty(r.Models),
		Pros:             orEmpty(r.Pros),
		Cons:             orEmpty(r.Cons),
		UseCases:         orEmpty(r.UseCases),
		IdealFor:         r.IdealFor,
		HasFreeTrial:     r.HasFreeTrial,
		IsOpenSource:     r.IsOpenSource,
		HasAPI:           r.HasAPI,
		Verified:         true,
	}
	if r.Verified != nil {
		t.Verified = *r.Verified
	}
	if t.LogoURL == "" {
		t.LogoURL = models.PlaceholderLogo
	}
	if t.CoverURL == "" {
		t.CoverURL = models.PlaceholderCover
	}
	return t
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AdminListTools lists every tool including unverified ones; ?verified=false shows the review queue
// GET /api/v1/admin/tools
func (h *Handlers) AdminListTools(c *gin.Context) {
	filter, page, ok := toolFilterFromQuery(c)
	if !ok {
		return
	}
	switch c.Query("verified") {
	case "true":
		filter.VerifiedOnly = true
	case "false":
		filter.UnverifiedOnly = true
	}

	tools, total, err := h.repo.ListTools(c.Request.Context(), filter)
	if util.HandleDBError(c, err, "tools") {
		return
	}
	c.JSON(http.StatusOK, ToolListResponse{Tools: tools, Total: total, Page: page.Page, Limit: page.Limit})
}

// CreateTool adds a tool to the catalog. Admin-created tools are verified unless stated otherwise.
// POST /api/v1/admin/tools
func (h *Handlers) CreateTool(c *gin.Context) {
	var req ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !validPricing(c, req.Pricing) {
		return
	}

	ctx := c.Request.Context()
	tool := req.tool()
	if err := h.repo.CreateTool(ctx, tool, req.Categories, req.Tags); util.HandleDBError(c, err, "tool") {
		return
	}

	created, err := h.repo.GetToolByID(ctx, tool.ID)
	if util.HandleDBError(c, err, "tool") {
		return
	}
	h.afterToolWrite(c, created)

	logger.Log.Info("Tool created", logger.WithToolID(created.ID), zap.String("slug", created.Slug))
	c.JSON(http.StatusCreated, created)
}

// UpdateTool replaces every editable field of a tool
// PUT /api/v1/admin/tools/:id
func (h *Handlers) UpdateTool(c *gin.Context) {
	var req ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if !validPricing(c, req.Pricing) {
		return
	}

	updated, err := h.repo.ReplaceTool(c.Request.Context(), c.Param("id"), req.tool(), req.Categories, req.Tags)
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}
	h.afterToolWrite(c, updated)
	c.JSON(http.StatusOK, updated)
}

// DeleteTool removes a tool with its events and reviews
// DELETE /api/v1/admin/tools/:id
func (h *Handlers) DeleteTool(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	err := h.repo.DeleteTool(ctx, id)
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}

	if h.search != nil {
		h.search.RemoveTool(ctx, id)
	}
	h.InvalidateListings(ctx)

	logger.Log.Info("Tool deleted", logger.WithToolID(id))
	c.Status(http.StatusNoContent)
}

// VerifyTool sets the verified flag; body {"verified": false} unpublishes
// POST /api/v1/admin/tools/:id/verify
func (h *Handlers) VerifyTool(c *gin.Context) {
	req := struct {
		Verified *bool `json:"verified"`
	}{}
	// empty body means verify
	_ = c.ShouldBindJSON(&req)
	verified := req.Verified == nil || *req.Verified

	ctx := c.Request.Context()
	id := c.Param("id")
	err := h.repo.SetVerified(ctx, id, verified)
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}

	tool, err := h.repo.GetToolByID(ctx, id)
	if util.HandleDBError(c, err, "tool") {
		return
	}
	h.afterToolWrite(c, tool)
	c.JSON(http.StatusOK, tool)
}

// afterToolWrite refreshes the search index and drops cached listings
func (h *Handlers) afterToolWrite(c *gin.Context, tool *models.Tool) {
	ctx := c.Request.Context()
	if h.search != nil {
		if tool.Verified {
			h.search.IndexTool(ctx, tool)
		} else {
			h.search.RemoveTool(ctx, tool.ID)
		}
	}
	h.InvalidateListings(ctx)
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=80"`
	Slug        string `json:"slug" binding:"omitempty,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Featured    bool   `json:"featured"`
}

func (r *CategoryRequest) category() *models.Category {
	return &models.Category{
		Name:        strings.TrimSpace(r.Name),
		Slug:        util.Slugify(r.Slug),
		Description: r.Description,
		Icon:        r.Icon,
		Featured:    r.Featured,
	}
}

// CreateCategory adds a category
// POST /api/v1/admin/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	category := req.category()
	if err := h.repo.CreateCategory(c.Request.Context(), category); util.HandleDBError(c, err, "category") {
		return
	}
	h.InvalidateListings(c.Request.Context())
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory replaces a category's fields
// PUT /api/v1/admin/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	category, err := h.repo.UpdateCategory(c.Request.Context(), c.Param("id"), req.category())
	if errors.Is(err, repository.ErrCategoryNotFound) {
		util.RespondNotFound(c, "category")
		return
	}
	if util.HandleDBError(c, err, "category") {
		return
	}
	h.InvalidateListings(c.Request.Context())
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category; its tools stay in the catalog
// DELETE /api/v1/admin/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	err := h.repo.DeleteCategory(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrCategoryNotFound) {
		util.RespondNotFound(c, "category")
		return
	}
	if util.HandleDBError(c, err, "category") {
		return
	}
	h.InvalidateListings(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GenerateToolContent asks the configured AI provider for a catalog profile
// without saving anything
// POST /api/v1/admin/ai/generate
func (h *Handlers) GenerateToolContent(c *gin.Context) {
	if h.enricher == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("AI content generation"))
		return
	}

	var in enrichment.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	profile, err := h.enricher.Enrich(c.Request.Context(), in)
	if errors.Is(err, enrichment.ErrInvalidProfile) {
		util.RespondWithAPIError(c, apierrors.Upstream("the AI provider returned an unusable profile").WithDetails(err.Error()))
		return
	}
	if err != nil {
		util.RespondWithAPIError(c, apierrors.Upstream("AI content generation failed").WithDetails(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": h.enricher.Provider(), "profile": profile})
}

// Reindex rebuilds the search index from the catalog
// POST /api/v1/admin/search/reindex
func (h *Handlers) Reindex(c *gin.Context) {
	if h.search == nil || !h.search.Enabled() {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("search indexing"))
		return
	}
	count, err := h.search.Reindex(c.Request.Context())
	if err != nil {
		util.RespondInternalError(c, "reindex failed")
		logger.Log.Error("Reindex failed", zap.Error(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": count})
}
