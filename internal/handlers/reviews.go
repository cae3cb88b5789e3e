package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReviewRequest is the body of a new review
type CreateReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Title  string `json:"title" binding:"max=120"`
	Body   string `json:"body" binding:"max=5000"`
}

// ListReviews returns a page of reviews for a tool, newest first
// GET /api/v1/tools/:slug/reviews
func (h *Handlers) ListReviews(c *gin.Context) {
	ctx := c.Request.Context()
	tool, err := h.repo.GetToolBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}

	page := util.ParsePagination(c)
	reviews, total, err := h.repo.ListReviews(ctx, tool.ID, page.Limit, page.Offset)
	if util.HandleDBError(c, err, "reviews") {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"total":          total,
		"page":           page.Page,
		"limit":          page.Limit,
		"average_rating": tool.AverageRating,
	})
}

// CreateReview adds the caller's review of a tool. One review per user per tool.
// POST /api/v1/tools/:slug/reviews
func (h *Handlers) CreateReview(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	tool, err := h.repo.GetToolBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrToolNotFound) {
		util.RespondNotFound(c, "tool")
		return
	}
	if util.HandleDBError(c, err, "tool") {
		return
	}

	review := &models.Review{
		ToolID: tool.ID,
		UserID: user.ID,
		Rating: req.Rating,
		Title:  strings.TrimSpace(req.Title),
		Body:   strings.TrimSpace(req.Body),
	}
	err = h.repo.CreateReview(ctx, review)
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		util.RespondConflict(c, "you have already reviewed this tool")
		return
	case errors.Is(err, repository.ErrToolNotFound):
		util.RespondNotFound(c, "tool")
		return
	case util.HandleDBError(c, err, "review"):
		return
	}

	h.InvalidateListings(ctx)
	c.JSON(http.StatusCreated, review)
}

// DeleteReview removes a review. Only its author or an admin may delete it.
// DELETE /api/v1/reviews/:id
func (h *Handlers) DeleteReview(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	review, err := h.repo.GetReview(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrReviewNotFound) {
		util.RespondNotFound(c, "review")
		return
	}
	if util.HandleDBError(c, err, "review") {
		return
	}
	if review.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own reviews")
		return
	}

	if err := h.repo.DeleteReview(ctx, review); util.HandleDBError(c, err, "review") {
		return
	}
	h.InvalidateListings(ctx)
	c.Status(http.StatusNoContent)
}
