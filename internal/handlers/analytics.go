package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/repository"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
)

// statWindows are the look-back periods reported for each tool
var statWindows = []struct {
	label string
	span  time.Duration
}{
	{"1d", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
	{"30d", 30 * 24 * time.Hour},
}

// ToolStats are view and click counts for one tool
type ToolStats struct {
	ToolID        string                  `json:"tool_id"`
	Views         map[string]int64        `json:"views"`
	Clicks        map[string]int64        `json:"clicks"`
	TrendingScore float64                 `json:"trending_score"`
	IsTrending    bool                    `json:"is_trending"`
	Series        []repository.DailyCount `json:"series"`
}

// GetToolStats returns view/click counts over 1, 7 and 30 days plus a daily series
// GET /api/v1/tools/:slug/stats?days=30
func (h *Handlers) GetToolStats(c *gin.Context) {
	days := util.ParseInt(c.Query("days"), 30)
	if days < 1 || days > 90 {
		util.RespondValidationError(c, "days", "days must be between 1 and 90")
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

	now := h.now().UTC()
	stats := ToolStats{
		ToolID:        tool.ID,
		Views:         make(map[string]int64, len(statWindows)),
		Clicks:        make(map[string]int64, len(statWindows)),
		TrendingScore: tool.TrendingScore,
		IsTrending:    tool.IsTrending,
	}
	for _, w := range statWindows {
		views, err := h.repo.CountViewsSince(ctx, tool.ID, now.Add(-w.span))
		if util.HandleDBError(c, err, "views") {
			return
		}
		clicks, err := h.repo.CountClicksSince(ctx, tool.ID, now.Add(-w.span))
		if util.HandleDBError(c, err, "clicks") {
			return
		}
		stats.Views[w.label] = views
		stats.Clicks[w.label] = clicks
	}

	stats.Series, err = h.repo.DailySeries(ctx, tool.ID, days, now)
	if util.HandleDBError(c, err, "series") {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetOverview returns catalog-wide counters for the admin dashboard
// GET /api/v1/admin/analytics/overview
func (h *Handlers) GetOverview(c *gin.Context) {
	overview, err := h.repo.GetOverview(c.Request.Context(), h.now().UTC())
	if util.HandleDBError(c, err, "overview") {
		return
	}
	c.JSON(http.StatusOK, overview)
}
