package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/search"
)

func (s *HandlersTestSuite) TestListToolsHidesUnverified() {
	s.createTool("Visible", true, "Writing")
	s.createTool("Pending", false, "Writing")

	w := s.do(http.MethodGet, "/api/v1/tools", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp ToolListResponse
	s.decode(w, &resp)
	s.Equal(int64(1), resp.Total)
	s.Require().Len(resp.Tools, 1)
	s.Equal("Visible", resp.Tools[0].Name)
	s.Equal(1, resp.Page)
	s.Equal(20, resp.Limit)
}

func (s *HandlersTestSuite) TestListToolsFilters() {
	s.createTool("Writer", true, "Writing")
	s.createTool("Painter", true, "Image Generation")

	w := s.do(http.MethodGet, "/api/v1/tools?category=image-generation", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp ToolListResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Tools, 1)
	s.Equal("Painter", resp.Tools[0].Name)

	w = s.do(http.MethodGet, "/api/v1/tools?pricing=Freemium&sort=name", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.Equal(int64(2), resp.Total)
	s.Equal("Painter", resp.Tools[0].Name)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/tools?pricing=Cheap", "", nil).Code)
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/tools?sort=random", "", nil).Code)
}

func (s *HandlersTestSuite) TestGetToolRecordsView() {
	tool := s.createTool("Viewed", true)

	w := s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug, s.userToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got models.Tool
	s.decode(w, &got)
	s.Equal(tool.ID, got.ID)

	s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug, "", nil)

	views, err := s.repo.CountViewsSince(context.Background(), tool.ID, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(2), views)

	var withUser int64
	s.Require().NoError(s.db.Model(&models.ToolView{}).Where("user_id = ?", s.userID).Count(&withUser).Error)
	s.Equal(int64(1), withUser)
}

func (s *HandlersTestSuite) TestGetToolNotFound() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/tools/missing", "", nil).Code)
}

func (s *HandlersTestSuite) TestUnverifiedToolVisibleToAdminOnly() {
	tool := s.createTool("Queued", false)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug, "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug, s.userToken, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug, s.adminToken, nil).Code)
}

func (s *HandlersTestSuite) TestTrackClick() {
	tool := s.createTool("Clicked", true)

	w := s.do(http.MethodPost, "/api/v1/tools/"+tool.Slug+"/click", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var body map[string]string
	s.decode(w, &body)
	s.Equal(tool.WebsiteURL, body["url"])

	clicks, err := s.repo.CountClicksSince(context.Background(), tool.ID, time.Now().Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), clicks)
}

func (s *HandlersTestSuite) TestTrendingTools() {
	hot := s.createTool("Hot", true)
	s.createTool("Cold", true)
	s.Require().NoError(s.repo.UpdateTrending(context.Background(), hot.ID, 42, true))

	w := s.do(http.MethodGet, "/api/v1/tools/trending", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var body struct {
		Tools []models.Tool `json:"tools"`
	}
	s.decode(w, &body)
	s.Require().Len(body.Tools, 1)
	s.Equal(hot.ID, body.Tools[0].ID)
	s.True(body.Tools[0].IsTrending)
}

func (s *HandlersTestSuite) TestSubmitTool() {
	req := SubmitToolRequest{
		Name:        "Fresh Idea",
		WebsiteURL:  "https://fresh.example.com",
		Description: "Writes things",
		Categories:  []string{"Writing"},
		Tags:        []string{"text"},
	}
	w := s.do(http.MethodPost, "/api/v1/tools/submit", "", req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID       string `json:"id"`
		Verified bool   `json:"verified"`
	}
	s.decode(w, &created)
	s.False(created.Verified)

	tool, err := s.repo.GetToolByID(context.Background(), created.ID)
	s.Require().NoError(err)
	s.False(tool.Verified)
	s.Equal([]string{models.PricingFree}, []string(tool.Pricing))
	s.Equal(models.PlaceholderLogo, tool.LogoURL)
	s.Require().Len(tool.Categories, 1)
	s.Equal("Writing", tool.Categories[0].Name)

	req.Name = "fresh idea"
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/tools/submit", "", req).Code)

	req.Name = "Other"
	req.Pricing = []string{"Cheap"}
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/v1/tools/submit", "", req).Code)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/tools/submit", "", map[string]string{"name": "No URL"}).Code)
}

func (s *HandlersTestSuite) TestSearchFallsBackToSQL() {
	s.createTool("Copy Writer", true)
	s.createTool("Hidden Writer", false)

	w := s.do(http.MethodGet, "/api/v1/search?q=writer", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var result search.Result
	s.decode(w, &result)
	s.Equal(search.BackendSQL, result.Backend)
	s.Require().Len(result.Tools, 1)
	s.Equal("Copy Writer", result.Tools[0].Name)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/search", "", nil).Code)
}

func (s *HandlersTestSuite) TestCategoriesAndTags() {
	s.createTool("Writer", true, "Writing")
	s.createTool("Drafter", true, "Writing")

	w := s.do(http.MethodGet, "/api/v1/categories", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var cats struct {
		Categories []models.Category `json:"categories"`
	}
	s.decode(w, &cats)
	s.Require().Len(cats.Categories, 1)
	s.Equal(int64(2), cats.Categories[0].ToolCount)

	w = s.do(http.MethodGet, "/api/v1/categories/writing", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail struct {
		Category models.Category  `json:"category"`
		Tools    ToolListResponse `json:"tools"`
	}
	s.decode(w, &detail)
	s.Equal("Writing", detail.Category.Name)
	s.Equal(int64(2), detail.Tools.Total)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/categories/nope", "", nil).Code)

	w = s.do(http.MethodGet, "/api/v1/tags", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var tags struct {
		Tags []models.Tag `json:"tags"`
	}
	s.decode(w, &tags)
	s.Require().Len(tags.Tags, 1)
	s.Equal("ai", tags.Tags[0].Name)
}

func (s *HandlersTestSuite) TestToolStats() {
	tool := s.createTool("Counted", true)
	now := time.Now().UTC()
	s.handlers.now = func() time.Time { return now }

	ctx := context.Background()
	for _, ago := range []time.Duration{time.Hour, 3 * 24 * time.Hour, 20 * 24 * time.Hour} {
		s.Require().NoError(s.repo.RecordView(ctx, &models.ToolView{ToolID: tool.ID, ViewedAt: now.Add(-ago)}))
	}
	s.Require().NoError(s.repo.RecordClick(ctx, &models.ToolClick{ToolID: tool.ID, ClickedAt: now.Add(-time.Hour)}))

	w := s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug+"/stats?days=7", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats ToolStats
	s.decode(w, &stats)
	s.Equal(int64(1), stats.Views["1d"])
	s.Equal(int64(2), stats.Views["7d"])
	s.Equal(int64(3), stats.Views["30d"])
	s.Equal(int64(1), stats.Clicks["30d"])
	s.Len(stats.Series, 7)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/tools/"+tool.Slug+"/stats?days=0", "", nil).Code)
}
