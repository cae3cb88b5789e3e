package handlers

import (
	"context"
	"net/http"

	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/repository"
)

func (s *HandlersTestSuite) TestReviewLifecycle() {
	tool := s.createTool("Rated", true)
	path := "/api/v1/tools/" + tool.Slug + "/reviews"

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, path, "", CreateReviewRequest{Rating: 5}).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, path, s.userToken, CreateReviewRequest{Rating: 6}).Code)

	w := s.do(http.MethodPost, path, s.userToken, CreateReviewRequest{Rating: 4, Title: "Good"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var review models.Review
	s.decode(w, &review)

	s.Equal(http.StatusConflict, s.do(http.MethodPost, path, s.userToken, CreateReviewRequest{Rating: 1}).Code)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, path, s.otherToken, CreateReviewRequest{Rating: 2}).Code)

	got, err := s.repo.GetToolByID(context.Background(), tool.ID)
	s.Require().NoError(err)
	s.InDelta(3.0, got.AverageRating, 1e-9)
	s.Equal(2, got.ReviewCount)

	w = s.do(http.MethodGet, path, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Reviews []models.Review `json:"reviews"`
		Total   int64           `json:"total"`
	}
	s.decode(w, &list)
	s.Equal(int64(2), list.Total)

	s.Equal(http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/reviews/"+review.ID, s.otherToken, nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/reviews/"+review.ID, s.userToken, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/reviews/"+review.ID, s.adminToken, nil).Code)

	got, err = s.repo.GetToolByID(context.Background(), tool.ID)
	s.Require().NoError(err)
	s.InDelta(2.0, got.AverageRating, 1e-9)
	s.Equal(1, got.ReviewCount)
}

func (s *HandlersTestSuite) TestAdminToolCRUD() {
	req := ToolRequest{
		Name:       "Admin Tool",
		WebsiteURL: "https://admin-tool.example.com",
		Pricing:    []string{models.PricingPaid},
		Features:   []string{"Summaries"},
		Categories: []string{"Productivity"},
		Tags:       []string{"notes"},
	}
	w := s.do(http.MethodPost, "/api/v1/admin/tools", s.adminToken, req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created models.Tool
	s.decode(w, &created)
	s.True(created.Verified)
	s.Equal(models.PlaceholderCover, created.CoverURL)
	s.Require().Len(created.Categories, 1)

	req.Name = "Admin Tool Pro"
	req.Categories = []string{"Business", "Writing"}
	req.Features = nil
	w = s.do(http.MethodPut, "/api/v1/admin/tools/"+created.ID, s.adminToken, req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated models.Tool
	s.decode(w, &updated)
	s.Equal("Admin Tool Pro", updated.Name)
	s.Equal(created.Slug, updated.Slug)
	s.Empty(updated.Features)
	s.Len(updated.Categories, 2)

	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/api/v1/admin/tools/missing", s.adminToken, req).Code)

	w = s.do(http.MethodPost, "/api/v1/admin/tools/"+created.ID+"/verify", s.adminToken, map[string]bool{"verified": false})
	s.Require().Equal(http.StatusOK, w.Code)
	var unverified models.Tool
	s.decode(w, &unverified)
	s.False(unverified.Verified)

	w = s.do(http.MethodGet, "/api/v1/admin/tools?verified=false", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var queue ToolListResponse
	s.decode(w, &queue)
	s.Equal(int64(1), queue.Total)

	w = s.do(http.MethodPost, "/api/v1/admin/tools/"+created.ID+"/verify", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/admin/tools/"+created.ID, s.adminToken, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/admin/tools/"+created.ID, s.adminToken, nil).Code)

	_, err := s.repo.GetToolByID(context.Background(), created.ID)
	s.ErrorIs(err, repository.ErrToolNotFound)
}

func (s *HandlersTestSuite) TestAdminCategories() {
	w := s.do(http.MethodPost, "/api/v1/admin/categories", s.adminToken, CategoryRequest{Name: "Voice Agents", Featured: true})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	s.decode(w, &category)
	s.Equal("voice-agents", category.Slug)

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/admin/categories", s.adminToken, CategoryRequest{Name: "Voice Agents"}).Code)

	w = s.do(http.MethodGet, "/api/v1/categories?featured=true", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var featured struct {
		Categories []models.Category `json:"categories"`
	}
	s.decode(w, &featured)
	s.Len(featured.Categories, 1)

	w = s.do(http.MethodPut, "/api/v1/admin/categories/"+category.ID, s.adminToken, CategoryRequest{Name: "Voice", Featured: false})
	s.Require().Equal(http.StatusOK, w.Code)
	var renamed models.Category
	s.decode(w, &renamed)
	s.Equal("voice", renamed.Slug)
	s.False(renamed.Featured)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/admin/categories/"+category.ID, s.adminToken, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/admin/categories/"+category.ID, s.adminToken, nil).Code)
}

func (s *HandlersTestSuite) TestOverview() {
	s.createTool("One", true)
	s.createTool("Two", false)

	w := s.do(http.MethodGet, "/api/v1/admin/analytics/overview", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var overview repository.Overview
	s.decode(w, &overview)
	s.Equal(int64(2), overview.Tools)
	s.Equal(int64(1), overview.Unverified)
}

type stubGenerator struct{ reply string }

func (g stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.reply, nil
}

func (g stubGenerator) Name() string { return "stub" }

func (s *HandlersTestSuite) TestGenerateToolContent() {
	body := enrichment.Input{Name: "Scribe", WebsiteURL: "https://scribe.example.com"}

	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodPost, "/api/v1/admin/ai/generate", s.adminToken, body).Code)

	s.handlers.SetEnricher(enrichment.NewEnricher(stubGenerator{reply: `{
		"description": "Scribe drafts documents.",
		"short_description": "AI drafting",
		"category": "Writing",
		"tags": ["drafting"],
		"features": ["Outlines"],
		"pricing": ["Freemium"]
	}`}, enrichment.Options{}))

	w := s.do(http.MethodPost, "/api/v1/admin/ai/generate", s.adminToken, body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Provider string             `json:"provider"`
		Profile  enrichment.Profile `json:"profile"`
	}
	s.decode(w, &resp)
	s.Equal("stub", resp.Provider)
	s.Equal("Writing", resp.Profile.Category)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/admin/ai/generate", s.adminToken, map[string]string{}).Code)

	s.handlers.SetEnricher(enrichment.NewEnricher(stubGenerator{reply: "not json"}, enrichment.Options{}))
	s.Equal(http.StatusBadGateway, s.do(http.MethodPost, "/api/v1/admin/ai/generate", s.adminToken, body).Code)
}
