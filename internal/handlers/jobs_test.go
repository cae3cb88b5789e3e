package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/importer"
	"github.com/bynikesh/findmyai-sub001/internal/importer/sources"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/trending"
)

type stubSource struct {
	name       string
	candidates []sources.RawCandidate
	release    chan struct{}
}

func (f *stubSource) Name() string { return f.name }

func (f *stubSource) Fetch(ctx context.Context) ([]sources.RawCandidate, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.candidates, nil
}

func (s *HandlersTestSuite) useImporter(srcs ...*stubSource) *importer.Importer {
	m := make(map[string]sources.Source, len(srcs))
	for _, src := range srcs {
		m[src.name] = src
	}
	im := importer.New(s.repo, m, importer.Options{})
	s.handlers.SetImporter(im)
	return im
}

func (s *HandlersTestSuite) TestRunTrendingJob() {
	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodPost, "/api/v1/admin/jobs/trending", s.adminToken, nil).Code)

	fresh := s.createTool("Fresh", true)
	s.handlers.SetTrendingCalculator(trending.NewCalculator(s.repo))

	w := s.do(http.MethodPost, "/api/v1/admin/jobs/trending", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var summary trending.Summary
	s.decode(w, &summary)
	s.Equal(1, summary.Processed)
	s.Equal(1, summary.Trending)

	got, err := s.repo.GetToolByID(context.Background(), fresh.ID)
	s.Require().NoError(err)
	// created just now, so the newness boost alone makes it trending
	s.InDelta(trending.NewnessBoost, got.TrendingScore, 1e-9)
	s.True(got.IsTrending)

	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/v1/admin/jobs/trending", s.userToken, nil).Code)
}

func (s *HandlersTestSuite) TestRunImportJob() {
	s.useImporter(
		&stubSource{name: sources.HuggingFace, candidates: []sources.RawCandidate{
			{Name: "Alpha Model", Description: "alpha", URL: "https://alpha.test"},
			{Name: "Beta Model", Description: "beta", URL: "https://beta.test"},
		}},
		&stubSource{name: sources.OpenRouter, candidates: []sources.RawCandidate{
			{Name: "alpha model", Description: "dup", URL: "https://alpha2.test"},
		}},
	)

	w := s.do(http.MethodPost, "/api/v1/admin/jobs/import", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result importer.RunResult
	s.decode(w, &result)
	s.Equal(3, result.Total.Fetched)
	s.Equal(2, result.Total.Imported)
	s.Equal(1, result.Total.Skipped)
	s.Len(result.Sources, 2)

	w = s.do(http.MethodPost, "/api/v1/admin/jobs/import/sources/"+sources.HuggingFace, s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &result)
	s.Equal(0, result.Total.Imported)
	s.Equal(2, result.Total.Skipped)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/v1/admin/jobs/import/sources/nowhere", s.adminToken, nil).Code)

	w = s.do(http.MethodGet, "/api/v1/admin/jobs/import/logs?limit=2", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var logs struct {
		Runs []models.ImportRun `json:"runs"`
	}
	s.decode(w, &logs)
	s.Require().Len(logs.Runs, 2)
	s.Equal(sources.HuggingFace, logs.Runs[0].Source)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodGet, "/api/v1/admin/jobs/import/logs?limit=0", s.adminToken, nil).Code)

	// imported tools wait for review
	w = s.do(http.MethodGet, "/api/v1/tools", "", nil)
	var public ToolListResponse
	s.decode(w, &public)
	s.Zero(public.Total)
}

func (s *HandlersTestSuite) TestImportConflictAndStop() {
	release := make(chan struct{})
	im := s.useImporter(&stubSource{
		name:       sources.GitHub,
		candidates: []sources.RawCandidate{{Name: "Alpha", URL: "https://alpha.test"}},
		release:    release,
	})

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/admin/jobs/import/stop", s.adminToken, nil).Code)

	results := make(chan *importer.RunResult, 1)
	go func() {
		result, _ := im.RunAll(context.Background())
		results <- result
	}()
	s.Require().Eventually(func() bool {
		_, running := im.Running()
		return running
	}, 2*time.Second, 10*time.Millisecond)

	w := s.do(http.MethodGet, "/api/v1/admin/jobs/import/status", s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var status struct {
		Running bool     `json:"running"`
		Sources []string `json:"sources"`
	}
	s.decode(w, &status)
	s.True(status.Running)
	s.Equal([]string{sources.GitHub}, status.Sources)

	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/admin/jobs/import", s.adminToken, nil).Code)

	s.Equal(http.StatusAccepted, s.do(http.MethodPost, "/api/v1/admin/jobs/import/stop", s.adminToken, nil).Code)

	// the in-flight fetch is not interrupted; the loop stops once it returns
	close(release)
	select {
	case result := <-results:
		s.Require().NotNil(result)
		s.True(result.Total.Cancelled)
		s.Equal(1, result.Total.Fetched)
		s.Zero(result.Total.Imported)
	case <-time.After(2 * time.Second):
		s.FailNow("stopped run did not finish")
	}

	_, running := im.Running()
	s.False(running)
}
