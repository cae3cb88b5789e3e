package handlers

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/bynikesh/findmyai-sub001/internal/errors"
	"github.com/bynikesh/findmyai-sub001/internal/importer"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunTrending recomputes trending scores and returns the run summary
// POST /api/v1/admin/jobs/trending
func (h *Handlers) RunTrending(c *gin.Context) {
	if h.trending == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("trending calculator"))
		return
	}

	// a dropped connection must not abort the job half way
	ctx := context.WithoutCancel(c.Request.Context())
	summary, err := h.trending.Run(ctx)
	if err != nil {
		logger.Log.Error("Trending run failed", zap.Error(err))
		util.RespondInternalError(c, "trending run failed")
		return
	}
	h.InvalidateListings(ctx)
	c.JSON(http.StatusOK, summary)
}

// RunImport imports from every configured source
// POST /api/v1/admin/jobs/import
func (h *Handlers) RunImport(c *gin.Context) {
	h.runImport(c, "")
}

// RunImportSource imports from one source
// POST /api/v1/admin/jobs/import/sources/:source
func (h *Handlers) RunImportSource(c *gin.Context) {
	h.runImport(c, c.Param("source"))
}

func (h *Handlers) runImport(c *gin.Context, source string) {
	if h.importer == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("importer"))
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	var (
		result *importer.RunResult
		err    error
	)
	if source == "" {
		result, err = h.importer.RunAll(ctx)
	} else {
		result, err = h.importer.RunSource(ctx, source)
	}

	switch {
	case errors.Is(err, importer.ErrRunInProgress):
		runID, _ := h.importer.Running()
		util.RespondWithAPIError(c, apierrors.Conflict("an import run is already in progress").WithDetails(runID))
		return
	case errors.Is(err, importer.ErrUnknownSource):
		util.RespondValidationError(c, "source", "unknown source; expected one of the configured sources")
		return
	case err != nil:
		logger.Log.Error("Import run failed", logger.WithSource(source), zap.Error(err))
		util.RespondInternalError(c, "import run failed")
		return
	}

	if result.Total.Imported > 0 {
		h.InvalidateListings(ctx)
	}
	c.JSON(http.StatusOK, result)
}

// StopImport cancels the active import run
// POST /api/v1/admin/jobs/import/stop
func (h *Handlers) StopImport(c *gin.Context) {
	if h.importer == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("importer"))
		return
	}

	runID, stopped := h.importer.Stop()
	if !stopped {
		util.RespondWithAPIError(c, apierrors.Conflict("no import run is in progress"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run_id": runID, "stopping": true})
}

// ImportStatus reports the active run and the configured sources
// GET /api/v1/admin/jobs/import/status
func (h *Handlers) ImportStatus(c *gin.Context) {
	if h.importer == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("importer"))
		return
	}

	runID, running := h.importer.Running()
	c.JSON(http.StatusOK, gin.H{
		"running": running,
		"run_id":  runID,
		"sources": h.importer.SourceNames(),
	})
}

// ImportLogs returns recent import run rows, newest first
// GET /api/v1/admin/jobs/import/logs?limit=20
func (h *Handlers) ImportLogs(c *gin.Context) {
	limit := util.ParseInt(c.Query("limit"), 20)
	if limit < 1 || limit > 200 {
		util.RespondValidationError(c, "limit", "limit must be between 1 and 200")
		return
	}

	runs, err := h.repo.RecentImportRuns(c.Request.Context(), limit)
	if util.HandleDBError(c, err, "import runs") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
