// Package importer pulls candidate tools from external catalogs, drops the ones
// already in the catalog, enriches the rest and stores them unverified.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/cache"
	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/importer/sources"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/pagemeta"
	"github.com/bynikesh/findmyai-sub001/internal/storage"
	"github.com/bynikesh/findmyai-sub001/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	ErrRunInProgress = errors.New("an import run is already in progress")
	ErrUnknownSource = errors.New("unknown import source")
)

// Candidate outcomes recorded in metrics
const (
	outcomeImported = "imported"
	outcomeSkipped  = "skipped"
	outcomeError    = "error"
)

// Store is the catalog access the importer needs
type Store interface {
	ToolExists(ctx context.Context, source, externalID, name string) (bool, error)
	CreateTool(ctx context.Context, tool *models.Tool, categoryNames, tagNames []string) error
	CreateImportRun(ctx context.Context, run *models.ImportRun) error
	RecentImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// Enricher produces a profile for a candidate
type Enricher interface {
	Enrich(ctx context.Context, in enrichment.Input) (*enrichment.Profile, error)
	Provider() string
}

// Indexer receives newly stored tools
type Indexer interface {
	IndexTool(ctx context.Context, tool *models.Tool)
}

// Options wires optional collaborators. Nil fields disable the step they serve.
type Options struct {
	Enricher      Enricher
	Pages         pagemeta.Fetcher
	Logos         storage.LogoMirror
	Index         Indexer
	Redis         *cache.RedisClient
	LockTTL       time.Duration
	SourceTimeout time.Duration
}

// SourceResult tallies one source within a run
type SourceResult struct {
	Source    string        `json:"source"`
	Fetched   int           `json:"fetched"`
	Imported  int           `json:"imported"`
	Skipped   int           `json:"skipped"`
	Errors    []string      `json:"errors"`
	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"duration"`
}

func (r *SourceResult) add(o SourceResult) {
	r.Fetched += o.Fetched
	r.Imported += o.Imported
	r.Skipped += o.Skipped
	r.Errors = append(r.Errors, o.Errors...)
	r.Cancelled = r.Cancelled || o.Cancelled
}

// RunResult is the outcome of a whole run. Total is the summary across Sources.
type RunResult struct {
	RunID   string         `json:"run_id"`
	Sources []SourceResult `json:"sources"`
	Total   SourceResult   `json:"total"`
}

// Importer orchestrates import runs
type Importer struct {
	store   Store
	sources map[string]sources.Source
	opts    Options
	lock    *runLock
}

// New creates an importer over the named sources
func New(store Store, srcs map[string]sources.Source, opts Options) *Importer {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Hour
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 30 * time.Second
	}
	return &Importer{
		store:   store,
		sources: srcs,
		opts:    opts,
		lock:    &runLock{redis: opts.Redis, ttl: opts.LockTTL},
	}
}

// SourceNames lists configured sources in run order
func (im *Importer) SourceNames() []string {
	names := make([]string, 0, len(im.sources))
	for _, n := range sources.Names {
		if _, ok := im.sources[n]; ok {
			names = append(names, n)
		}
	}
	var extra []string
	for n := range im.sources {
		if !contains(names, n) {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// RunAll imports from every source in order and writes one run row per source
// plus a summary row under models.ImportSourceAll
func (im *Importer) RunAll(ctx context.Context) (*RunResult, error) {
	return im.run(ctx, im.SourceNames(), true)
}

// RunSource imports from a single source
func (im *Importer) RunSource(ctx context.Context, source string) (*RunResult, error) {
	if _, ok := im.sources[source]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return im.run(ctx, []string{source}, false)
}

// Stop ends the active run after the candidate in progress. In-flight
// external calls finish under their own timeouts.
func (im *Importer) Stop() (runID string, stopped bool) {
	runID = im.lock.stop()
	if runID != "" {
		logger.Log.Info("Import run stop requested", logger.WithRunID(runID))
	}
	return runID, runID != ""
}

// Running reports the active run id
func (im *Importer) Running() (string, bool) {
	return im.lock.active()
}

// RecentRuns returns import run rows newest first
func (im *Importer) RecentRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	return im.store.RecentImportRuns(ctx, limit)
}

func (im *Importer) run(ctx context.Context, names []string, summary bool) (*RunResult, error) {
	runID := uuid.New().String()
	runCtx, err := im.lock.acquire(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer im.lock.release()

	start := time.Now()
	result := &RunResult{
		RunID:   runID,
		Sources: make([]SourceResult, 0, len(names)),
		Total:   SourceResult{Source: models.ImportSourceAll, Errors: []string{}},
	}
	logger.Log.Info("Import run started", logger.WithRunID(runID), zap.Strings("sources", names))

	for _, name := range names {
		if runCtx.Err() != nil {
			result.Total.Cancelled = true
			break
		}
		sr := im.runSource(runCtx, runID, name)
		im.saveRun(runID, sr)
		result.Sources = append(result.Sources, sr)
		result.Total.add(sr)
	}
	result.Total.Duration = time.Since(start)

	if summary {
		im.saveRun(runID, result.Total)
	}

	logger.Log.Info("Import run finished",
		logger.WithRunID(runID),
		zap.Int("fetched", result.Total.Fetched),
		zap.Int("imported", result.Total.Imported),
		zap.Int("skipped", result.Total.Skipped),
		zap.Int("errors", len(result.Total.Errors)),
		zap.Bool("cancelled", result.Total.Cancelled),
		logger.WithDuration(result.Total.Duration),
	)
	return result, nil
}

// runSource fetches and processes one source. A fetch failure yields a
// zero-progress result carrying the error. stop is only polled between
// candidates; the calls themselves run on a context it does not cancel.
func (im *Importer) runSource(stop context.Context, runID, name string) SourceResult {
	ctx, span := telemetry.TraceImportSource(stop, runID, name)
	defer span.End()
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	sr := SourceResult{Source: name, Errors: []string{}}

	fetchCtx, cancel := context.WithTimeout(ctx, im.opts.SourceTimeout)
	raws, err := im.sources[name].Fetch(fetchCtx)
	cancel()
	if err != nil {
		msg := fmt.Sprintf("fetch %s: %v", name, err)
		sr.Errors = append(sr.Errors, msg)
		sr.Cancelled = stop.Err() != nil
		sr.Duration = time.Since(start)
		span.RecordError(err)
		logger.Log.Error("Import source fetch failed", logger.WithSource(name), zap.Error(err))
		metrics.RecordImportRun(name, "failed")
		return sr
	}
	sr.Fetched = len(raws)

	for _, raw := range raws {
		if stop.Err() != nil {
			sr.Cancelled = true
			break
		}
		outcome, err := im.processCandidate(ctx, name, raw)
		switch outcome {
		case outcomeImported:
			sr.Imported++
		case outcomeSkipped:
			sr.Skipped++
		default:
			sr.Errors = append(sr.Errors, err.Error())
		}
		metrics.RecordImportCandidate(name, outcome)
	}

	sr.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("import.fetched", sr.Fetched),
		attribute.Int("import.imported", sr.Imported),
		attribute.Int("import.skipped", sr.Skipped),
		attribute.Int("import.errors", len(sr.Errors)),
	)

	status := "success"
	switch {
	case sr.Cancelled:
		status = "cancelled"
	case len(sr.Errors) > 0:
		status = "partial"
	}
	metrics.RecordImportRun(name, status)
	return sr
}

// processCandidate runs normalize, dedup, enrich, logo backfill and persist for
// one record. Enrichment and logo failures are logged and never returned.
func (im *Importer) processCandidate(ctx context.Context, source string, raw sources.RawCandidate) (string, error) {
	ctx, span := telemetry.TraceImportCandidate(ctx, source, raw.Name)
	defer span.End()

	c := Normalize(source, raw)
	if c.Name == "" || c.ExternalID == "" {
		return outcomeError, fmt.Errorf("%s: candidate without a usable name", source)
	}

	exists, err := im.store.ToolExists(ctx, c.Source, c.ExternalID, c.Name)
	if err != nil {
		return outcomeError, fmt.Errorf("%s: dedup check for %q: %w", source, c.Name, err)
	}
	if exists {
		return outcomeSkipped, nil
	}

	c = im.enrich(ctx, c)
	c = im.backfillLogo(ctx, c)

	tool := c.Tool()
	if err := im.store.CreateTool(ctx, tool, []string{c.Category}, c.Tags); err != nil {
		span.RecordError(err)
		return outcomeError, fmt.Errorf("%s: persist %q: %w", source, c.Name, err)
	}

	if im.opts.Index != nil {
		im.opts.Index.IndexTool(ctx, tool)
	}
	logger.Log.Debug("Imported tool", logger.WithSource(source), logger.WithToolID(tool.ID), zap.String("name", tool.Name))
	return outcomeImported, nil
}

func (im *Importer) enrich(ctx context.Context, c Candidate) Candidate {
	if im.opts.Enricher == nil {
		return c
	}
	profile, err := im.opts.Enricher.Enrich(ctx, enrichment.Input{
		Name:        c.Name,
		Description: c.Description,
		WebsiteURL:  c.WebsiteURL,
	})
	if err != nil {
		logger.Log.Warn("Enrichment failed, keeping source data",
			logger.WithSource(c.Source),
			zap.String("name", c.Name),
			zap.String("provider", im.opts.Enricher.Provider()),
			zap.Error(err),
		)
		return c
	}
	return c.ApplyProfile(profile)
}

func (im *Importer) backfillLogo(ctx context.Context, c Candidate) Candidate {
	if im.opts.Pages == nil || !c.NeedsLogo() || c.WebsiteURL == "" {
		return c
	}
	meta, err := im.opts.Pages.Fetch(ctx, c.WebsiteURL)
	if err != nil {
		logger.Log.Debug("Logo lookup failed", zap.String("url", c.WebsiteURL), zap.Error(err))
		return c
	}
	if meta.Icon == "" {
		return c
	}
	c.LogoURL = meta.Icon

	if im.opts.Logos != nil {
		uploaded, err := im.opts.Logos.MirrorLogo(ctx, ExternalID(c.Name), meta.Icon)
		if err != nil {
			logger.Log.Debug("Logo mirroring failed", zap.String("url", meta.Icon), zap.Error(err))
			return c
		}
		c.LogoURL = uploaded.URL
	}
	return c
}

// saveRun appends a run row. Failures are logged; the run result is still returned.
func (im *Importer) saveRun(runID string, sr SourceResult) {
	row := &models.ImportRun{
		RunID:      runID,
		Source:     sr.Source,
		Fetched:    sr.Fetched,
		Imported:   sr.Imported,
		Skipped:    sr.Skipped,
		Errors:     append([]string{}, sr.Errors...),
		Cancelled:  sr.Cancelled,
		DurationMs: sr.Duration.Milliseconds(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := im.store.CreateImportRun(ctx, row); err != nil {
		logger.Log.Error("Failed to record import run",
			logger.WithRunID(runID),
			logger.WithSource(sr.Source),
			zap.Error(err),
		)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
