// Package sources adapts external AI catalogs into raw import candidates.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Source names
const (
	HuggingFace = "huggingface"
	OpenRouter  = "openrouter"
	GitHub      = "github"
)

// Names lists every source in the order an "all sources" run visits them
var Names = []string{HuggingFace, OpenRouter, GitHub}

const userAgent = "FindMyAI-Importer/1.0"

// RawCandidate is a loosely-typed record as a source reports it
type RawCandidate struct {
	Name        string
	Description string
	URL         string
	LogoURL     string
	Tags        []string
	PricingHint string
}

// Source fetches the raw candidate list from one external catalog.
// An error means the whole list could not be fetched.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawCandidate, error)
}

// Config configures the built-in sources
type Config struct {
	HuggingFaceURL string
	OpenRouterURL  string
	GitHubURL      string
	GitHubToken    string
	// Limit caps candidates per source
	Limit   int
	Timeout time.Duration
	// HTTPClient is shared by all sources; nil uses a plain client
	HTTPClient *http.Client
}

// NewDefault builds the three built-in sources keyed by name
func NewDefault(cfg Config) map[string]Source {
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	return map[string]Source{
		HuggingFace: NewHuggingFaceSource(newRestClient(cfg.HuggingFaceURL, cfg), cfg.Limit),
		OpenRouter:  NewOpenRouterSource(newRestClient(cfg.OpenRouterURL, cfg), cfg.Limit),
		GitHub:      NewGitHubSource(newRestClient(cfg.GitHubURL, cfg), cfg.GitHubToken, cfg.Limit),
	}
}

func newRestClient(baseURL string, cfg Config) *resty.Client {
	var client *resty.Client
	if cfg.HTTPClient != nil {
		client = resty.NewWithClient(cfg.HTTPClient)
	} else {
		client = resty.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Log.Debug("Source request", zap.String("method", req.Method), zap.String("url", req.URL))
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Log.Debug("Source response",
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
		)
		return nil
	})
	return client
}

// checkResponse turns transport errors and non-2xx statuses into one error
func checkResponse(source string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", source, err)
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return fmt.Errorf("%s: unexpected status %d: %s", source, resp.StatusCode(), body)
	}
	return nil
}
