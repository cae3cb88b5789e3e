// Package pagemeta scrapes title, description and icon from a web page.
package pagemeta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/gocolly/colly/v2"
)

const userAgent = "FindMyAI-MetadataBot/1.0 (+https://findmyai.dev)"

// Metadata is the best-effort summary of a page. Any field may be empty.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Fetcher loads page metadata for a URL
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Metadata, error)
}

// CollyFetcher scrapes the <head> of a page with colly
type CollyFetcher struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// NewCollyFetcher creates a fetcher. transport may be nil.
func NewCollyFetcher(timeout time.Duration, transport http.RoundTripper) *CollyFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CollyFetcher{timeout: timeout, transport: transport}
}

// Fetch visits pageURL once and extracts metadata from its head. Relative icon
// links are resolved against the final page URL.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*Metadata, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid page url %q", pageURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(f.timeout)
	if f.transport != nil {
		c.WithTransport(f.transport)
	}

	meta := &Metadata{}
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML("head", func(e *colly.HTMLElement) {
		meta.Title = firstNonEmpty(
			e.ChildAttr(`meta[property="og:title"]`, "content"),
			e.ChildText("title"),
		)
		meta.Description = firstNonEmpty(
			e.ChildAttr(`meta[name="description"]`, "content"),
			e.ChildAttr(`meta[property="og:description"]`, "content"),
		)
		icon := firstNonEmpty(
			e.ChildAttr(`link[rel~="icon"]`, "href"),
			e.ChildAttr(`link[rel="apple-touch-icon"]`, "href"),
			e.ChildAttr(`meta[property="og:image"]`, "content"),
		)
		if icon != "" {
			meta.Icon = e.Request.AbsoluteURL(icon)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", pageURL, r.StatusCode, err)
	})

	start := time.Now()
	err = c.Visit(pageURL)
	if err == nil {
		err = fetchErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	metrics.RecordExternalCall("pagemeta", start, err)
	if err != nil {
		return nil, err
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Description = strings.TrimSpace(meta.Description)
	return meta, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
