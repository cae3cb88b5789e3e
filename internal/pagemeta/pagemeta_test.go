package pagemeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/full", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title> Writer AI </title>
			<meta name="description" content="Drafts your emails">
			<link rel="shortcut icon" href="/static/icon.png">
		</head><body></body></html>`))
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Fallback</title>
			<meta property="og:title" content="OG Title">
			<meta property="og:description" content="OG description">
			<meta property="og:image" content="https://cdn.example.com/og.png">
		</head></html>`))
	})
	mux.HandleFunc("/bare", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	})
	return httptest.NewServer(mux)
}

func TestFetchExtractsHeadMetadata(t *testing.T) {
	srv := newPageServer()
	defer srv.Close()

	meta, err := NewCollyFetcher(5*time.Second, nil).Fetch(context.Background(), srv.URL+"/full")
	require.NoError(t, err)

	assert.Equal(t, "Writer AI", meta.Title)
	assert.Equal(t, "Drafts your emails", meta.Description)
	assert.Equal(t, srv.URL+"/static/icon.png", meta.Icon)
}

func TestFetchFallsBackToOpenGraph(t *testing.T) {
	srv := newPageServer()
	defer srv.Close()

	meta, err := NewCollyFetcher(5*time.Second, nil).Fetch(context.Background(), srv.URL+"/og")
	require.NoError(t, err)

	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG description", meta.Description)
	assert.Equal(t, "https://cdn.example.com/og.png", meta.Icon)
}

func TestFetchPageWithoutHead(t *testing.T) {
	srv := newPageServer()
	defer srv.Close()

	meta, err := NewCollyFetcher(5*time.Second, nil).Fetch(context.Background(), srv.URL+"/bare")
	require.NoError(t, err)
	assert.Empty(t, meta.Icon)
}

func TestFetchErrors(t *testing.T) {
	srv := newPageServer()
	defer srv.Close()

	f := NewCollyFetcher(5*time.Second, nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "ftp://example.com")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, srv.URL+"/full")
	assert.ErrorIs(t, err, context.Canceled)
}
