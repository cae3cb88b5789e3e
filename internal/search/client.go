package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
)

// IndexTools is the catalog index
const IndexTools = "tools"

// Client wraps the Elasticsearch client with catalog-specific operations
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client for url and verifies the connection.
// transport may be nil.
func NewClient(url string, transport http.RoundTripper) (*Client, error) {
	if url == "" {
		url = "http://localhost:9200"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{url},
		Transport: transport,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	res.Body.Close()

	return &Client{es: es}, nil
}

// InitializeIndices creates the tools index when it does not exist
func (c *Client) InitializeIndices(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "keyword"},
				"name": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"slug":              map[string]interface{}{"type": "keyword"},
				"description":       map[string]interface{}{"type": "text", "analyzer": "standard"},
				"short_description": map[string]interface{}{"type": "text", "analyzer": "standard"},
				"categories":        map[string]interface{}{"type": "keyword"},
				"tags":              map[string]interface{}{"type": "keyword"},
				"features":          map[string]interface{}{"type": "text"},
				"pricing":           map[string]interface{}{"type": "keyword"},
				"verified":          map[string]interface{}{"type": "boolean"},
				"trending_score":    map[string]interface{}{"type": "float"},
				"created_at":        map[string]interface{}{"type": "date"},
			},
		},
	}

	if err := c.createIndex(ctx, IndexTools, mapping); err != nil {
		return fmt.Errorf("failed to create tools index: %w", err)
	}
	return nil
}

func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("creating index", res.Status(), res.Body)
	}
	return nil
}

// IndexTool upserts a tool document
func (c *Client) IndexTool(ctx context.Context, doc ToolDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal tool document: %w", err)
	}

	res, err := c.es.Index(IndexTools, bytes.NewReader(body),
		c.es.Index.WithDocumentID(doc.ID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index tool: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("indexing tool", res.Status(), res.Body)
	}
	return nil
}

// DeleteTool removes a tool document. A missing document is not an error.
func (c *Client) DeleteTool(ctx context.Context, toolID string) error {
	res, err := c.es.Delete(IndexTools, toolID, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("deleting tool", res.Status(), res.Body)
	}
	return nil
}

// Query is a full-text tool search
type Query struct {
	Text     string   `json:"q"`
	Category string   `json:"category,omitempty"`
	Pricing  []string `json:"pricing,omitempty"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset"`
}

// Hits is the id-level result of a search; callers hydrate from the catalog store
type Hits struct {
	IDs   []string `json:"ids"`
	Total int64    `json:"total"`
}

// SearchTools runs a fuzzy multi-field query over verified tools
func (c *Client) SearchTools(ctx context.Context, q Query) (*Hits, error) {
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"verified": true}},
	}
	if q.Category != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"categories": q.Category}})
	}
	if len(q.Pricing) > 0 {
		filters = append(filters, map[string]interface{}{"terms": map[string]interface{}{"pricing": q.Pricing}})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     q.Text,
						"fields":    []string{"name^3", "short_description^2", "description", "tags^2", "features"},
						"fuzziness": "AUTO",
					},
				},
				"filter": filters,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"trending_score": map[string]interface{}{"order": "desc"}},
		},
		"from":    q.Offset,
		"size":    q.Limit,
		"_source": false,
	}

	queryJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(IndexTools),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("searching tools", res.Status(), res.Body)
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := &Hits{IDs: make([]string, 0, len(searchResp.Hits.Hits)), Total: searchResp.Hits.Total.Value}
	for _, h := range searchResp.Hits.Hits {
		hits.IDs = append(hits.IDs, h.ID)
	}
	return hits, nil
}

func responseError(action, status string, body io.Reader) error {
	var errResp map[string]interface{}
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return fmt.Errorf("error response [%s]", status)
	}
	return fmt.Errorf("error %s: [%s] %v", action, status, errResp["error"])
}
