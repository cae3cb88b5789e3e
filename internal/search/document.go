package search

import (
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/models"
)

// ToolDocument is the indexed shape of a tool
type ToolDocument struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	Features         []string `json:"features"`
	Pricing          []string `json:"pricing"`
	Verified         bool     `json:"verified"`
	TrendingScore    float64  `json:"trending_score"`
	CreatedAt        string   `json:"created_at"`
}

// ToolToDocument converts a tool with preloaded categories and tags
func ToolToDocument(tool models.Tool) ToolDocument {
	doc := ToolDocument{
		ID:               tool.ID,
		Name:             tool.Name,
		Slug:             tool.Slug,
		Description:      tool.Description,
		ShortDescription: tool.ShortDescription,
		Categories:       make([]string, 0, len(tool.Categories)),
		Tags:             make([]string, 0, len(tool.Tags)),
		Features:         append([]string{}, tool.Features...),
		Pricing:          append([]string{}, tool.Pricing...),
		Verified:         tool.Verified,
		TrendingScore:    tool.TrendingScore,
		CreatedAt:        tool.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, c := range tool.Categories {
		doc.Categories = append(doc.Categories, c.Slug)
	}
	for _, t := range tool.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	return doc
}
