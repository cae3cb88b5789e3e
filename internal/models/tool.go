package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pricing classifications a tool can carry
const (
	PricingFree       = "Free"
	PricingFreemium   = "Freemium"
	PricingPaid       = "Paid"
	PricingFreeTrial  = "Free Trial"
	PricingOpenSource = "Open Source"
	PricingContact    = "Contact"
)

// PricingOptions is the fixed set of pricing tags
var PricingOptions = []string{
	PricingFree,
	PricingFreemium,
	PricingPaid,
	PricingFreeTrial,
	PricingOpenSource,
	PricingContact,
}

// IsValidPricing reports whether p is one of PricingOptions
func IsValidPricing(p string) bool {
	for _, opt := range PricingOptions {
		if opt == p {
			return true
		}
	}
	return false
}

// Placeholder artwork assigned to tools that arrive without images
const (
	PlaceholderLogo  = "/placeholder-logo.png"
	PlaceholderCover = "/placeholder-cover.png"
)

// Tool is a catalog entry for an AI product
type Tool struct {
	ID               string `gorm:"primaryKey;type:uuid" json:"id"`
	Name             string `gorm:"not null;index" json:"name"`
	Slug             string `gorm:"uniqueIndex;not null" json:"slug"`
	Description      string `gorm:"type:text" json:"description"`
	ShortDescription string `gorm:"type:text" json:"short_description"`
	WebsiteURL       string `json:"website_url"`
	LogoURL          string `json:"logo_url"`
	CoverURL         string `json:"cover_url"`

	Pricing        datatypes.JSONSlice[string] `json:"pricing"`
	PricingDetails string                      `gorm:"type:text" json:"pricing_details"`
	Features       datatypes.JSONSlice[string] `json:"features"`
	Platforms      datatypes.JSONSlice[string] `json:"platforms"`
	Models         datatypes.JSONSlice[string] `json:"models"`
	Pros           datatypes.JSONSlice[string] `json:"pros"`
	Cons           datatypes.JSONSlice[string] `json:"cons"`
	UseCases       datatypes.JSONSlice[string] `json:"use_cases"`
	IdealFor       string                      `gorm:"type:text" json:"ideal_for"`
	HasFreeTrial   bool                        `gorm:"default:false" json:"has_free_trial"`
	IsOpenSource   bool                        `gorm:"default:false" json:"is_open_source"`
	HasAPI         bool                        `gorm:"default:false" json:"has_api"`

	Verified      bool    `gorm:"default:false;index" json:"verified"`
	IsTrending    bool    `gorm:"default:false;index" json:"is_trending"`
	TrendingScore float64 `gorm:"default:0" json:"trending_score"`

	// Import provenance; the pair is unique when both are set
	Source     *string `gorm:"uniqueIndex:idx_tools_source_external" json:"source,omitempty"`
	ExternalID *string `gorm:"uniqueIndex:idx_tools_source_external" json:"external_id,omitempty"`

	SubmitterEmail string `json:"-"`

	AverageRating float64 `gorm:"default:0" json:"average_rating"`
	ReviewCount   int     `gorm:"default:0" json:"review_count"`

	Categories []Category `gorm:"many2many:tool_categories" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"many2many:tool_tags" json:"tags,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tool) TableName() string {
	return "tools"
}

func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateUUID()
	}
	return nil
}

// Category groups tools; featured categories are highlighted on the home page
type Category struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Featured    bool   `gorm:"default:false;index" json:"featured"`

	ToolCount int64 `gorm:"-" json:"tool_count,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// Tag is a free-form label attached to tools
type Tag struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
	Slug string `gorm:"index" json:"slug"`

	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateUUID()
	}
	return nil
}

// ToolView is an append-only page view event. Trending scores are computed from these.
type ToolView struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ToolID    string    `gorm:"not null;index:idx_tool_views_tool_time" json:"tool_id"`
	ViewedAt  time.Time `gorm:"not null;index:idx_tool_views_tool_time" json:"viewed_at"`
	UserID    *string   `gorm:"index" json:"user_id,omitempty"`
	IPAddress string    `json:"-"`
	UserAgent string    `json:"-"`
	Referrer  string    `json:"referrer,omitempty"`
}

func (ToolView) TableName() string {
	return "tool_views"
}

func (v *ToolView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	if v.ViewedAt.IsZero() {
		v.ViewedAt = time.Now().UTC()
	}
	return nil
}

// ToolClick is an append-only outbound click event
type ToolClick struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ToolID    string    `gorm:"not null;index:idx_tool_clicks_tool_time" json:"tool_id"`
	ClickedAt time.Time `gorm:"not null;index:idx_tool_clicks_tool_time" json:"clicked_at"`
	UserID    *string   `gorm:"index" json:"user_id,omitempty"`
	IPAddress string    `json:"-"`
	Referrer  string    `json:"referrer,omitempty"`
}

func (ToolClick) TableName() string {
	return "tool_clicks"
}

func (c *ToolClick) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now().UTC()
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
