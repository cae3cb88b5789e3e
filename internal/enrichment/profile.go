package enrichment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidProfile is returned when generated text is not a usable profile
var ErrInvalidProfile = errors.New("invalid enrichment profile")

// CategoryOther is assigned when the generated category is not allowed
const CategoryOther = "Other"

// AllowedCategories is the fixed set a generated profile may choose from
var AllowedCategories = []string{
	"Writing",
	"Image Generation",
	"Video",
	"Audio & Voice",
	"Coding",
	"Chatbots",
	"Productivity",
	"Marketing",
	"Design",
	"Research",
	"Data Analysis",
	"Education",
	"Business",
	"Developer Tools",
	CategoryOther,
}

// Profile is the structured description a generator returns for a tool
type Profile struct {
	Description      string   `json:"description" validate:"required"`
	ShortDescription string   `json:"short_description" validate:"required,max=300"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags" validate:"max=15,dive,required"`
	Features         []string `json:"features" validate:"dive,required"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	IdealFor         string   `json:"ideal_for"`
	UseCases         []string `json:"use_cases"`
	Pricing          []string `json:"pricing" validate:"dive,pricing"`
	PricingDetails   string   `json:"pricing_details"`
	HasFreeTrial     bool     `json:"has_free_trial"`
	IsOpenSource     bool     `json:"is_open_source"`
	HasAPI           bool     `json:"has_api"`
	WebsiteURL       string   `json:"website_url" validate:"omitempty,url"`
	Platforms        []string `json:"platforms"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("pricing", func(fl validator.FieldLevel) bool {
		return models.IsValidPricing(fl.Field().String())
	})
	return v
}

// ParseProfile decodes generated text into a validated Profile. Markdown code
// fences around the JSON are tolerated; anything else that is not a single JSON
// object of the right shape fails with ErrInvalidProfile. A category outside
// AllowedCategories becomes CategoryOther.
func ParseProfile(raw string) (*Profile, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidProfile)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidProfile)
	}

	p.normalize()
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return &p, nil
}

func (p *Profile) normalize() {
	p.Description = strings.TrimSpace(p.Description)
	p.ShortDescription = strings.TrimSpace(p.ShortDescription)
	p.Category = NormalizeCategory(p.Category)
	p.Tags = cleanList(p.Tags)
	p.Features = cleanList(p.Features)
	p.Pros = cleanList(p.Pros)
	p.Cons = cleanList(p.Cons)
	p.UseCases = cleanList(p.UseCases)
	p.Platforms = cleanList(p.Platforms)
	p.Pricing = cleanList(p.Pricing)
	p.WebsiteURL = strings.TrimSpace(p.WebsiteURL)
}

// NormalizeCategory returns the canonical spelling of an allowed category, or CategoryOther
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, allowed := range AllowedCategories {
		if strings.EqualFold(allowed, category) {
			return allowed
		}
	}
	return CategoryOther
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// drop the language tag line
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
