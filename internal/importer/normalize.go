package importer

import (
	"strings"
	"unicode/utf8"

	"github.com/bynikesh/findmyai-sub001/internal/enrichment"
	"github.com/bynikesh/findmyai-sub001/internal/importer/sources"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/util"
)

const shortDescriptionLen = 200

// Candidate is a source record in catalog shape, ready for dedup and persistence
type Candidate struct {
	Source           string
	ExternalID       string
	Name             string
	Description      string
	ShortDescription string
	WebsiteURL       string
	LogoURL          string
	CoverURL         string
	Category         string
	Tags             []string
	Pricing          []string
	PricingDetails   string
	Features         []string
	Platforms        []string
	Pros             []string
	Cons             []string
	UseCases         []string
	IdealFor         string
	HasFreeTrial     bool
	IsOpenSource     bool
	HasAPI           bool
}

// ExternalID derives the dedup key for a source record from its name
func ExternalID(name string) string {
	return util.Slugify(name)
}

// Normalize maps a raw record into a Candidate, filling defaults for omitted fields
func Normalize(source string, raw sources.RawCandidate) Candidate {
	name := strings.TrimSpace(raw.Name)
	desc := strings.TrimSpace(raw.Description)

	c := Candidate{
		Source:           source,
		ExternalID:       ExternalID(name),
		Name:             name,
		Description:      desc,
		ShortDescription: truncate(desc, shortDescriptionLen),
		WebsiteURL:       strings.TrimSpace(raw.URL),
		LogoURL:          strings.TrimSpace(raw.LogoURL),
		CoverURL:         models.PlaceholderCover,
		Category:         enrichment.CategoryOther,
		Tags:             cleanTags(raw.Tags),
		Pricing:          []string{normalizePricing(raw.PricingHint)},
	}
	if c.LogoURL == "" {
		c.LogoURL = models.PlaceholderLogo
	}
	c.IsOpenSource = c.Pricing[0] == models.PricingOpenSource
	return c
}

// ApplyProfile overlays an enrichment profile onto c. Empty profile fields keep
// the normalized value.
func (c Candidate) ApplyProfile(p *enrichment.Profile) Candidate {
	c.Description = p.Description
	c.ShortDescription = p.ShortDescription
	c.Category = p.Category
	if len(p.Tags) > 0 {
		c.Tags = p.Tags
	}
	if len(p.Pricing) > 0 {
		c.Pricing = p.Pricing
	}
	if p.WebsiteURL != "" {
		c.WebsiteURL = p.WebsiteURL
	}
	c.PricingDetails = p.PricingDetails
	c.Features = p.Features
	c.Platforms = p.Platforms
	c.Pros = p.Pros
	c.Cons = p.Cons
	c.UseCases = p.UseCases
	c.IdealFor = p.IdealFor
	c.HasFreeTrial = p.HasFreeTrial
	c.IsOpenSource = p.IsOpenSource
	c.HasAPI = p.HasAPI
	return c
}

// NeedsLogo reports whether the logo is missing or still the placeholder
func (c Candidate) NeedsLogo() bool {
	return c.LogoURL == "" || c.LogoURL == models.PlaceholderLogo
}

// Tool builds the unverified catalog row for c
func (c Candidate) Tool() *models.Tool {
	source, externalID := c.Source, c.ExternalID
	return &models.Tool{
		Name:             c.Name,
		Slug:             util.SlugWithSuffix(c.Name),
		Description:      c.Description,
		ShortDescription: c.ShortDescription,
		WebsiteURL:       c.WebsiteURL,
		LogoURL:          c.LogoURL,
		CoverURL:         c.CoverURL,
		Pricing:          c.Pricing,
		PricingDetails:   c.PricingDetails,
		Features:         nonNil(c.Features),
		Platforms:        nonNil(c.Platforms),
		Pros:             nonNil(c.Pros),
		Cons:             nonNil(c.Cons),
		UseCases:         nonNil(c.UseCases),
		IdealFor:         c.IdealFor,
		HasFreeTrial:     c.HasFreeTrial,
		IsOpenSource:     c.IsOpenSource,
		HasAPI:           c.HasAPI,
		Verified:         false,
		Source:           &source,
		ExternalID:       &externalID,
	}
}

func normalizePricing(hint string) string {
	hint = strings.TrimSpace(hint)
	for _, p := range models.PricingOptions {
		if strings.EqualFold(p, hint) {
			return p
		}
	}
	return models.PricingFree
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
