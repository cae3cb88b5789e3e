package enrichment

import (
	"fmt"
	"strings"

	"github.com/bynikesh/findmyai-sub001/internal/models"
)

const systemPrompt = "You write accurate, neutral catalog entries for AI tools. Reply with a single JSON object and nothing else."

// Input is what is known about a tool before enrichment
type Input struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url"`
}

// BuildPrompt asks for a Profile-shaped JSON object describing in
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Create a directory profile for the following AI tool.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	if in.Description != "" {
		fmt.Fprintf(&b, "Known description: %s\n", in.Description)
	}
	if in.WebsiteURL != "" {
		fmt.Fprintf(&b, "Website: %s\n", in.WebsiteURL)
	}

	b.WriteString(`
Return JSON with exactly these fields:
{
  "description": "2-4 paragraph overview",
  "short_description": "one sentence, at most 300 characters",
  "category": "one of the allowed categories",
  "tags": ["up to 10 short keywords"],
  "features": ["key features"],
  "pros": ["strengths"],
  "cons": ["limitations"],
  "ideal_for": "who benefits most",
  "use_cases": ["concrete use cases"],
  "pricing": ["one or more allowed pricing values"],
  "pricing_details": "plans and prices if known",
  "has_free_trial": false,
  "is_open_source": false,
  "has_api": false,
  "website_url": "official website",
  "platforms": ["Web", "iOS", "Android", "Windows", "macOS", "Linux", "API"]
}
`)
	fmt.Fprintf(&b, "\nAllowed categories: %s\n", strings.Join(AllowedCategories, ", "))
	fmt.Fprintf(&b, "Allowed pricing values: %s\n", strings.Join(models.PricingOptions, ", "))
	b.WriteString("If unsure about a fact, leave the field empty rather than guessing.\n")

	return b.String()
}
