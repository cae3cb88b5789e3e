package sources

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
)

// OpenRouterSource lists models available through the OpenRouter gateway
type OpenRouterSource struct {
	client *resty.Client
	limit  int
}

func NewOpenRouterSource(client *resty.Client, limit int) *OpenRouterSource {
	return &OpenRouterSource{client: client, limit: limit}
}

func (s *OpenRouterSource) Name() string { return OpenRouter }

type openRouterModels struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Pricing     struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
		Architecture struct {
			Modality string `json:"modality"`
		} `json:"architecture"`
	} `json:"data"`
}

func (s *OpenRouterSource) Fetch(ctx context.Context) ([]RawCandidate, error) {
	var body openRouterModels
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/api/v1/models")
	if err := checkResponse(OpenRouter, resp, err); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(s.client.BaseURL, "/")
	candidates := make([]RawCandidate, 0, len(body.Data))
	for _, m := range body.Data {
		if len(candidates) >= s.limit {
			break
		}
		name := m.Name
		if name == "" {
			name = m.ID
		}
		if name == "" {
			continue
		}

		pricing := "Paid"
		if isZeroPrice(m.Pricing.Prompt) && isZeroPrice(m.Pricing.Completion) {
			pricing = "Free"
		}

		var tags []string
		if provider, _, ok := strings.Cut(m.ID, "/"); ok {
			tags = append(tags, provider)
		}
		if m.Architecture.Modality != "" {
			tags = append(tags, m.Architecture.Modality)
		}

		candidates = append(candidates, RawCandidate{
			Name:        name,
			Description: m.Description,
			URL:         baseURL + "/" + m.ID,
			Tags:        tags,
			PricingHint: pricing,
		})
	}
	return candidates, nil
}

func isZeroPrice(p string) bool {
	p = strings.TrimSpace(p)
	return p == "" || strings.Trim(p, "0.") == ""
}
