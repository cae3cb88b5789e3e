package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// HuggingFaceSource lists trending models from the Hugging Face model hub
type HuggingFaceSource struct {
	client *resty.Client
	limit  int
}

func NewHuggingFaceSource(client *resty.Client, limit int) *HuggingFaceSource {
	return &HuggingFaceSource{client: client, limit: limit}
}

func (s *HuggingFaceSource) Name() string { return HuggingFace }

type hfModel struct {
	ID          string   `json:"id"`
	PipelineTag string   `json:"pipeline_tag"`
	Tags        []string `json:"tags"`
	Likes       int      `json:"likes"`
	Downloads   int      `json:"downloads"`
}

func (s *HuggingFaceSource) Fetch(ctx context.Context) ([]RawCandidate, error) {
	var models []hfModel
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"sort":      "likes",
			"direction": "-1",
			"limit":     strconv.Itoa(s.limit),
		}).
		SetResult(&models).
		Get("/api/models")
	if err := checkResponse(HuggingFace, resp, err); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(s.client.BaseURL, "/")
	candidates := make([]RawCandidate, 0, len(models))
	for _, m := range models {
		if m.ID == "" {
			continue
		}
		desc := fmt.Sprintf("%s model on Hugging Face with %d likes and %d downloads.", humanizeTag(m.PipelineTag), m.Likes, m.Downloads)

		tags := make([]string, 0, 4)
		if m.PipelineTag != "" {
			tags = append(tags, m.PipelineTag)
		}
		for _, t := range m.Tags {
			// hub tags include license:, region: and dataset: prefixes
			if len(tags) >= 4 || strings.Contains(t, ":") {
				continue
			}
			tags = append(tags, t)
		}

		candidates = append(candidates, RawCandidate{
			Name:        m.ID,
			Description: desc,
			URL:         baseURL + "/" + m.ID,
			Tags:        tags,
			PricingHint: "Free",
		})
	}
	return candidates, nil
}

func humanizeTag(tag string) string {
	if tag == "" {
		return "Machine learning"
	}
	s := strings.ReplaceAll(tag, "-", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
