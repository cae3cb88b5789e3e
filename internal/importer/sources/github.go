package sources

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const githubTopicQuery = "topic:ai-tools topic:artificial-intelligence"

// GitHubSource searches repositories tagged with AI topics
type GitHubSource struct {
	client *resty.Client
	token  string
	limit  int
}

func NewGitHubSource(client *resty.Client, token string, limit int) *GitHubSource {
	if limit > 100 {
		limit = 100
	}
	return &GitHubSource{client: client, token: token, limit: limit}
}

func (s *GitHubSource) Name() string { return GitHub }

type githubSearch struct {
	Items []struct {
		Name        string   `json:"name"`
		FullName    string   `json:"full_name"`
		Description string   `json:"description"`
		HTMLURL     string   `json:"html_url"`
		Homepage    string   `json:"homepage"`
		Topics      []string `json:"topics"`
		Owner       struct {
			AvatarURL string `json:"avatar_url"`
		} `json:"owner"`
	} `json:"items"`
}

func (s *GitHubSource) Fetch(ctx context.Context) ([]RawCandidate, error) {
	req := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json").
		SetQueryParams(map[string]string{
			"q":        githubTopicQuery,
			"sort":     "stars",
			"order":    "desc",
			"per_page": strconv.Itoa(s.limit),
		})
	if s.token != "" {
		req.SetAuthToken(s.token)
	}

	var body githubSearch
	resp, err := req.SetResult(&body).Get("/search/repositories")
	if err := checkResponse(GitHub, resp, err); err != nil {
		return nil, err
	}

	candidates := make([]RawCandidate, 0, len(body.Items))
	for _, repo := range body.Items {
		if repo.Name == "" {
			continue
		}
		url := repo.Homepage
		if url == "" {
			url = repo.HTMLURL
		}
		candidates = append(candidates, RawCandidate{
			Name:        repo.Name,
			Description: repo.Description,
			URL:         url,
			LogoURL:     repo.Owner.AvatarURL,
			Tags:        repo.Topics,
			PricingHint: "Open Source",
		})
	}
	return candidates, nil
}
