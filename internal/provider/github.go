package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v69/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/internal/models"
	"github.com/launchlog/docgate/pkg/logger"
)

const githubName = "github"

// GitHubProvider searches repositories and code through the GitHub
// search API. A GITHUB_TOKEN raises the rate limit and unlocks code
// search; without one the provider degrades to unauthenticated calls.
type GitHubProvider struct {
	client        *github.Client
	languageHint  string
	timeout       time.Duration
	authenticated bool
}

// NewGitHubProvider creates a new GitHub provider
func NewGitHubProvider(cfg *config.Config) *GitHubProvider {
	var httpClient *http.Client
	token := cfg.Providers.GitHub.Token
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if base := cfg.Providers.GitHub.BaseURL; base != "" {
		if u, err := url.Parse(base); err == nil {
			if !strings.HasSuffix(u.Path, "/") {
				u.Path += "/"
			}
			client.BaseURL = u
		}
	}

	return &GitHubProvider{
		client:        client,
		languageHint:  cfg.Search.LanguageHint,
		timeout:       time.Duration(cfg.Search.Timeout) * time.Second,
		authenticated: token != "",
	}
}

// Metadata returns the static provider description
func (p *GitHubProvider) Metadata() Metadata {
	return Metadata{
		Name:                  githubName,
		Description:           "GitHub repository and code search",
		Callable:              true,
		OperationNames:        []string{"github_repo_search", "github_code_search"},
		SupportsLibrarySearch: true,
		RequiredEnv:           []string{},
		OptionalEnv:           []string{"GITHUB_TOKEN"},
	}
}

// SearchLibrary searches GitHub repositories for the library, biased
// toward the configured language ecosystem.
func (p *GitHubProvider) SearchLibrary(ctx context.Context, name string, limit int) Result {
	query := name
	if p.languageHint != "" {
		query = fmt.Sprintf("%s %s", name, p.languageHint)
	}

	repos, err := p.SearchRepos(ctx, query, p.languageHint, limit)
	if err != nil {
		return Fail(githubName, resultMessage(err))
	}
	return Ok(githubName, repos)
}

// SearchRepos queries the repository search API sorted by stars, and
// truncates to limit normalized records. Upstream ordering is kept.
func (p *GitHubProvider) SearchRepos(ctx context.Context, query, language string, limit int) ([]models.Repository, error) {
	limit = ClampLimit(limit)

	q := query
	if language != "" {
		q = fmt.Sprintf("%s language:%s", query, language)
	}

	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, _, err := p.client.Search.Repositories(ctx, q, opts)
	if err != nil {
		return nil, githubError(err)
	}

	repos := make([]models.Repository, 0, limit)
	for _, item := range res.Repositories {
		repos = append(repos, models.Repository{
			Name:          item.GetFullName(),
			Description:   item.GetDescription(),
			Stars:         item.GetStargazersCount(),
			URL:           item.GetHTMLURL(),
			DefaultBranch: item.GetDefaultBranch(),
		})
		if len(repos) >= limit {
			break
		}
	}

	logger.Debug("github repo search completed",
		zap.String("query", q),
		zap.Int("result_count", len(repos)),
	)

	return repos, nil
}

// SearchCode queries the code search API, optionally scoped to one
// repository with a repo: qualifier.
func (p *GitHubProvider) SearchCode(ctx context.Context, query, repo string, limit int) ([]models.CodeHit, error) {
	limit = ClampLimit(limit)

	q := query
	if repo != "" {
		q = fmt.Sprintf("%s repo:%s", query, repo)
	}

	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, _, err := p.client.Search.Code(ctx, q, opts)
	if err != nil {
		return nil, githubError(err)
	}

	hits := make([]models.CodeHit, 0, limit)
	for _, item := range res.CodeResults {
		hits = append(hits, models.CodeHit{
			Name:       item.GetName(),
			Path:       item.GetPath(),
			Repository: item.GetRepository().GetFullName(),
			URL:        item.GetHTMLURL(),
		})
		if len(hits) >= limit {
			break
		}
	}

	logger.Debug("github code search completed",
		zap.String("query", q),
		zap.Int("result_count", len(hits)),
	)

	return hits, nil
}

// githubError maps go-github failures onto the provider error shapes.
func githubError(err error) error {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return upstreamError("GitHub", http.StatusForbidden, "rate limit exceeded")
	}

	var ghe *github.ErrorResponse
	if errors.As(err, &ghe) && ghe.Response != nil {
		return upstreamError("GitHub", ghe.Response.StatusCode, ghe.Message)
	}

	return transportError("GitHub", err)
}

// Operations returns the callable operations this provider exposes
func (p *GitHubProvider) Operations() []Operation {
	return []Operation{
		{
			Name:        "github_repo_search",
			Description: "Search GitHub repositories relevant to a library or topic",
			Call: func(ctx context.Context, req Request) (any, error) {
				query, err := ValidateQuery(req.Query)
				if err != nil {
					return nil, err
				}
				language := req.Language
				if language == "" {
					language = p.languageHint
				}
				return p.SearchRepos(ctx, query, language, req.Limit)
			},
		},
		{
			Name:        "github_code_search",
			Description: "Search GitHub code, optionally scoped to a repository",
			Call: func(ctx context.Context, req Request) (any, error) {
				query, err := ValidateQuery(req.Query)
				if err != nil {
					return nil, err
				}
				return p.SearchCode(ctx, query, req.Repo, req.Limit)
			},
		},
	}
}
