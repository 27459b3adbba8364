package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/internal/models"
	"github.com/launchlog/docgate/pkg/logger"
)

const googleName = "google"

// customSearchAPIMax is the page size ceiling of the Custom Search API.
const customSearchAPIMax = 10

// GoogleProvider runs web searches through the Custom Search JSON API
// when GOOGLE_API_KEY and GOOGLE_CSE_ID are configured, and falls back
// to scraping result cards from the HTML search page otherwise. The
// scrape path is best-effort: it degrades to an error result, never a
// crash, if the page structure changes.
type GoogleProvider struct {
	cseID        string
	searchURL    string
	userAgent    string
	languageHint string
	timeout      time.Duration
	client       *http.Client
	svc          *customsearch.Service
}

// NewGoogleProvider creates a new Google provider
func NewGoogleProvider(cfg *config.Config) *GoogleProvider {
	gc := cfg.Providers.Google

	searchURL := gc.SearchURL
	if searchURL == "" {
		searchURL = "https://www.google.com/search"
	}

	timeout := time.Duration(cfg.Search.Timeout) * time.Second

	p := &GoogleProvider{
		cseID:        gc.CSEID,
		searchURL:    searchURL,
		userAgent:    cfg.Search.UserAgent,
		languageHint: cfg.Search.LanguageHint,
		timeout:      timeout,
		client:       &http.Client{Timeout: timeout},
	}

	if gc.APIKey != "" && gc.CSEID != "" {
		opts := []option.ClientOption{option.WithAPIKey(gc.APIKey)}
		if gc.APIEndpoint != "" {
			opts = append(opts, option.WithEndpoint(gc.APIEndpoint))
		}
		svc, err := customsearch.NewService(context.Background(), opts...)
		if err != nil {
			logger.Warn("custom search service unavailable, scrape only", zap.Error(err))
		} else {
			p.svc = svc
		}
	}

	return p
}

// Metadata returns the static provider description
func (p *GoogleProvider) Metadata() Metadata {
	return Metadata{
		Name:                  googleName,
		Description:           "Google web search (Custom Search API with HTML scrape fallback)",
		Callable:              true,
		OperationNames:        []string{"google_search"},
		SupportsLibrarySearch: true,
		RequiredEnv:           []string{},
		OptionalEnv:           []string{"GOOGLE_API_KEY", "GOOGLE_CSE_ID"},
	}
}

// SearchLibrary searches the web for the library's documentation. The
// API path is used when credentials are configured, the scrape path
// otherwise.
func (p *GoogleProvider) SearchLibrary(ctx context.Context, name string, limit int) Result {
	query := fmt.Sprintf("%s documentation", name)
	if p.languageHint != "" {
		query = fmt.Sprintf("%s %s documentation", name, p.languageHint)
	}

	var (
		hits []models.SearchResult
		err  error
	)
	if p.svc != nil {
		hits, err = p.SearchAPI(ctx, query, limit)
	} else {
		hits, err = p.Scrape(ctx, query, limit)
	}
	if err != nil {
		return Fail(googleName, resultMessage(err))
	}
	return Ok(googleName, hits)
}

// SearchAPI queries the Custom Search JSON API.
func (p *GoogleProvider) SearchAPI(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if p.svc == nil {
		return nil, &Error{
			Provider: googleName,
			Message:  "Google API key or CSE ID missing",
			Err:      ErrMissingCredentials,
		}
	}

	limit = ClampLimit(limit)
	pageSize := limit
	if pageSize > customSearchAPIMax {
		pageSize = customSearchAPIMax
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.svc.Cse.List().
		Q(query).
		Cx(p.cseID).
		Num(int64(pageSize)).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, upstreamError("Google", gerr.Code, gerr.Message)
		}
		return nil, transportError("Google", err)
	}

	hits := make([]models.SearchResult, 0, pageSize)
	for _, item := range resp.Items {
		hits = append(hits, models.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
		if len(hits) >= limit {
			break
		}
	}

	logger.Debug("google api search completed",
		zap.String("query", query),
		zap.Int("result_count", len(hits)),
	)

	return hits, nil
}

// Scrape fetches the HTML search page and extracts result cards.
func (p *GoogleProvider) Scrape(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	limit = ClampLimit(limit)

	endpoint := fmt.Sprintf("%s?q=%s", p.searchURL, url.QueryEscape(query))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError("Google", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("Google", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, upstreamError("Google", resp.StatusCode, string(body))
	}

	hits, err := parseResultCards(resp.Body, limit)
	if err != nil {
		return nil, parseError("Google", err)
	}

	logger.Debug("google scrape completed",
		zap.String("query", query),
		zap.Int("result_count", len(hits)),
	)

	return hits, nil
}

// Operations returns the callable operations this provider exposes
func (p *GoogleProvider) Operations() []Operation {
	return []Operation{
		{
			Name:        "google_search",
			Description: "Run a Google search and return result cards; use_api selects the Custom Search API with scrape fallback",
			Call: func(ctx context.Context, req Request) (any, error) {
				query, err := ValidateQuery(req.Query)
				if err != nil {
					return nil, err
				}

				var (
					hits   []models.SearchResult
					apiErr error
				)
				if req.UseAPI {
					hits, apiErr = p.SearchAPI(ctx, query, req.Limit)
				}

				if len(hits) == 0 {
					hits, err = p.Scrape(ctx, query, req.Limit)
					if err != nil {
						return nil, err
					}
					if apiErr != nil {
						// Surface the API failure in a sentinel result card
						hits = append(hits, models.SearchResult{
							Title:   "google-api-error",
							Snippet: resultMessage(apiErr),
						})
					}
				}

				return hits, nil
			},
		},
	}
}
