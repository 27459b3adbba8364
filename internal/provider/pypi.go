package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/internal/models"
	"github.com/launchlog/docgate/pkg/logger"
)

const pypiName = "pypi"

// PyPIProvider fetches package metadata from the PyPI JSON API.
type PyPIProvider struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

// NewPyPIProvider creates a new PyPI provider
func NewPyPIProvider(cfg *config.Config) *PyPIProvider {
	baseURL := cfg.Providers.PyPI.BaseURL
	if baseURL == "" {
		baseURL = "https://pypi.org"
	}

	timeout := time.Duration(cfg.Search.Timeout) * time.Second

	return &PyPIProvider{
		baseURL:   baseURL,
		userAgent: cfg.Search.UserAgent,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
	}
}

// Metadata returns the static provider description
func (p *PyPIProvider) Metadata() Metadata {
	return Metadata{
		Name:                  pypiName,
		Description:           "PyPI package metadata",
		Callable:              true,
		OperationNames:        []string{"pypi_metadata"},
		SupportsLibrarySearch: true,
		RequiredEnv:           []string{},
		OptionalEnv:           []string{},
	}
}

// SearchLibrary looks up the library on PyPI. The limit is ignored:
// a package lookup yields a single record.
func (p *PyPIProvider) SearchLibrary(ctx context.Context, name string, limit int) Result {
	info, err := p.FetchMetadata(ctx, name)
	if err != nil {
		return Fail(pypiName, resultMessage(err))
	}
	return Ok(pypiName, info)
}

// pypiResponse is the upstream response envelope
type pypiResponse struct {
	Info pypiInfo `json:"info"`
}

type pypiInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Summary     string            `json:"summary"`
	HomePage    string            `json:"home_page"`
	ProjectURLs map[string]string `json:"project_urls"`
}

// FetchMetadata pulls package metadata from the PyPI JSON API and
// normalizes it into a PackageInfo record.
func (p *PyPIProvider) FetchMetadata(ctx context.Context, pkg string) (*models.PackageInfo, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", p.baseURL, url.PathEscape(pkg))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError("PyPI", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError("PyPI", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("PyPI", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("PyPI", resp.StatusCode, string(body))
	}

	var payload pypiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, parseError("PyPI", err)
	}

	info := payload.Info
	urls := info.ProjectURLs
	if urls == nil {
		urls = map[string]string{}
	}

	result := &models.PackageInfo{
		Name:        info.Name,
		Version:     info.Version,
		Summary:     info.Summary,
		HomePage:    info.HomePage,
		DocsURL:     urls["Documentation"],
		ProjectURLs: urls,
	}

	logger.Debug("pypi metadata fetched",
		zap.String("package", pkg),
		zap.String("version", result.Version),
	)

	return result, nil
}

// Operations returns the callable operations this provider exposes
func (p *PyPIProvider) Operations() []Operation {
	return []Operation{
		{
			Name:        "pypi_metadata",
			Description: "Retrieve PyPI package metadata including documentation URLs when available",
			Call: func(ctx context.Context, req Request) (any, error) {
				pkg, err := ValidateQuery(req.Package)
				if err != nil {
					return nil, err
				}
				return p.FetchMetadata(ctx, pkg)
			},
		},
	}
}
