package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/internal/provider"
)

func newTestHandler(t *testing.T, format string) *GatewayHandler {
	t.Helper()

	pypiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info": {"name": "requests", "version": "2.31.0", "summary": "Python HTTP for Humans."}}`)
	}))
	t.Cleanup(pypiSrv.Close)

	githubSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "items": [{
			"full_name": "psf/requests",
			"description": "A simple, yet elegant, HTTP library.",
			"stargazers_count": 52000,
			"html_url": "https://github.com/psf/requests",
			"default_branch": "main"
		}]}`)
	}))
	t.Cleanup(githubSrv.Close)

	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="g">
			<a href="https://requests.readthedocs.io/">Requests Docs</a>
			<span>Requests is an HTTP library.</span>
		</div></body></html>`)
	}))
	t.Cleanup(googleSrv.Close)

	cfg := &config.Config{
		Encoding: config.EncodingConfig{Format: format},
		Search: config.SearchConfig{
			Timeout:      5,
			LanguageHint: "python",
			UserAgent:    "docgate-test",
		},
		Providers: config.ProvidersConfig{
			PyPI:   config.PyPIConfig{BaseURL: pypiSrv.URL},
			GitHub: config.GitHubConfig{BaseURL: githubSrv.URL + "/"},
			Google: config.GoogleConfig{SearchURL: googleSrv.URL + "/search"},
		},
	}

	return NewGatewayHandler(cfg, provider.NewRegistry(cfg))
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, "json")

	rec := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestHandleListTools(t *testing.T) {
	h := newTestHandler(t, "json")

	rec := do(h, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var names []string
	for _, tool := range resp.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.Equal(t, []string{
		"search_library_docs",
		"pypi_metadata",
		"github_repo_search",
		"github_code_search",
		"google_search",
	}, names)
}

func TestHandleProviders(t *testing.T) {
	h := newTestHandler(t, "json")

	rec := do(h, http.MethodGet, "/v1/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []provider.Metadata `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Providers, 3)
	assert.Equal(t, "pypi", resp.Providers[0].Name)
}

func TestHandleToolCall(t *testing.T) {
	h := newTestHandler(t, "json")

	t.Run("pypi_metadata", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/v1/tools/pypi_metadata", `{"package": "requests"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Result string `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		var pkg map[string]any
		require.NoError(t, json.Unmarshal([]byte(resp.Result), &pkg))
		assert.Equal(t, "2.31.0", pkg["version"])
	})

	t.Run("search_library_docs", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/v1/tools/search_library_docs", `{"library": "requests", "limit": 2}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Result string `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(resp.Result), &doc))
		assert.Equal(t, "requests", doc["library"])
		assert.Contains(t, doc, "pypi")
		assert.Contains(t, doc, "github_repos")
		assert.Contains(t, doc, "web")
	})

	t.Run("validation error returns 400", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/v1/tools/github_repo_search", `{"query": "  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_error")
	})

	t.Run("unknown tool returns 404", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/v1/tools/npm_metadata", `{"package": "left-pad"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown_tool")
	})

	t.Run("GET is rejected", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/v1/tools/pypi_metadata", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/v1/tools/pypi_metadata", `{"package": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleToolCallTOON(t *testing.T) {
	h := newTestHandler(t, "toon")

	rec := do(h, http.MethodPost, "/v1/tools/github_repo_search", `{"query": "requests", "limit": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Result, "[1]{name,description,stars,url,default_branch}:")
	assert.Contains(t, resp.Result, "psf/requests")
}

func TestUnknownEndpoint(t *testing.T) {
	h := newTestHandler(t, "json")

	rec := do(h, http.MethodGet, "/v2/anything", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceIDPropagation(t *testing.T) {
	h := newTestHandler(t, "json")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "trace-abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-abc-123", rec.Header().Get("X-Trace-ID"))
}
