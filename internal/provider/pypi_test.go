package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchlog/docgate/internal/models"
)

func newPyPITestServer(t *testing.T, handler http.HandlerFunc) *PyPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Providers.PyPI.BaseURL = srv.URL
	return NewPyPIProvider(cfg)
}

func TestPyPIFetchMetadata(t *testing.T) {
	p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pypi/requests/json", r.URL.Path)
		fmt.Fprint(w, `{
			"info": {
				"name": "requests",
				"version": "2.31.0",
				"summary": "Python HTTP for Humans.",
				"home_page": "https://requests.readthedocs.io",
				"project_urls": {"Documentation": "https://requests.readthedocs.io"}
			}
		}`)
	})

	info, err := p.FetchMetadata(context.Background(), "requests")
	require.NoError(t, err)

	assert.Equal(t, "requests", info.Name)
	assert.Equal(t, "2.31.0", info.Version)
	assert.Equal(t, "Python HTTP for Humans.", info.Summary)
	assert.Equal(t, "https://requests.readthedocs.io", info.HomePage)
	assert.Equal(t, "https://requests.readthedocs.io", info.DocsURL)
}

func TestPyPIFetchMetadataDefaults(t *testing.T) {
	// Absent upstream fields normalize to zero values, not omissions.
	p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info": {"name": "leftpad"}}`)
	})

	info, err := p.FetchMetadata(context.Background(), "leftpad")
	require.NoError(t, err)

	assert.Equal(t, "leftpad", info.Name)
	assert.Equal(t, "", info.Version)
	assert.Equal(t, "", info.Summary)
	assert.Equal(t, "", info.DocsURL)
	assert.NotNil(t, info.ProjectURLs)
	assert.Empty(t, info.ProjectURLs)
}

func TestPyPIFetchMetadataNotFound(t *testing.T) {
	p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	_, err := p.FetchMetadata(context.Background(), "definitely-not-a-package")
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusNotFound, perr.Status)
	assert.Contains(t, perr.Message, "PyPI returned 404")
}

func TestPyPIFetchMetadataBadJSON(t *testing.T) {
	p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	})

	_, err := p.FetchMetadata(context.Background(), "requests")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing failed")
}

func TestPyPISearchLibrary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"info": {"name": "flask", "version": "3.0.0"}}`)
		})

		res := p.SearchLibrary(context.Background(), "flask", 5)
		require.True(t, res.Success)
		assert.Equal(t, pypiName, res.Provider)
		assert.Empty(t, res.Error)

		info, ok := res.Data.(*models.PackageInfo)
		require.True(t, ok)
		assert.Equal(t, "3.0.0", info.Version)
	})

	t.Run("upstream failure becomes error result", func(t *testing.T) {
		p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		res := p.SearchLibrary(context.Background(), "flask", 5)
		require.False(t, res.Success)
		assert.Nil(t, res.Data)
		assert.Contains(t, res.Error, "PyPI returned 500")
	})

	t.Run("unreachable host becomes error result", func(t *testing.T) {
		cfg := testConfig()
		cfg.Search.Timeout = 1
		cfg.Providers.PyPI.BaseURL = "http://127.0.0.1:1"
		p := NewPyPIProvider(cfg)

		res := p.SearchLibrary(context.Background(), "flask", 5)
		require.False(t, res.Success)
		assert.NotEmpty(t, res.Error)
	})
}

func TestPyPIMetadataOperation(t *testing.T) {
	p := newPyPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info": {"name": "requests", "version": "2.31.0"}}`)
	})

	ops := p.Operations()
	require.Len(t, ops, 1)
	require.Equal(t, "pypi_metadata", ops[0].Name)

	t.Run("fetches metadata", func(t *testing.T) {
		data, err := ops[0].Call(context.Background(), Request{Package: "requests"})
		require.NoError(t, err)

		info, ok := data.(*models.PackageInfo)
		require.True(t, ok)
		assert.Equal(t, "2.31.0", info.Version)
	})

	t.Run("rejects empty package", func(t *testing.T) {
		_, err := ops[0].Call(context.Background(), Request{Package: "  "})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}
