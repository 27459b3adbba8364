// Package aggregate fans a single library-search request out to every
// provider that supports it and merges the outcomes under the stable
// keys configured on the registry. Provider failures degrade to
// per-provider error annotations, never to a failed aggregate.
package aggregate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/launchlog/docgate/internal/encoding"
	"github.com/launchlog/docgate/internal/provider"
	"github.com/launchlog/docgate/pkg/logger"
)

// Aggregator merges library lookups across the registered providers.
type Aggregator struct {
	registry *provider.Registry
}

// New creates an aggregator over the given registry.
func New(registry *provider.Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// Locate validates the library name, invokes every library-search
// capable provider concurrently, and merges the settled outcomes into
// an ordered document: the "library" key first, then per provider (in
// registry order) exactly one of its data key or its error key.
//
// Only input validation fails the whole call, and it fails before any
// network activity.
func (a *Aggregator) Locate(ctx context.Context, library string, limit int) (*encoding.Document, error) {
	library, err := provider.ValidateQuery(library)
	if err != nil {
		return nil, err
	}
	limit = provider.ClampLimit(limit)

	var entries []provider.Entry
	for _, e := range a.registry.Entries() {
		if e.Provider.Metadata().SupportsLibrarySearch {
			entries = append(entries, e)
		}
	}

	start := time.Now()

	// Independent fan-out: one slot per provider, joined before the
	// merge, so total latency is bounded by the slowest provider.
	results := make([]provider.Result, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.Provider.SearchLibrary(ctx, library, limit)
		}()
	}
	wg.Wait()

	doc := encoding.NewDocument()
	doc.Set("library", library)

	failures := 0
	for i, e := range entries {
		res := results[i]
		if res.Success {
			doc.Set(e.DataKey, res.Data)
			continue
		}
		failures++
		doc.Set(e.ErrorKey, res.Error)
		logger.Warn("provider lookup failed",
			zap.String("provider", res.Provider),
			zap.String("library", library),
			zap.String("error", res.Error),
		)
	}

	logger.Info("library lookup aggregated",
		zap.String("library", library),
		zap.Int("providers", len(entries)),
		zap.Int("failures", failures),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return doc, nil
}

// Operation exposes the aggregate lookup as a callable operation.
func (a *Aggregator) Operation() provider.Operation {
	return provider.Operation{
		Name:        "search_library_docs",
		Description: "Find docs for a library using PyPI metadata, GitHub repos, and web search combined",
		Call: func(ctx context.Context, req provider.Request) (any, error) {
			library := req.Library
			if library == "" {
				library = req.Query
			}
			return a.Locate(ctx, library, req.Limit)
		},
	}
}
