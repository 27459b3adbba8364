package provider

import (
	"go.uber.org/zap"

	"github.com/launchlog/docgate/internal/config"
	"github.com/launchlog/docgate/pkg/logger"
)

// Entry binds a provider to the stable keys its aggregate output lives
// under. The key scheme is explicit configuration, never inferred.
type Entry struct {
	Provider Provider
	DataKey  string
	ErrorKey string
}

// Registry owns the fixed set of provider instances. It is built once
// at process start and read-only afterwards: lookups always return the
// same instances, so per-provider state (HTTP clients, auth headers)
// persists across calls.
type Registry struct {
	entries []Entry
	byName  map[string]Provider
	ops     []Operation
	opIndex map[string]Operation
}

// NewRegistry constructs the registry with the built-in providers in
// their aggregate merge order.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		byName:  make(map[string]Provider),
		opIndex: make(map[string]Operation),
	}

	r.register(NewPyPIProvider(cfg), "pypi", "pypi_error")
	r.register(NewGitHubProvider(cfg), "github_repos", "github_error")
	r.register(NewGoogleProvider(cfg), "web", "google_error")

	logger.Info("provider registry initialized",
		zap.Int("provider_count", len(r.entries)),
		zap.Int("operation_count", len(r.ops)),
	)

	return r
}

func (r *Registry) register(p Provider, dataKey, errorKey string) {
	meta := p.Metadata()
	r.entries = append(r.entries, Entry{Provider: p, DataKey: dataKey, ErrorKey: errorKey})
	r.byName[meta.Name] = p

	for _, op := range p.Operations() {
		r.ops = append(r.ops, op)
		r.opIndex[op.Name] = op
	}

	logger.Info("provider registered",
		zap.String("name", meta.Name),
		zap.Strings("operations", meta.OperationNames),
		zap.Bool("library_search", meta.SupportsLibrarySearch),
	)
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Entries returns the providers with their key mapping, in registration order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Operation returns a callable operation by name.
func (r *Registry) Operation(name string) (Operation, bool) {
	op, ok := r.opIndex[name]
	return op, ok
}

// Operations returns every callable operation, in registration order.
func (r *Registry) Operations() []Operation {
	return r.ops
}

// Metadata returns the metadata of every provider, in registration order.
func (r *Registry) Metadata() []Metadata {
	metas := make([]Metadata, 0, len(r.entries))
	for _, e := range r.entries {
		metas = append(metas, e.Provider.Metadata())
	}
	return metas
}
