package provider

import (
	"context"
	"strings"
)

const (
	// DefaultResultLimit is used when a caller does not supply a limit.
	DefaultResultLimit = 5
	// MaxResultLimit caps the number of records any operation returns.
	MaxResultLimit = 100
	// MaxQueryLength bounds query and library name inputs.
	MaxQueryLength = 200
)

// Metadata is the static, immutable description of a provider.
type Metadata struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	Callable              bool     `json:"callable"`
	OperationNames        []string `json:"operations"`
	SupportsLibrarySearch bool     `json:"supports_library_search"`
	RequiredEnv           []string `json:"required_env"`
	OptionalEnv           []string `json:"optional_env"`
}

// Result is the outcome of one provider invocation. Exactly one of
// Data and Error is set: Success implies Error == "", and a failed
// call carries no data.
type Result struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Ok builds a successful result.
func Ok(name string, data any) Result {
	return Result{Success: true, Provider: name, Data: data}
}

// Fail builds a failed result.
func Fail(name, message string) Result {
	return Result{Success: false, Provider: name, Error: message}
}

// Request carries the primitive arguments of a callable operation.
// Every operation reads the subset of fields it needs.
type Request struct {
	Library  string `json:"library,omitempty"`
	Query    string `json:"query,omitempty"`
	Package  string `json:"package,omitempty"`
	Repo     string `json:"repo,omitempty"`
	Language string `json:"language,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	UseAPI   bool   `json:"use_api,omitempty"`
}

// Operation is a named callable exposed to the calling agent.
type Operation struct {
	Name        string
	Description string
	Call        func(ctx context.Context, req Request) (any, error)
}

// Provider is the capability contract every upstream integration satisfies.
// SearchLibrary never returns a Go error: upstream failures of any kind are
// folded into the Result so the aggregator can degrade per provider.
type Provider interface {
	Metadata() Metadata
	SearchLibrary(ctx context.Context, name string, limit int) Result
	Operations() []Operation
}

// ClampLimit bounds a result limit to [1, MaxResultLimit]. Zero and
// negative values fall back to the default.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultResultLimit
	}
	if limit > MaxResultLimit {
		return MaxResultLimit
	}
	return limit
}

// ValidateQuery trims a query or library name and rejects empty or
// oversized input before any network call is made.
func ValidateQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuery
	}
	if len(q) > MaxQueryLength {
		return "", ErrQueryTooLong
	}
	return q, nil
}
