package models

// PackageInfo is the normalized record for a package registry lookup.
// Fields absent upstream are kept as zero values so downstream consumers
// can rely on key presence.
type PackageInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Summary     string            `json:"summary"`
	HomePage    string            `json:"home_page"`
	DocsURL     string            `json:"docs_url"`
	ProjectURLs map[string]string `json:"project_urls"`
}

// Repository is the normalized record for a repository search hit.
type Repository struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Stars         int    `json:"stars"`
	URL           string `json:"url"`
	DefaultBranch string `json:"default_branch"`
}

// CodeHit is the normalized record for a code search hit.
type CodeHit struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
}

// SearchResult is a single web search result card.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
