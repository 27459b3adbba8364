package provider

import (
	"github.com/launchlog/docgate/internal/config"
)

// testConfig returns a config with short timeouts suitable for
// httptest-backed providers.
func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			Timeout:      5,
			LanguageHint: "python",
			UserAgent:    "docgate-test",
		},
	}
}
