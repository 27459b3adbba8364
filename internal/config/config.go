package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Encoding  EncodingConfig  `mapstructure:"encoding"`
	Search    SearchConfig    `mapstructure:"search"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EncodingConfig selects the response encoding: "json" or "toon".
type EncodingConfig struct {
	Format string `mapstructure:"format"`
}

// SearchConfig holds knobs shared by every provider.
type SearchConfig struct {
	Timeout      int    `mapstructure:"timeout"` // per upstream request, seconds
	LanguageHint string `mapstructure:"language_hint"`
	UserAgent    string `mapstructure:"user_agent"`
}

type ProvidersConfig struct {
	PyPI   PyPIConfig   `mapstructure:"pypi"`
	GitHub GitHubConfig `mapstructure:"github"`
	Google GoogleConfig `mapstructure:"google"`
}

type PyPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type GitHubConfig struct {
	BaseURL string `mapstructure:"base_url"` // override for tests / GHE
	Token   string `mapstructure:"token"`
}

type GoogleConfig struct {
	APIKey      string `mapstructure:"api_key"`
	CSEID       string `mapstructure:"cse_id"`
	SearchURL   string `mapstructure:"search_url"`   // HTML scrape endpoint
	APIEndpoint string `mapstructure:"api_endpoint"` // Custom Search API override
}

func Load(cfgFile string) *Config {
	// Load .env file if exists (ignore error if not found)
	godotenv.Load()
	godotenv.Load(".env.local")

	v := viper.New()

	setDefaults(v)

	// Configure environment variable handling
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DOCGATE")
	v.AutomaticEnv()

	// Credentials keep their conventional variable names
	v.BindEnv("providers.github.token", "GITHUB_TOKEN")
	v.BindEnv("providers.google.api_key", "GOOGLE_API_KEY")
	v.BindEnv("providers.google.cse_id", "GOOGLE_CSE_ID")
	v.BindEnv("encoding.format", "DOCGATE_ENCODING")

	// Read config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is ok, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic("Error reading config file: " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("Error unmarshaling config: " + err.Error())
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Encoding defaults
	v.SetDefault("encoding.format", "json")

	// Search defaults
	v.SetDefault("search.timeout", 15)
	v.SetDefault("search.language_hint", "python")
	v.SetDefault("search.user_agent",
		"docgate/0.1 Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/118.0 Safari/537.36")

	// Provider defaults
	v.SetDefault("providers.pypi.base_url", "https://pypi.org")
	v.SetDefault("providers.google.search_url", "https://www.google.com/search")
}
