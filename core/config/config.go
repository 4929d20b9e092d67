package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel              OTelConfig
	Crisp             CrispConfig
	LLM               LLMConfig
	Tracker           TrackerConfig
	Notifier          NotifierConfig
	Env               string
	Port              string
	DefaultGitHubRepo string
	NodeID            int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type CrispConfig struct {
	APIURL       string
	AppURL       string // operator inbox, used for the conversation link in issues
	PluginID     string
	PluginSecret string
	Timeout      time.Duration
	SettingsTTL  time.Duration
}

type LLMConfig struct {
	Provider  string // "anthropic" or "openai"
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type TrackerConfig struct {
	Provider      string // "github" or "gitlab"
	GitHubToken   string
	GitHubBaseURL string // Optional: GitHub Enterprise API URL
	GitLabToken   string
	GitLabBaseURL string // Optional: self-hosted instance URL
	Timeout       time.Duration
}

type NotifierConfig struct {
	Timeout time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	TrackerGitHub = "github"
	TrackerGitLab = "gitlab"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the HTTP server
//   - .env.cli for the operator CLI
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("BUGRELAY_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:               getEnv("BUGRELAY_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DefaultGitHubRepo: getEnv("DEFAULT_GITHUB_REPO", ""),
		NodeID:            getEnvInt64("NODE_ID", 1),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "bugrelay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Crisp: CrispConfig{
			APIURL:       getEnv("CRISP_API_URL", "https://api.crisp.chat/v1"),
			AppURL:       getEnv("CRISP_APP_URL", "https://app.crisp.chat"),
			PluginID:     getEnv("CRISP_PLUGIN_ID", ""),
			PluginSecret: getEnv("CRISP_PLUGIN_SECRET", ""),
			Timeout:      getEnvDuration("CRISP_TIMEOUT", 10*time.Second),
			SettingsTTL:  getEnvDuration("SETTINGS_CACHE_TTL", time.Minute),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "anthropic"),
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", ""),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 1024),
			Timeout:   getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Tracker: TrackerConfig{
			Provider:      getEnv("TRACKER_PROVIDER", TrackerGitHub),
			GitHubToken:   getEnv("GITHUB_TOKEN", ""),
			GitHubBaseURL: getEnv("GITHUB_BASE_URL", ""),
			GitLabToken:   getEnv("GITLAB_TOKEN", ""),
			GitLabBaseURL: getEnv("GITLAB_BASE_URL", ""),
			Timeout:       getEnvDuration("TRACKER_TIMEOUT", 15*time.Second),
		},
		Notifier: NotifierConfig{
			Timeout: getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if !c.Crisp.Enabled() {
		return fmt.Errorf("CRISP_PLUGIN_ID and CRISP_PLUGIN_SECRET are required")
	}
	if !c.LLM.Enabled() {
		return fmt.Errorf("LLM_API_KEY is required and LLM_PROVIDER must be anthropic or openai")
	}
	switch c.Tracker.Provider {
	case TrackerGitHub:
		if c.Tracker.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN is required when TRACKER_PROVIDER=github")
		}
	case TrackerGitLab:
		if c.Tracker.GitLabToken == "" {
			return fmt.Errorf("GITLAB_TOKEN is required when TRACKER_PROVIDER=gitlab")
		}
	default:
		return fmt.Errorf("unsupported TRACKER_PROVIDER: %s", c.Tracker.Provider)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c CrispConfig) Enabled() bool {
	return c.PluginID != "" && c.PluginSecret != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
