package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted by FromEnv. A .env file loaded by the CLI
// (godotenv) feeds the same variables.
const (
	EnvProvider   = "PROMPTWALL_PROVIDER"
	EnvAPIKey     = "PROMPTWALL_API_KEY"
	EnvEndpoint   = "PROMPTWALL_ENDPOINT"
	EnvModel      = "PROMPTWALL_MODEL"
	EnvAPIVersion = "PROMPTWALL_API_VERSION"
	EnvTimeout    = "PROMPTWALL_TIMEOUT_SECS"
	EnvMaxRetries = "PROMPTWALL_MAX_RETRIES"
)

// Settings configures a verdict provider.
type Settings struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	Endpoint    string `yaml:"endpoint"`
	Model       string `yaml:"model"`
	APIVersion  string `yaml:"api_version"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EnvSettings reads settings from environment variables without validating
// them. The provider defaults to openai.
func EnvSettings() Settings {
	return Settings{
		Provider:    strings.TrimSpace(envOr(EnvProvider, "openai")),
		APIKey:      os.Getenv(EnvAPIKey),
		Endpoint:    strings.TrimSpace(os.Getenv(EnvEndpoint)),
		Model:       strings.TrimSpace(os.Getenv(EnvModel)),
		APIVersion:  strings.TrimSpace(os.Getenv(EnvAPIVersion)),
		TimeoutSecs: envInt(EnvTimeout, 30),
		MaxRetries:  envInt(EnvMaxRetries, 2),
	}
}

// FromEnv loads and validates settings from environment variables. An API key
// is required for every provider except noop.
func FromEnv() (Settings, error) {
	s := EnvSettings()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Merge overlays the non-zero fields of other onto s and returns the result.
func (s Settings) Merge(other Settings) Settings {
	if other.Provider != "" {
		s.Provider = other.Provider
	}
	if other.APIKey != "" {
		s.APIKey = other.APIKey
	}
	if other.Endpoint != "" {
		s.Endpoint = other.Endpoint
	}
	if other.Model != "" {
		s.Model = other.Model
	}
	if other.APIVersion != "" {
		s.APIVersion = other.APIVersion
	}
	if other.TimeoutSecs != 0 {
		s.TimeoutSecs = other.TimeoutSecs
	}
	if other.MaxRetries != 0 {
		s.MaxRetries = other.MaxRetries
	}
	return s
}

// Validate checks provider-specific requirements.
func (s Settings) Validate() error {
	provider := strings.ToLower(s.Provider)
	switch provider {
	case "noop":
		return nil
	case "openai", "azure", "anthropic", "gemini":
		if strings.TrimSpace(s.APIKey) == "" {
			return fmt.Errorf("environment variable %s must be set for provider %q", EnvAPIKey, s.Provider)
		}
		if provider == "azure" && s.Endpoint == "" {
			return fmt.Errorf("environment variable %s must be set for the azure provider", EnvEndpoint)
		}
		return nil
	default:
		return fmt.Errorf("unknown provider %q (expected openai, azure, anthropic, gemini, or noop)", s.Provider)
	}
}

// NewClient constructs the provider named in the settings.
func NewClient(s Settings) (Client, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(s.Provider) {
	case "noop":
		return NoopClient{}, nil
	case "openai", "azure":
		return newOpenAIClient(s)
	case "anthropic":
		return newAnthropicClient(s)
	case "gemini":
		return newGeminiClient(s)
	}
	return nil, fmt.Errorf("unknown provider %q", s.Provider)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
