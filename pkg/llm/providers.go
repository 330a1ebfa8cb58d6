package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderProfile is one entry of the providers config file. The API key is
// never stored in the file; it always comes from the environment.
type ProviderProfile struct {
	Name        string `yaml:"name"`
	Model       string `yaml:"model"`
	Endpoint    string `yaml:"endpoint"`
	APIVersion  string `yaml:"api_version"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// ProvidersConfig lists the provider profiles probed by the health command.
type ProvidersConfig struct {
	Providers []ProviderProfile `yaml:"providers"`
}

// LoadProvidersConfig reads a YAML providers file.
func LoadProvidersConfig(path string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers config: %w", err)
	}
	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing providers config %s: %w", path, err)
	}
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("providers config %s lists no providers", path)
	}
	return &cfg, nil
}

// Settings converts a profile into client settings. The API key always comes
// from the environment; an unset timeout or endpoint falls back to its
// environment variable. Model, API version and retries come from the profile
// only.
func (p ProviderProfile) Settings() Settings {
	s := Settings{
		Provider:    p.Name,
		APIKey:      os.Getenv(EnvAPIKey),
		Endpoint:    p.Endpoint,
		Model:       p.Model,
		APIVersion:  p.APIVersion,
		TimeoutSecs: p.TimeoutSecs,
		MaxRetries:  p.MaxRetries,
	}
	if s.TimeoutSecs == 0 {
		s.TimeoutSecs = envInt(EnvTimeout, 30)
	}
	if s.Endpoint == "" {
		s.Endpoint = strings.TrimSpace(os.Getenv(EnvEndpoint))
	}
	return s
}

// Probe verifies that a profile can be turned into a working client. It does
// not issue a remote request; misconfiguration (unknown provider, missing
// key or endpoint) is the dominant failure mode health is meant to catch.
func (p ProviderProfile) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := NewClient(p.Settings())
	return err
}
