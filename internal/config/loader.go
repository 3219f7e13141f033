package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/tinker/pkg/provider/llm/anyllm"
)

// Load reads the YAML configuration file at path, overlays environment
// variables, and returns a validated [Config].
//
// A missing file is not an error: the defaults plus environment variables are
// enough to run, matching environment-only setups. Any other read or parse
// failure is reported.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			FromEnv(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults, overlays
// environment variables, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if strings.TrimSpace(cfg.Agent.SystemPrompt) == "" {
		cfg.Agent.SystemPrompt = DefaultSystemPrompt
	}
	FromEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv overlays recognised environment variables onto cfg:
//
//	MODEL    — model identifier; a "provider/model" value sets both fields.
//	API_KEY  — provider credential.
//	API_BASE — alternate API endpoint.
//
// Unset variables leave cfg untouched.
func FromEnv(cfg *Config) {
	if v := os.Getenv("MODEL"); v != "" {
		if provider, model, ok := strings.Cut(v, "/"); ok && slices.Contains(anyllm.ProviderNames, provider) {
			cfg.Provider.Name = provider
			cfg.Provider.Model = model
		} else {
			cfg.Provider.Model = v
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("API_BASE"); v != "" {
		cfg.Provider.BaseURL = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Provider.Name == "" {
		errs = append(errs, fmt.Errorf("provider.name is required"))
	} else if !slices.Contains(anyllm.ProviderNames, strings.ToLower(cfg.Provider.Name)) {
		errs = append(errs, fmt.Errorf("provider.name %q is unknown; valid values: %s",
			cfg.Provider.Name, strings.Join(anyllm.ProviderNames, ", ")))
	}
	if cfg.Provider.Model == "" {
		errs = append(errs, fmt.Errorf("provider.model is required (set it in the config file or via the MODEL environment variable)"))
	}

	if cfg.Agent.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_tokens %d must be positive", cfg.Agent.MaxTokens))
	}
	if cfg.Agent.Temperature < 0 || cfg.Agent.Temperature > 2 {
		errs = append(errs, fmt.Errorf("agent.temperature %.2f is out of range [0.0, 2.0]", cfg.Agent.Temperature))
	}
	if cfg.Agent.MaxToolRounds <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_tool_rounds %d must be positive", cfg.Agent.MaxToolRounds))
	}

	return errors.Join(errs...)
}
