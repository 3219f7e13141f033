// Package config provides the configuration schema and loader for tinker.
//
// Configuration is read once at startup from an optional YAML settings file,
// then overlaid with environment variables (MODEL, API_KEY, API_BASE). Core
// logic never performs ambient lookups; the resulting [Config] is constructed
// in main and passed down explicitly.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for tinker.
// It is typically loaded from a YAML file using [Load].
type Config struct {
	// LogLevel controls verbosity of diagnostic logging on stderr.
	LogLevel LogLevel `yaml:"log_level"`

	Provider  ProviderConfig  `yaml:"provider"`
	Agent     AgentConfig     `yaml:"agent"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig selects and authenticates the LLM backend.
type ProviderConfig struct {
	// Name selects the LLM provider (e.g., "openai", "anthropic", "ollama").
	Name string `yaml:"name"`

	// Model is the model identifier within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// APIKey is the authentication key for the provider's API. When empty, the
	// backend falls back to the provider's conventional environment variable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`
}

// AgentConfig holds conversation-loop settings.
type AgentConfig struct {
	// SystemPrompt seeds the conversation at index 0. When empty, the built-in
	// coding-assistant prompt is used.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxTokens caps completion tokens per model call.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature in [0.0, 2.0].
	Temperature float64 `yaml:"temperature"`

	// MaxToolRounds bounds the number of model/tool round trips within one
	// user turn. Exceeding it aborts the turn, not the process.
	MaxToolRounds int `yaml:"max_tool_rounds"`
}

// TelemetryConfig configures the optional metrics endpoint.
type TelemetryConfig struct {
	// ListenAddr is the TCP address for the Prometheus /metrics listener
	// (e.g., "127.0.0.1:9090"). Empty disables the listener entirely.
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultSystemPrompt is the built-in conversation seed.
const DefaultSystemPrompt = `You are a coding assistant whose goal it is to help us solve coding tasks.
You have access to tools for reading files, listing directories, and editing files.
Use these tools when needed to help with coding tasks.`

// Default returns a Config populated with the shipped defaults. A model must
// still be supplied via the settings file or the MODEL environment variable.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Provider: ProviderConfig{
			Name: "openai",
		},
		Agent: AgentConfig{
			SystemPrompt:  DefaultSystemPrompt,
			MaxTokens:     2000,
			Temperature:   0.1,
			MaxToolRounds: 25,
		},
	}
}
