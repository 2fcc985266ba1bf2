// Package config loads the skillforge configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/curatehq/skillforge/core/providers"
)

// Config is the top-level configuration.
type Config struct {
	// Provider selects the model backend: anthropic, openai, or gemini.
	Provider string `yaml:"provider"`

	Anthropic providers.AnthropicConfig `yaml:"anthropic"`
	OpenAI    providers.OpenAIConfig    `yaml:"openai"`
	Gemini    providers.GeminiConfig    `yaml:"gemini"`

	Synthesis SynthesisConfig `yaml:"synthesis"`
	Budget    BudgetConfig    `yaml:"budget"`
	Library   LibraryConfig   `yaml:"library"`
	Storage   StorageConfig   `yaml:"storage"`
}

// SynthesisConfig tunes the orchestrator.
type SynthesisConfig struct {
	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// MaxOutputTokens per synthesis call.
	MaxOutputTokens int `yaml:"max_output_tokens"`
}

// BudgetConfig configures the advisory token budget.
type BudgetConfig struct {
	// Ceiling in tokens; zero disables budget reporting.
	Ceiling int `yaml:"ceiling"`
}

// LibraryConfig configures library context resolution.
type LibraryConfig struct {
	// CacheSize bounds the override cache.
	CacheSize int `yaml:"cache_size"`

	// Overrides maps library ids to guidance text, taking precedence over
	// the built-in defaults.
	Overrides map[string]string `yaml:"overrides"`
}

// StorageConfig configures the local skill store.
type StorageConfig struct {
	// Path to the sqlite database file. Empty defaults to
	// ~/.skillforge/skillforge.db.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Provider:  string(providers.ProviderTypeAnthropic),
		Anthropic: providers.DefaultAnthropicConfig(),
		OpenAI:    providers.DefaultOpenAIConfig(),
		Gemini:    providers.DefaultGeminiConfig(),
		Synthesis: SynthesisConfig{MaxOutputTokens: 8192},
		Budget:    BudgetConfig{Ceiling: 150000},
		Library:   LibraryConfig{CacheSize: 64},
	}
}

// Load reads a YAML configuration file over the defaults. A missing path
// returns the defaults; a present but unreadable or invalid file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints. Provider credentials are checked
// lazily when the provider is constructed, so a config without keys still
// loads for offline commands.
func (c *Config) Validate() error {
	switch providers.ProviderType(c.Provider) {
	case providers.ProviderTypeAnthropic, providers.ProviderTypeOpenAI, providers.ProviderTypeGemini:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.Synthesis.MaxOutputTokens < 0 {
		return fmt.Errorf("config: max_output_tokens must not be negative")
	}
	if c.Budget.Ceiling < 0 {
		return fmt.Errorf("config: budget ceiling must not be negative")
	}
	return nil
}
