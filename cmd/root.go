package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/config"
	"github.com/curatehq/skillforge/core/library"
	"github.com/curatehq/skillforge/core/prompt"
	"github.com/curatehq/skillforge/core/providers"
	"github.com/curatehq/skillforge/core/storage"
	"github.com/curatehq/skillforge/core/synthesis"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Skillforge - skill document synthesis from raw sources",
	Long:  `Skillforge synthesizes and maintains curated skill documents from tickets, chats, transcripts, and reference material using a language model backend.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file")
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func openStore(cfg config.Config) (*storage.Store, error) {
	return storage.NewStore(cfg.Storage.Path)
}

func newProvider(ctx context.Context, cfg config.Config) (providers.Provider, error) {
	switch providers.ProviderType(cfg.Provider) {
	case providers.ProviderTypeAnthropic:
		return providers.NewAnthropicProvider(cfg.Anthropic)
	case providers.ProviderTypeOpenAI:
		return providers.NewOpenAIProvider(cfg.OpenAI)
	case providers.ProviderTypeGemini:
		return providers.NewGeminiProvider(ctx, cfg.Gemini)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func newOrchestrator(ctx context.Context, cfg config.Config) (*synthesis.Orchestrator, error) {
	fragments, compositions, err := prompt.DefaultRegistries()
	if err != nil {
		return nil, err
	}

	resolver, err := library.NewResolver(library.ResolverConfig{
		Overrides: library.StaticOverrides(cfg.Library.Overrides),
		CacheSize: cfg.Library.CacheSize,
	})
	if err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder(prompt.BuilderConfig{
		Fragments:    fragments,
		Compositions: compositions,
		Libraries:    resolver,
	})
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return synthesis.New(synthesis.Config{
		Builder:         builder,
		Client:          provider,
		Model:           cfg.Synthesis.Model,
		MaxOutputTokens: cfg.Synthesis.MaxOutputTokens,
	})
}
