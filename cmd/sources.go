package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/synthesis"
)

var stageCmd = &cobra.Command{
	Use:   "stage [files...]",
	Short: "Stage source files for the next synthesis run",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, path := range args {
			src, err := sourceFromFile(path)
			if err != nil {
				return err
			}
			if err := store.StageSource(cmd.Context(), src); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "staged %s (%s)\n", src.Label, src.ID)
		}
		return nil
	},
}

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "List staged sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		sources, err := store.ListStagedSources(cmd.Context())
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no staged sources")
			return nil
		}
		for _, src := range sources {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %s (%d chars)\n", src.ID, src.Type, src.Label, len(src.Content))
		}
		return nil
	},
}

var unstageCmd = &cobra.Command{
	Use:   "unstage",
	Short: "Clear all staged sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.ClearStagedSources(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(stageCmd, stagedCmd, unstageCmd)
}

func sourceFromFile(path string) (synthesis.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return synthesis.Source{}, fmt.Errorf("read source %s: %w", path, err)
	}
	return synthesis.Source{
		ID:      uuid.NewString(),
		Type:    "document",
		Label:   filepath.Base(path),
		Content: string(content),
	}, nil
}
