package cmd

import (
	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/synthesis"
)

var (
	reformatSkillID string
	reformatLibrary string
)

var reformatCmd = &cobra.Command{
	Use:   "reformat",
	Short: "Restructure a skill document without changing its content",
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

		existing, err := store.GetDocument(cmd.Context(), reformatSkillID)
		if err != nil {
			return err
		}

		staged, err := store.ListStagedSources(cmd.Context())
		if err != nil {
			return err
		}

		orch, err := newOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result, err := orch.Reformat(cmd.Context(), synthesis.ReformatRequest{
			Existing:   existing,
			AllSources: staged,
			LibraryID:  reformatLibrary,
		})
		if err != nil {
			return err
		}

		if err := store.SaveDocument(cmd.Context(), reformatLibrary, result.Document); err != nil {
			return err
		}

		printResult(cmd, result)
		return nil
	},
}

func init() {
	reformatCmd.Flags().StringVar(&reformatSkillID, "skill", "", "id of the skill to reformat")
	reformatCmd.Flags().StringVar(&reformatLibrary, "library", "knowledge", "target library")
	reformatCmd.MarkFlagRequired("skill")
	rootCmd.AddCommand(reformatCmd)
}
