package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/synthesis"
)

var (
	updateSkillID string
	updateMode    string
	updateLibrary string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an existing skill document from the staged sources",
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

		existing, err := store.GetDocument(cmd.Context(), updateSkillID)
		if err != nil {
			return err
		}

		staged, err := store.ListStagedSources(cmd.Context())
		if err != nil {
			return err
		}
		if len(staged) == 0 {
			return fmt.Errorf("no staged sources; run 'skillforge stage' first")
		}

		reportBudget(cmd, cfg, staged, existing.Content)

		mode, err := synthesis.ParseRefreshMode(updateMode)
		if err != nil {
			return err
		}

		req := synthesis.UpdateRequest{
			Existing:   existing,
			NewSources: staged,
			Mode:       mode,
			LibraryID:  updateLibrary,
		}
		if mode == synthesis.RefreshRegenerative {
			// The CLI has no separate archive of prior source content, so
			// regenerative runs treat the staged set as the complete set.
			// Callers with the full corpus should stage all of it.
			req.AllSources = staged
		}

		orch, err := newOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result, err := orch.Update(cmd.Context(), req)
		if err != nil {
			return err
		}

		if err := store.SaveDocument(cmd.Context(), updateLibrary, result.Document); err != nil {
			return err
		}
		if err := store.ClearStagedSources(cmd.Context()); err != nil {
			return err
		}

		printResult(cmd, result)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateSkillID, "skill", "", "id of the skill to update")
	updateCmd.Flags().StringVar(&updateMode, "mode", "additive", "refresh mode: regenerative or additive")
	updateCmd.Flags().StringVar(&updateLibrary, "library", "knowledge", "target library")
	updateCmd.MarkFlagRequired("skill")
	rootCmd.AddCommand(updateCmd)
}
