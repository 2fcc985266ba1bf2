package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/synthesis"
)

var matchLibrary string

var matchCmd = &cobra.Command{
	Use:   "match [source file]",
	Short: "Match a source against the stored skills in a library",
	Args:  cobra.ExactArgs(1),
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

		source, err := sourceFromFile(args[0])
		if err != nil {
			return err
		}

		records, err := store.ListSkills(cmd.Context(), matchLibrary)
		if err != nil {
			return err
		}

		candidates := make([]synthesis.SkillCandidate, 0, len(records))
		for _, r := range records {
			doc, err := store.GetDocument(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			candidates = append(candidates, synthesis.SkillCandidate{
				ID:      doc.ID,
				Title:   doc.Title,
				Summary: doc.Summary,
				Covers:  doc.Scope.Covers,
			})
		}

		orch, err := newOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result, err := orch.Match(cmd.Context(), synthesis.MatchRequest{
			Source:     source,
			Candidates: candidates,
			LibraryID:  matchLibrary,
		})
		if err != nil {
			return err
		}

		for _, m := range result.Matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f  %s  %s\n      %s\n", m.Score, m.SkillID, m.Title, m.Rationale)
		}
		if result.CreateNew {
			fmt.Fprintf(cmd.OutOrStdout(), "recommend creating a new skill: %s\n      %s\n",
				result.SuggestedTitle, result.CreateNewRationale)
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchLibrary, "library", "knowledge", "library to match against")
	rootCmd.AddCommand(matchCmd)
}
