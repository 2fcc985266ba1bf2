package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curatehq/skillforge/core/prompt"
)

var fragmentsCmd = &cobra.Command{
	Use:   "fragments",
	Short: "List the registered prompt fragments and compositions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fragments, compositions, err := prompt.DefaultRegistries()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Fragments:")
		for _, id := range fragments.IDs() {
			fragment, err := fragments.Get(id)
			if err != nil {
				return err
			}
			tokens, err := fragments.TokenEstimate(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-24s tier %d  ~%d tokens  %s\n",
				fragment.ID, fragment.Tier, tokens, fragment.Name)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "\nCompositions:")
		for _, context := range compositions.Contexts() {
			composition, err := compositions.Get(context)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %s  [%s]\n",
				composition.Context, composition.OutputFormat, strings.Join(composition.FragmentIDs, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fragmentsCmd)
}
