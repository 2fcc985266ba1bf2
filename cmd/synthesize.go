package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/curatehq/skillforge/core/budget"
	"github.com/curatehq/skillforge/core/config"
	"github.com/curatehq/skillforge/core/providers"
	"github.com/curatehq/skillforge/core/synthesis"
)

var (
	synthesizeLibrary   string
	synthesizeMode      string
	synthesizeTitle     string
	synthesizeScopeFile string
	synthesizeCustomer  bool
	synthesizeContext   string
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Synthesize a new skill document from the staged sources",
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
			return fmt.Errorf("no staged sources; run 'skillforge stage' first")
		}

		reportBudget(cmd, cfg, sources, "")

		mode, err := synthesis.ParseCreationMode(synthesizeMode)
		if err != nil {
			return err
		}

		req := synthesis.CreateRequest{
			Sources:           sources,
			Mode:              mode,
			LibraryID:         synthesizeLibrary,
			CustomerScoped:    synthesizeCustomer,
			AdditionalContext: synthesizeContext,
			Title:             synthesizeTitle,
		}
		if synthesizeScopeFile != "" {
			scope, err := scopeFromFile(synthesizeScopeFile)
			if err != nil {
				return err
			}
			req.Scope = &scope
		}

		orch, err := newOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result, err := orch.Create(cmd.Context(), req)
		if err != nil {
			return err
		}

		if err := store.SaveDocument(cmd.Context(), synthesizeLibrary, result.Document); err != nil {
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
	synthesizeCmd.Flags().StringVar(&synthesizeLibrary, "library", "knowledge", "target library")
	synthesizeCmd.Flags().StringVar(&synthesizeMode, "mode", "generated", "creation mode: generated or foundational")
	synthesizeCmd.Flags().StringVar(&synthesizeTitle, "title", "", "document title (foundational mode)")
	synthesizeCmd.Flags().StringVar(&synthesizeScopeFile, "scope-file", "", "YAML scope definition (foundational mode)")
	synthesizeCmd.Flags().BoolVar(&synthesizeCustomer, "customer", false, "scope the skill to a single customer")
	synthesizeCmd.Flags().StringVar(&synthesizeContext, "context", "", "additional ad-hoc context for the model")
	rootCmd.AddCommand(synthesizeCmd)
}

func scopeFromFile(path string) (synthesis.ScopeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return synthesis.ScopeDefinition{}, fmt.Errorf("read scope file: %w", err)
	}
	var scope struct {
		Covers          string   `yaml:"covers"`
		FutureAdditions []string `yaml:"future_additions"`
		NotIncluded     []string `yaml:"not_included"`
	}
	if err := yaml.Unmarshal(data, &scope); err != nil {
		return synthesis.ScopeDefinition{}, fmt.Errorf("parse scope file: %w", err)
	}
	return synthesis.ScopeDefinition{
		Covers:          scope.Covers,
		FutureAdditions: scope.FutureAdditions,
		NotIncluded:     scope.NotIncluded,
	}, nil
}

// reportBudget registers each source (and optionally existing content)
// against a session budget tracker and warns when the configured ceiling is
// exceeded. The budget is advisory; synthesis proceeds regardless.
func reportBudget(cmd *cobra.Command, cfg config.Config, sources []synthesis.Source, existingContent string) {
	if cfg.Budget.Ceiling <= 0 {
		return
	}

	counter := providers.NewCharacterBasedCounter(providers.DefaultTokenCounterConfig())
	tracker := budget.NewTracker()

	for _, src := range sources {
		cost, _ := counter.CountText(src.Content)
		tracker.Register(src.ID, src.Label, cost)
	}
	if existingContent != "" {
		cost, _ := counter.CountText(existingContent)
		tracker.Register("existing-content", "existing document content", cost)
	}

	status := tracker.BudgetStatus(cfg.Budget.Ceiling)
	fmt.Fprintf(cmd.OutOrStdout(), "estimated input: %d tokens (%.0f%% of budget)\n",
		tracker.Total(), status.UsedPercent)
	if status.OverBudget {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: estimated input exceeds the configured token budget")
	}
}

func printResult(cmd *cobra.Command, result *synthesis.Result) {
	doc := result.Document
	fmt.Fprintf(cmd.OutOrStdout(), "saved skill %s: %s\n", doc.ID, doc.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "  citations: %d, tokens used: %d\n", len(doc.Citations), result.Usage.TotalTokens)
	for _, change := range result.Changes {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", change)
	}
	for _, c := range doc.Contradictions {
		fmt.Fprintf(cmd.OutOrStdout(), "  contradiction (%s): %s\n", c.Severity, c.Description)
	}
}
