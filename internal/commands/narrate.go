package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/narrative"
	"github.com/bankbench-dev/bankbench/internal/report"
)

func newNarrateCommand(opts *globalOptions) *cobra.Command {
	sel := &selection{}

	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Ask the AI service for a written analysis of a bank",
		Long: `Sends the bank's metrics and the market average to Gemini and prints the
answer. The API key is read from the environment variable named in the config
(GEMINI_API_KEY by default) or from a .env file next to the config. Without a
key, rule-based recommendations are printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runNarrate(cmd, e, sel, nil)
		},
	}
	sel.register(cmd, true)

	return cmd
}

func runNarrate(cmd *cobra.Command, e *env, sel *selection, factory narrative.GeneratorFactory) error {
	r := report.NewRenderer(e.out, e.colorize)

	a, err := e.load(sel.quarter)
	if err != nil {
		return reshapeMessage(r, err)
	}
	if e.noData(r, a) {
		return nil
	}

	row, err := e.selectBank(a, sel.bank)
	if err != nil {
		return err
	}
	avg := a.market(row, sel.exclude)

	apiKey := e.cfg.APIKey()
	if apiKey == "" {
		fmt.Fprintf(e.out, "No API key set (%s); showing rule-based recommendations.\n", e.cfg.Narrative.APIKeyEnv)
		r.Heading("Recommendations for " + row.Bank)
		r.Hints(report.Hints(row, avg))
		return nil
	}

	nc, err := e.cfg.NarrativeConfig()
	if err != nil {
		return err
	}
	n := narrative.NewNarrator(nc, factory, e.logger)

	r.Heading("AI analysis of " + row.Bank)
	fmt.Fprintln(e.out, n.Narrate(cmd.Context(), apiKey, row.Bank, row, avg))
	return nil
}
