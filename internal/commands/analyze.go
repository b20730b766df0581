package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/period"
	"github.com/bankbench-dev/bankbench/internal/report"
)

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	sel := &selection{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare banks for a quarter, or one bank against the market",
		Long: `Without --bank, prints the derived metrics of every bank and the market
average. With --bank, prints the headline tiles of that bank against the
market, its income and expense structure, and rule-based recommendations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runAnalyze(e, sel)
		},
	}
	sel.register(cmd, true)

	return cmd
}

func runAnalyze(e *env, sel *selection) error {
	r := report.NewRenderer(e.out, e.colorize)

	a, err := e.load(sel.quarter)
	if err != nil {
		return reshapeMessage(r, err)
	}
	if e.noData(r, a) {
		return nil
	}

	title := "Quarter " + a.quarter
	if q, err := period.ParseToken(a.quarter); err == nil {
		title = q.Label()
	}

	if sel.bank == "" {
		r.Heading(title + " (amounts in thousands of EUR)")
		r.Table(a.table, kpi.Averages(a.table, ""))
		return nil
	}

	row, err := e.selectBank(a, sel.bank)
	if err != nil {
		return err
	}
	avg := a.market(row, sel.exclude)

	r.Heading(row.Bank + ", " + title + " (amounts in thousands of EUR)")
	r.Tiles(report.Tiles(row, avg))

	r.Heading("Income structure")
	r.Breakdown(report.IncomeBreakdown(row.WideRow, e.cfg.Mapping))

	r.Heading("Expense structure")
	r.Breakdown(report.ExpenseBreakdown(row.WideRow, e.cfg.Mapping))

	r.Heading("Recommendations")
	r.Hints(report.Hints(row, avg))
	return nil
}
