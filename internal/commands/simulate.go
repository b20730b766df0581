package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/report"
)

func newSimulateCommand(opts *globalOptions) *cobra.Command {
	sel := &selection{}
	adj := report.Adjustments{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project a bank's net profit under what-if adjustments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := adj.Validate(); err != nil {
				return err
			}
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runSimulate(e, sel, adj)
		},
	}
	sel.register(cmd, true)
	cmd.Flags().Float64Var(&adj.AdminCut, "admin-cut", 0, "percent reduction of administrative costs (0-100)")
	cmd.Flags().Float64Var(&adj.FeeGrowth, "fee-growth", 0, "percent growth of fee income (0-100)")
	cmd.Flags().Float64Var(&adj.InterestGrowth, "interest-growth", 0, "percent growth of interest income (0-100)")

	return cmd
}

func runSimulate(e *env, sel *selection, adj report.Adjustments) error {
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

	p, err := report.Simulate(row, e.cfg.Mapping, adj)
	if err != nil {
		return err
	}

	r.Heading(row.Bank + ": what-if projection (amounts in thousands of EUR)")
	r.Projection(p)
	return nil
}
