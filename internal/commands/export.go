package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/export"
	"github.com/bankbench-dev/bankbench/internal/kpi"
	"github.com/bankbench-dev/bankbench/internal/report"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	sel := &selection{}
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the KPI table of a quarter to an .xlsx or .csv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runExport(e, sel, out)
		},
	}
	sel.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default exports/kpi-<quarter>.xlsx next to the config)")

	return cmd
}

func runExport(e *env, sel *selection, out string) error {
	r := report.NewRenderer(e.out, e.colorize)

	a, err := e.load(sel.quarter)
	if err != nil {
		return reshapeMessage(r, err)
	}
	if e.noData(r, a) {
		return nil
	}

	if out == "" {
		out = filepath.Join(e.base, "exports", "kpi-"+a.quarter+".xlsx")
	}
	if err := export.Save(out, a.table, kpi.Averages(a.table, "")); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Exported %d banks for quarter %s to %s\n", a.table.Len(), a.quarter, out)
	return nil
}
