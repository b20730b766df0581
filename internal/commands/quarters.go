package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankbench-dev/bankbench/internal/period"
)

func newQuartersCommand(opts *globalOptions) *cobra.Command {
	var all bool
	var from int

	cmd := &cobra.Command{
		Use:   "quarters",
		Short: "List quarters with income statement extracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runQuarters(e, all, from, time.Now().Year())
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every quarter since --from, marking those with data")
	cmd.Flags().IntVar(&from, "from", 2021, "first year listed with --all")

	return cmd
}

func runQuarters(e *env, all bool, fromYear, toYear int) error {
	sc, err := e.scanner()
	if err != nil {
		return err
	}
	tokens, err := sc.Quarters(e.cfg.Data.Dir)
	if err != nil {
		return err
	}

	available := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		available[tok] = true
	}

	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if !all {
		if len(tokens) == 0 {
			fmt.Fprintf(e.out, "No income statement extracts found in %s\n", e.cfg.Data.Dir)
			return nil
		}
		fmt.Fprintln(tw, "TOKEN\tQUARTER")
		for _, tok := range tokens {
			label := "?"
			if q, err := period.ParseToken(tok); err == nil {
				label = q.Label()
			}
			fmt.Fprintf(tw, "%s\t%s\n", tok, label)
		}
		return nil
	}

	fmt.Fprintln(tw, "TOKEN\tQUARTER\tDATA")
	for _, q := range period.Range(fromYear, toYear) {
		mark := ""
		if available[q.Token()] {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Token(), q.Label(), mark)
	}
	return nil
}
