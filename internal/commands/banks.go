package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBanksCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "banks [code-or-name...]",
		Short: "List known banks or resolve codes and names",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runBanks(e, args)
		},
	}
}

func runBanks(e *env, queries []string) error {
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(queries) == 0 {
		fmt.Fprintln(tw, "CODE\tNAME")
		for _, b := range e.banks.All() {
			fmt.Fprintf(tw, "%s\t%s\n", b.Code, b.Name)
		}
		return nil
	}

	fmt.Fprintln(tw, "QUERY\tCODE\tNAME")
	for _, q := range queries {
		if name, ok := e.banks.Lookup(q); ok {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", q, e.banks.Code(name), name)
			continue
		}
		if code := e.banks.Code(q); code != q {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", q, code, q)
			continue
		}
		fmt.Fprintf(tw, "%s\t-\t%s (unknown)\n", q, e.banks.Name(q))
	}
	return nil
}
