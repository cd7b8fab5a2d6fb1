package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/projectfile"
)

func newScenariosCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios <project.yaml>",
		Short: "Compare the base case with every scenario of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectfile.Load(args[0])
			if err != nil {
				return err
			}
			calc, err := g.calculator(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tNAME\tIRR %\tCASHFLOW AFTER TAX\tMIN DSCR\tWARNINGS")

			ids := []string{""}
			for _, s := range p.Scenarios {
				ids = append(ids, s.ID)
			}
			for _, sid := range ids {
				res, err := calc.Calculate(cmd.Context(), p, sid)
				if err != nil {
					return fmt.Errorf("scenario %q: %w", sid, err)
				}
				label, name := "base", p.Name
				if sid != "" {
					s, _ := p.Scenario(sid)
					label, name = sid, s.Name
				}
				m := res.Metrics
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", label, name, m.IRRPercent, m.TotalCashflowAfterTax, m.MinDSCR, len(res.Warnings))
			}
			return tw.Flush()
		},
	}
}
