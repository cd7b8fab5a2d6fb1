package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/projectfile"
)

func newForecastCommand(g *globalFlags) *cobra.Command {
	var scenarioID string

	cmd := &cobra.Command{
		Use:   "forecast <project.yaml>",
		Short: "Print the property value scenarios and what drives them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := projectfile.Load(args[0])
			if err != nil {
				return err
			}
			if p.Valuation == nil {
				p.Valuation = &model.ValuationConfiguration{}
			}
			p.Valuation.IncludeForecast = true

			calc, err := g.calculator(cmd)
			if err != nil {
				return err
			}
			res, err := calc.Calculate(cmd.Context(), p, scenarioID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fc := res.Forecast
			if fc == nil {
				return fmt.Errorf("scenario %q disables the forecast", scenarioID)
			}
			fmt.Fprintf(out, "Purchase price %s, initial condition factor %.2f\n", p.Purchase.Price, fc.InitialConditionFactor)
			for _, sc := range fc.Scenarios {
				fmt.Fprintf(out, "\n%s (%s%% p.a.): %s\n", sc.Name, sc.AppreciationPercent, sc.FinalValue)
				for _, d := range sc.Drivers {
					fmt.Fprintf(out, "  - %s\n", d.Summary())
				}
			}
			if ex := res.Exit; ex != nil {
				fmt.Fprintf(out, "\nExit on %s after %s years:\n", ex.ExitDate.Format("2006-01-02"), ex.HoldingYears)
				for _, s := range ex.Scenarios {
					fmt.Fprintf(out, "  %s: net proceeds %s, total return %s (%s%% p.a.)\n", s.Name, s.NetSaleProceeds, s.TotalReturn, s.AnnualizedReturnPercent)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "scenario id to apply")
	return cmd
}
