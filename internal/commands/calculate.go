package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/export"
	"github.com/cleared-dev/immocalc/internal/id"
	"github.com/cleared-dev/immocalc/internal/projectfile"
	"github.com/cleared-dev/immocalc/internal/runlog"
)

func newCalculateCommand(g *globalFlags) *cobra.Command {
	var scenarioID, format, output, logDir string

	cmd := &cobra.Command{
		Use:   "calculate <project.yaml>",
		Short: "Run the full projection for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			p, err := projectfile.Load(args[0])
			if err != nil {
				return err
			}
			calc, err := g.calculator(cmd)
			if err != nil {
				return err
			}
			res, err := calc.Calculate(cmd.Context(), p, scenarioID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, res, f); err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), res)

			if logDir != "" {
				entry := runlog.FromResult(id.NewRunID(), time.Now().UTC(), res)
				if err := runlog.Append(logDir, []runlog.Entry{entry}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write calculation log: %v\n", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenarioID, "scenario", "s", "", "scenario id to apply")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "append the run to <dir>/logs/calculation-log.csv")

	return cmd
}
