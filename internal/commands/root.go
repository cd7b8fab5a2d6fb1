package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/buildinfo"
	"github.com/cleared-dev/immocalc/internal/config"
	"github.com/cleared-dev/immocalc/internal/engine"
	"github.com/cleared-dev/immocalc/internal/model"
)

type globalFlags struct {
	configPath string
	envFile    string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:     "immocalc",
		Short:   "Real-estate investment projections",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", config.FileName, "engine config file (defaults apply when missing)")
	flags.StringVar(&g.envFile, "env-file", ".env", "file with IMMOCALC_* overrides")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log every pipeline stage to stderr")

	rootCmd.AddCommand(
		newInitCommand(),
		newCalculateCommand(&g),
		newScenariosCommand(&g),
		newForecastCommand(&g),
		newCapExCommand(),
	)

	return rootCmd
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist, and applies the environment overrides.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		return nil, err
	}
	if err := config.LoadEnv(cfg, g.envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *globalFlags) calculator(cmd *cobra.Command) (*engine.Calculator, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	out := io.Discard
	if g.verbose {
		out = cmd.ErrOrStderr()
	}
	return engine.New(
		engine.WithParams(cfg.Params()),
		engine.WithClock(model.SystemClock{}),
		engine.WithLogger(log.New(out, "immocalc: ", 0)),
	), nil
}

func printWarnings(w io.Writer, res *model.CalculationResult) {
	for _, warn := range res.Warnings {
		at := ""
		if warn.Period != nil {
			at = " (" + warn.Period.String() + ")"
		}
		fmt.Fprintf(w, "warning: [%s] %s%s\n", warn.Code, warn.Message, at)
	}
}
