package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/config"
	"github.com/cleared-dev/immocalc/internal/gitops"
	"github.com/cleared-dev/immocalc/internal/id"
	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/projectfile"
)

func newInitCommand() *cobra.Command {
	var name string
	var force, git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a sample project and the default engine config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, name, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized immocalc project at %s\n", absDir)

			if git {
				if gitops.IsRepo(absDir) {
					return nil
				}
				if err := gitops.Init(cmd.Context(), absDir); err != nil {
					return err
				}
				hash, err := gitops.Commit(cmd.Context(), absDir, "init: create project", gitops.DefaultAuthor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&git, "git", false, "initialize a git repository and commit the new files")

	return cmd
}

func runInit(dir, name string, force bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return fmt.Errorf("creating directory logs: %w", err)
	}

	projectPath := filepath.Join(dir, projectfile.FileName)
	configPath := filepath.Join(dir, config.FileName)
	if !force {
		for _, p := range []string{projectPath, configPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
		}
	}

	p := model.SampleProject()
	p.ID = id.NewProjectID()
	if name != "" {
		p.Name = name
	}
	if err := projectfile.Save(projectPath, p); err != nil {
		return err
	}

	if err := config.Save(configPath, config.Default()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "logs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
