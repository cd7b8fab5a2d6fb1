package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/immocalc/internal/gitops"
	"github.com/cleared-dev/immocalc/internal/id"
	"github.com/cleared-dev/immocalc/internal/model"
	"github.com/cleared-dev/immocalc/internal/money"
	"github.com/cleared-dev/immocalc/internal/period"
	"github.com/cleared-dev/immocalc/internal/projectfile"
)

func newCapExCommand() *cobra.Command {
	capexCmd := &cobra.Command{
		Use:   "capex",
		Short: "Manage the CapEx measures of a project",
	}
	capexCmd.AddCommand(newCapExAddCommand())
	return capexCmd
}

type capexFlags struct {
	name              string
	category          string
	unitID            string
	planned           string
	cost              string
	classification    string
	priority          string
	distributionYears int
	executed          bool
}

func newCapExAddCommand() *cobra.Command {
	var f capexFlags

	cmd := &cobra.Command{
		Use:   "add <project.yaml>",
		Short: "Add a measure with the next free CX id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := projectfile.Load(path)
			if err != nil {
				return err
			}
			m, err := f.measure(p)
			if err != nil {
				return err
			}

			if p.CapEx == nil {
				p.CapEx = &model.CapExConfiguration{}
			}
			p.CapEx.Measures = append(p.CapEx.Measures, m)
			if err := p.Validate(); err != nil {
				return err
			}
			if err := projectfile.Save(path, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s, %s) to %s\n", m.ID, m.Category, m.EstimatedCost, path)

			dir, file := filepath.Split(path)
			if dir == "" {
				dir = "."
			}
			if !gitops.IsRepo(dir) {
				return nil
			}
			hash, err := gitops.Commit(cmd.Context(), dir, "capex: add "+m.ID, gitops.DefaultAuthor, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "measure name")
	cmd.Flags().StringVar(&f.category, "category", "", "component category, e.g. roof or heating (required)")
	cmd.Flags().StringVar(&f.unitID, "unit", "", "unit id for unit-level measures")
	cmd.Flags().StringVar(&f.planned, "planned", "", "planned month YYYY-MM (required)")
	cmd.Flags().StringVar(&f.cost, "cost", "", "estimated cost, e.g. \"12000 EUR\" or 12000 in the project currency (required)")
	cmd.Flags().StringVar(&f.classification, "classification", string(model.MaintenanceExpense), "tax classification")
	cmd.Flags().IntVar(&f.distributionYears, "distribution-years", 0, "years to spread distributed maintenance over (2-5)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low, medium, high or critical")
	cmd.Flags().BoolVar(&f.executed, "executed", false, "the measure is already done")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("planned")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func (f capexFlags) measure(p model.Project) (model.CapExMeasure, error) {
	planned, err := period.Parse(f.planned)
	if err != nil {
		return model.CapExMeasure{}, err
	}
	cost, err := money.Parse(f.cost)
	if err != nil {
		cost, err = money.Parse(f.cost + " " + p.Currency)
	}
	if err != nil {
		return model.CapExMeasure{}, fmt.Errorf("parsing cost: %w", err)
	}

	class := model.TaxClassification(f.classification)
	if !class.Valid() {
		return model.CapExMeasure{}, fmt.Errorf("unknown tax classification %q", f.classification)
	}
	switch model.Priority(f.priority) {
	case "", model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
	default:
		return model.CapExMeasure{}, fmt.Errorf("unknown priority %q", f.priority)
	}

	var existing []string
	for _, m := range p.Measures() {
		existing = append(existing, m.ID)
	}
	return model.CapExMeasure{
		ID:                id.NextMeasureID(existing, planned),
		Name:              f.name,
		Category:          model.Category(f.category),
		UnitID:            f.unitID,
		PlannedPeriod:     planned,
		EstimatedCost:     cost,
		TaxClassification: class,
		DistributionYears: f.distributionYears,
		Executed:          f.executed,
		Priority:          model.Priority(f.priority),
	}, nil
}
