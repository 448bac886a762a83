package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/pkg/classify"
	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/rules"
	"github.com/jmontp/LocoHub-sub005/pkg/schema"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

type validateFlags struct {
	dataset string
	rules   string
	out     string
	plots   string
	mode    string
}

func (a *app) validateCmd() *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a phase-normalized dataset",
		Long: `Run the generic range check over every column, then the checkpoint and pattern
checks of the rule file for every task, and write the YAML report.

Data-quality failures are part of the report and do not change the exit code.

Examples:
  locohub validate --dataset phase.csv --rules validation_ranges.md --out report.yaml
  locohub validate --dataset phase.csv --rules validation_ranges.md --plots steps.csv --mode kinematic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runValidate(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dataset, "dataset", "", "phase CSV to validate (required)")
	cmd.Flags().StringVar(&flags.rules, "rules", "", "markdown rule file (required)")
	cmd.Flags().StringVar(&flags.out, "out", "", "report YAML to write, stdout when empty")
	cmd.Flags().StringVar(&flags.plots, "plots", "", "write the per-step classification CSV to this file")
	cmd.Flags().StringVar(&flags.mode, "mode", "all", "failures considered by --plots: all, kinematic or kinetic")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, flags validateFlags) error {
	mode, err := classify.ParseMode(flags.mode)
	if err != nil {
		return err
	}

	table, err := rules.ParseFile(flags.rules, rules.WithLogger(a.logger))
	if err != nil {
		return err
	}

	ds, err := dataset.LoadPhase(flags.dataset, schema.DefaultRegistry())
	if err != nil {
		return err
	}

	vcfg := a.cfg.Validation
	patternOpts := []validation.PatternOption{
		validation.WithDefaultCheckpoints(vcfg.Checkpoints),
		validation.WithPatternLogger(a.logger),
	}
	for task, cps := range vcfg.TaskCheckpoints {
		patternOpts = append(patternOpts, validation.WithCheckpoints(task, cps))
	}

	engine := validation.NewEngine(table,
		validation.WithRangeValidator(validation.NewRangeValidator(
			validation.WithViolationThreshold(vcfg.ViolationThreshold),
			validation.WithRangeLogger(a.logger),
		)),
		validation.WithPatternOptions(patternOpts...),
		validation.WithConcurrency(vcfg.Concurrency),
		validation.WithMaxFailures(vcfg.MaxFailures),
		validation.WithStrictTasks(vcfg.StrictTasks),
		validation.WithObserver(a.recorder),
		validation.WithLogger(a.logger),
	)

	report, err := engine.Run(cmd.Context(), ds)
	if err != nil {
		return err
	}

	if flags.out == "" {
		if err := report.WriteYAML(a.stdout); err != nil {
			return err
		}
	} else {
		if err := report.Save(flags.out); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%d steps, pass rate %.1f%%, %d failures, report %s\n",
			report.Steps, 100*report.PassRate, len(report.Failures), flags.out)
	}

	if flags.plots != "" {
		if err := writeClassification(flags.plots, report, ds, mode); err != nil {
			return err
		}
		a.logger.Info("classification written", zap.String("path", flags.plots), zap.String("mode", flags.mode))
	}

	return a.writeMetrics()
}

func writeClassification(path string, report *validation.Report, ds *dataset.Dataset, mode classify.Mode) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	c := classify.New(report.Failures, ds.Steps(), mode)
	if err := c.WriteCSV(f, ds.Columns()); err != nil {
		_ = f.Close()

		return err
	}

	return errors.Wrapf(f.Close(), "unable to close %s", path)
}
