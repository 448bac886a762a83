package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jmontp/LocoHub-sub005/pkg/rules"
)

func (a *app) rulesCmd() *cobra.Command {
	var (
		path string
		task string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Parse a rule file and list its rules",
		Long: `Parse a markdown rule file, print every rule per task and report the rows that
were skipped or adjusted while parsing.

Examples:
  locohub rules --rules validation_ranges.md
  locohub rules --rules validation_ranges.md --task level_walking`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			table, err := rules.ParseFile(path, rules.WithLogger(a.logger))
			if err != nil {
				return err
			}

			return a.printRules(table, task)
		},
	}

	cmd.Flags().StringVar(&path, "rules", "", "markdown rule file (required)")
	cmd.Flags().StringVar(&task, "task", "", "only list this task")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func (a *app) printRules(table *rules.Table, only string) error {
	tasks := table.Tasks()
	if only != "" {
		if !table.Has(only) {
			return errors.Errorf("task %q not found, known tasks: %s", only, strings.Join(tasks, ", "))
		}
		tasks = []string{only}
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tVARIABLE\tPHASE\tMIN\tMAX\tPATTERNS\tTOLERANCE")
	for _, task := range tasks {
		rs, _ := table.Rules(task)
		for _, r := range rs {
			patterns := make([]string, len(r.Patterns))
			for i, p := range r.Patterns {
				patterns[i] = p.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%g %s\n",
				task, r.Variable, r.PhaseRange, r.Min, r.Max, strings.Join(patterns, ","), r.Tolerance, r.ToleranceType)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "unable to write rules")
	}

	fmt.Fprintf(a.stdout, "%d tasks, %d rules, %d warnings\n", len(table.Tasks()), table.Len(), len(table.Warnings()))
	for _, warning := range table.Warnings() {
		fmt.Fprintln(a.stdout, "warning:", warning)
	}

	return nil
}
