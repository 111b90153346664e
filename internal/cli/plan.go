package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakesherman/prefixrun/internal/config"
	"github.com/jakesherman/prefixrun/internal/reporter"
	"github.com/jakesherman/prefixrun/internal/runner"
)

func newPlanCmd() *cobra.Command {
	var extFlags []string

	cmd := &cobra.Command{
		Use:   "plan [directory]",
		Short: "Show the execution plan without running anything",
		Long: `Plan discovers the directory's prefixed files, resolves each file's
interpreter command, and prints the ordered plan. Duplicate prefixes and
unmapped extensions surface here before anything is spawned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			dir, err := resolveDir(args)
			if err != nil {
				return err
			}

			overrides, err := mergeOverrides(cfg.Extensions, extFlags)
			if err != nil {
				return err
			}

			opts := []runner.Option{}
			if len(overrides) > 0 {
				opts = append(opts, runner.WithExtensions(overrides))
			}
			r, err := runner.New(dir, opts...)
			if err != nil {
				return err
			}

			var steps []reporter.PlanStep
			for _, f := range r.Files() {
				step := reporter.PlanStep{File: f}
				if argv, cerr := r.Command(f.Name); cerr != nil {
					step.Problem = cerr.Error()
				} else {
					step.Command = argv
				}
				steps = append(steps, step)
			}

			reporter.NewTextReporter(os.Stdout, isTerminal()).PrintPlan(r.Directory(), steps)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&extFlags, "ext", nil, `extension override, e.g. --ext ".sh=zsh" (repeatable)`)

	return cmd
}
