package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jakesherman/prefixrun/internal/config"
	"github.com/jakesherman/prefixrun/internal/history"
)

const historyTimeFormat = "2006-01-02 15:04"

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past pipeline runs",
		Long: `History lists pipeline runs recorded in the local history database.
Use 'prefixrun history show <id>' for the per-step detail of one run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(os.Stdout, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")

	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

// printRuns writes the run listing as an aligned table.
func printRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDIRECTORY\tSTARTED\tSTEPS\tSUCCEEDED\tFAILED\tSTATUS\n")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Directory, r.StartedAt.Format(historyTimeFormat),
			r.TotalSteps, r.Succeeded, r.Failed, r.Status)
	}
	return tw.Flush()
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the per-step detail of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			store, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			steps, err := store.RunSteps(runID)
			if err != nil {
				return err
			}
			if len(steps) == 0 {
				return fmt.Errorf("no run with id %d", runID)
			}
			return printSteps(os.Stdout, steps)
		},
	}
}

// printSteps writes one run's step rows as an aligned table.
func printSteps(w io.Writer, steps []history.Step) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ORDER\tFILE NAME\tSTARTED\tELAPSED (MINS)\tEXIT\tSTATUS\tERROR\n")
	for _, s := range steps {
		started, elapsed, exit := "NA", "NA", "NA"
		if !s.StartedAt.IsZero() {
			started = s.StartedAt.Format(historyTimeFormat)
			elapsed = fmt.Sprintf("%.2f", s.ElapsedSecs/60)
			exit = strconv.Itoa(s.ExitCode)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Ord, s.Name, started, elapsed, exit, s.Status, s.Error)
	}
	return tw.Flush()
}

func openHistory() (*history.Store, error) {
	cfg, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return history.Open(cfg.HistoryPath())
}
