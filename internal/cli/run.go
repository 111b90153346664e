package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jakesherman/prefixrun/internal/config"
	"github.com/jakesherman/prefixrun/internal/history"
	"github.com/jakesherman/prefixrun/internal/pipeline"
	"github.com/jakesherman/prefixrun/internal/reporter"
	"github.com/jakesherman/prefixrun/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		extFlags  []string
		display   string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "run [directory]",
		Short: "Run the directory's prefixed files in order",
		Args:  cobra.MaximumNArgs(1),
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

			if !cmd.Flags().Changed("display") && cfg.Display.Mode != "" {
				display = cfg.Display.Mode
			}

			recordHistory := !noHistory && !cfg.History.Disabled
			return runPipeline(dir, overrides, display, recordHistory, cfg.HistoryPath())
		},
	}

	cmd.Flags().StringArrayVar(&extFlags, "ext", nil, `extension override, e.g. --ext ".sh=zsh" or --ext ".hql=hive -f" (repeatable)`)
	cmd.Flags().StringVar(&display, "display", "auto", "display mode: live (progress view), plain (table only), auto (detect TTY)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history database")

	return cmd
}

func runPipeline(dir string, overrides map[string][]string, display string, recordHistory bool, historyPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	isTTY := isTerminal()
	live := display == "live" || (display == "auto" && isTTY)

	opts := []runner.Option{}
	if len(overrides) > 0 {
		opts = append(opts, runner.WithExtensions(overrides))
	}

	var logWriter *os.File
	if live {
		// the live view owns the terminal, so step output goes to a log
		// rooted under the pipeline directory
		lw := runner.NewLogWriter(stepLogDir(dir), "run.log")
		defer func() { _ = lw.Close() }()
		opts = append(opts, runner.WithOutput(lw, lw))
		if f, ok := lw.(*os.File); ok {
			logWriter = f
		}
	}

	r, err := runner.New(dir, opts...)
	if err != nil {
		return err
	}
	if len(r.Files()) == 0 {
		fmt.Println("No files with an <integer>- prefix found.")
		return nil
	}

	started := time.Now()
	var rep *pipeline.Report
	var runErr error

	if live {
		prog := tea.NewProgram(reporter.NewTUIModel(r.Report, cancel))
		done := make(chan struct{})
		go func() {
			defer close(done)
			rep, runErr = r.Run(ctx)
			prog.Send(reporter.RunFinishedMsg{})
		}()
		if _, terr := prog.Run(); terr != nil {
			slog.Warn("live display error", "error", terr)
		}
		<-done
	} else {
		rep, runErr = r.Run(ctx)
	}
	finished := time.Now()

	// the report is printed whether or not the run failed
	textRep := reporter.NewTextReporter(os.Stdout, isTTY)
	textRep.PrintReport(rep)
	textRep.PrintSummary(rep)
	if logWriter != nil {
		fmt.Printf("Step output: %s\n", logWriter.Name())
	}

	if recordHistory {
		if store, herr := history.Open(historyPath); herr != nil {
			slog.Warn("cannot open history db", "error", herr)
		} else {
			if _, herr := store.RecordRun(started, finished, rep); herr != nil {
				slog.Warn("cannot record run", "error", herr)
			}
			_ = store.Close()
		}
	}

	return runErr
}

// stepLogDir returns where live-mode step output is written, anchored to
// the pipeline directory rather than the invoking process's CWD.
func stepLogDir(dir string) string {
	return filepath.Join(dir, ".prefixrun")
}

// resolveDir resolves the optional directory argument to an absolute path.
// Defaults to the current directory, resolved here rather than captured by
// the runner.
func resolveDir(args []string) (string, error) {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// mergeOverrides combines config-file extension overrides with --ext flags.
// Flags win over config entries for the same extension.
func mergeOverrides(fromConfig map[string][]string, extFlags []string) (map[string][]string, error) {
	merged := make(map[string][]string, len(fromConfig)+len(extFlags))
	for ext, tokens := range fromConfig {
		merged[ext] = tokens
	}
	for _, flag := range extFlags {
		ext, tokens, err := parseExtOverride(flag)
		if err != nil {
			return nil, err
		}
		merged[ext] = tokens
	}
	return merged, nil
}

// parseExtOverride parses ".sh=zsh" or ".hql=hive -f" into an extension key
// and its command tokens.
func parseExtOverride(s string) (string, []string, error) {
	ext, cmd, found := strings.Cut(s, "=")
	if !found {
		return "", nil, fmt.Errorf("invalid --ext %q: want <.ext>=<command>", s)
	}
	ext = strings.TrimSpace(ext)
	if ext == "" || !strings.HasPrefix(ext, ".") {
		return "", nil, fmt.Errorf("invalid --ext %q: extension must start with a dot", s)
	}
	tokens := strings.Fields(cmd)
	if len(tokens) == 0 {
		return "", nil, fmt.Errorf("invalid --ext %q: empty command", s)
	}
	return ext, tokens, nil
}
