package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jakesherman/prefixrun/internal/config"
	"github.com/jakesherman/prefixrun/internal/pipeline"
)

// watchDebounce coalesces rapid filesystem events into one re-run.
const watchDebounce = 500 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var (
		extFlags  []string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Run the pipeline, then re-run it whenever the directory changes",
		Long: `Watch runs the pipeline once, then watches the directory and re-runs the
whole pipeline (from the first file) when a prefixed file is created or
modified. Stops on interrupt.`,
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

			recordHistory := !noHistory && !cfg.History.Disabled
			return watchLoop(dir, overrides, recordHistory, cfg.HistoryPath())
		},
	}

	cmd.Flags().StringArrayVar(&extFlags, "ext", nil, `extension override, e.g. --ext ".sh=zsh" (repeatable)`)
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")

	return cmd
}

func watchLoop(dir string, overrides map[string][]string, recordHistory bool, historyPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rerun := func() {
		// rediscover every time: the directory contents may have changed
		if err := runPipeline(dir, overrides, "plain", recordHistory, historyPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	rerun()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	slog.Info("watching for changes", "dir", dir)

	var mu sync.Mutex
	var pending *time.Timer

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			mu.Unlock()
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if _, eligible := pipeline.ParseOrder(filepath.Base(event.Name)); !eligible {
				continue
			}

			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				fmt.Printf("\nChange detected: %s — re-running\n\n", filepath.Base(event.Name))
				rerun()
			})
			mu.Unlock()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", werr)
		}
	}
}
