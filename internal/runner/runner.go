// Package runner executes a discovered pipeline: one file at a time, in
// prefix order, each through the interpreter mapped to its extension.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

// UnknownExtensionError indicates a discovered file whose extension has no
// mapped command. It is raised before any process is spawned for the file.
type UnknownExtensionError struct {
	File string
	Ext  string
}

func (e *UnknownExtensionError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: file has no extension", e.File)
	}
	return fmt.Sprintf("%s: no command mapped for extension %q", e.File, e.Ext)
}

// InvocationError wraps the failure of a single step. The step's record is
// finalized before this is returned, so the report stays consistent up to
// and including the failing file.
type InvocationError struct {
	File string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Option configures a Runner.
type Option func(*Runner)

// WithExtensions overlays extension overrides on the default table.
func WithExtensions(overrides map[string][]string) Option {
	return func(r *Runner) {
		r.ext = MergeExtensions(overrides)
	}
}

// WithOutput redirects child stdout/stderr. Defaults to the parent's
// streams; the live display redirects to per-step log files.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// Runner owns the ordered file list and the per-file records for one
// pipeline directory. Execution is strictly sequential; the lock only
// exists so a live display can snapshot records mid-run.
type Runner struct {
	dir string
	ext map[string][]string

	files []pipeline.OrderedFile

	stdout io.Writer
	stderr io.Writer

	mu      sync.RWMutex
	records map[string]*pipeline.Record
}

// New discovers the directory and returns a Runner fixed to that file
// order. The directory must be resolved by the caller; it is never taken
// from ambient process state.
func New(dir string, opts ...Option) (*Runner, error) {
	dir = filepath.Clean(dir) + string(os.PathSeparator)

	files, err := pipeline.Discover(dir)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		dir:     dir,
		ext:     DefaultExtensions(),
		files:   files,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		records: make(map[string]*pipeline.Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Directory returns the pipeline directory, trailing separator included.
func (r *Runner) Directory() string { return r.dir }

// Files returns the discovered files in execution order.
func (r *Runner) Files() []pipeline.OrderedFile {
	out := make([]pipeline.OrderedFile, len(r.files))
	copy(out, r.files)
	return out
}

// Extensions returns a copy of the merged extension table.
func (r *Runner) Extensions() map[string][]string {
	out := make(map[string][]string, len(r.ext))
	for k, v := range r.ext {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Command resolves the full invocation for a file: the extension's command
// tokens with the filename appended. Fails with *UnknownExtensionError when
// the extension has no mapping.
func (r *Runner) Command(name string) ([]string, error) {
	ext := filepath.Ext(name)
	tokens, ok := r.ext[ext]
	if !ok {
		return nil, &UnknownExtensionError{File: name, Ext: ext}
	}
	argv := make([]string, 0, len(tokens)+1)
	argv = append(argv, tokens...)
	argv = append(argv, name)
	return argv, nil
}

// Run executes every file in discovery order, stopping at the first
// failure. Prior records are discarded, so a re-run restarts from the first
// file. The returned report reflects partial progress even when err is
// non-nil; the error is *UnknownExtensionError or *InvocationError.
func (r *Runner) Run(ctx context.Context) (*pipeline.Report, error) {
	r.mu.Lock()
	r.records = make(map[string]*pipeline.Record, len(r.files))
	r.mu.Unlock()

	for _, f := range r.files {
		argv, err := r.Command(f.Name)
		if err != nil {
			// No record: the file was never started.
			return r.Report(), err
		}

		slog.Debug("running step", "order", f.Order, "file", f.Name, "command", strings.Join(argv, " "))

		rec := &pipeline.Record{StartedAt: time.Now(), ExitCode: -1}
		r.mu.Lock()
		r.records[f.Name] = rec
		r.mu.Unlock()

		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = r.dir
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stderr

		runErr := cmd.Run()
		end := time.Now()

		r.mu.Lock()
		rec.EndedAt = end
		rec.Elapsed = end.Sub(rec.StartedAt)
		if runErr != nil {
			rec.Success = false
			rec.Error = runErr.Error()
			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				rec.ExitCode = exitErr.ExitCode()
			}
			r.mu.Unlock()
			slog.Debug("step failed", "file", f.Name, "error", runErr)
			return r.Report(), &InvocationError{File: f.Name, Err: runErr}
		}
		rec.Success = true
		rec.ExitCode = 0
		r.mu.Unlock()

		slog.Debug("step completed", "file", f.Name, "elapsed", rec.Elapsed)
	}

	return r.Report(), nil
}

// Report snapshots the current run state. Records are copied, so the
// returned report is stable even while a run is in flight.
func (r *Runner) Report() *pipeline.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make(map[string]*pipeline.Record, len(r.records))
	for name, rec := range r.records {
		cpy := *rec
		records[name] = &cpy
	}
	return &pipeline.Report{
		Directory: r.dir,
		Files:     r.Files(),
		Records:   records,
	}
}
