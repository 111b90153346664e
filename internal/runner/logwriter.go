package runner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogWriter opens a step log file for child output, used when a live
// display owns the terminal. Falls back to io.Discard if the file cannot
// be created so a logging problem never fails the step itself.
func NewLogWriter(dir, name string) io.WriteCloser {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("cannot create log dir", "path", dir, "error", err)
		return nopCloser{io.Discard}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("cannot create log file", "path", path, "error", err)
		return nopCloser{io.Discard}
	}
	return f
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
