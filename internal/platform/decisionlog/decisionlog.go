// Package decisionlog builds the per-run planning log. Lines carry no wall-clock
// time, so identical runs produce identical logs.
package decisionlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New returns a text logger writing one key=value line per decision to w.
func New(w io.Writer) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(h)
}

// Open creates (or truncates) the log file at path. The caller closes the file.
func Open(path string) (*slog.Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("open decision log: create dir %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open decision log: create %q: %w", path, err)
	}
	return New(f), f, nil
}

func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }
