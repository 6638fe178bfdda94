// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects where log lines go.
type Options struct {
	Level   string    // debug, info, warn, error; empty means info
	Verbose bool      // forces debug
	Stderr  io.Writer // console sink, nil disables it
	File    string    // append-only log file, empty disables it
}

// New returns a logger and a close function for the log file.
// With no sinks configured the logger discards everything.
func New(opts Options) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := log.ParseLevel(s)
		if err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", s, err)
		}
		level = l
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	closeFn := func() error { return nil }
	var sinks []io.Writer
	if opts.Stderr != nil {
		sinks = append(sinks, opts.Stderr)
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, f)
		closeFn = f.Close
	}

	var w io.Writer
	switch len(sinks) {
	case 0:
		w = io.Discard
	case 1:
		w = sinks[0]
	default:
		w = io.MultiWriter(sinks...)
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "tubeshift",
	})
	return logger, closeFn, nil
}
