package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options selects the log handler installed by Setup
type Options struct {
	// Format is "text" (tint) or "json"
	Format string
	// Level is a slog level name; Verbose overrides it with debug
	Level   string
	Verbose bool
	// NoColor disables colour even on a terminal
	NoColor bool
}

// NewHandler builds the handler for w. Colour is only used when w is a
// terminal.
func NewHandler(w io.Writer, opts Options) (slog.Handler, error) {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor || !colorize(w),
		}), nil
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s (supported: text, json)", opts.Format)
	}
}

// Setup installs the handler as the slog default
func Setup(w io.Writer, opts Options) error {
	h, err := NewHandler(w, opts)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func parseLevel(input string) (level slog.Level) {
	if err := level.UnmarshalText([]byte(input)); err != nil {
		level = slog.LevelInfo
	}
	return level
}

func colorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
