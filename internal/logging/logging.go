package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options controls the CLI logger.
type Options struct {
	Level  string
	Debug  bool
	JSON   bool
	Output io.Writer
}

// New returns the named root logger. Debug overrides Level; unknown levels fall back to warn.
func New(opt Options) hclog.Logger {
	level := hclog.LevelFromString(strings.TrimSpace(opt.Level))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	if opt.Debug {
		level = hclog.Debug
	}
	out := opt.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "custinsights",
		Level:      level,
		Output:     out,
		JSONFormat: opt.JSON,
	})
}

// OrNull returns l, or a logger that discards everything when l is nil.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
