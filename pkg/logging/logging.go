// Package logging builds the hclog loggers used by the command line tool and
// the HTTP service.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/ssargent/tfrecord/pkg/config"
)

// New returns a logger named "tfrecord" writing to stderr
func New(cfg config.Logging) hclog.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination
func NewWithOutput(cfg config.Logging, out io.Writer) hclog.Logger {
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "tfrecord",
		Level:      level,
		Output:     out,
		JSONFormat: cfg.JSON,
	})
}

// OrNull returns logger, or a logger that discards everything when nil
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
