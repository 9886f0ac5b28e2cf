// Package logging configures the log15 root handler from the application
// configuration and hands out per-component loggers.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/georgepadayatti/adesvalidator/config"
)

// NewHandler builds a handler for cfg. The returned closer releases the log
// file, if any.
func NewHandler(cfg *config.LoggingConfig) (log15.Handler, io.Closer, error) {
	if cfg == nil {
		cfg = &config.LoggingConfig{}
	}
	c := *cfg
	c.SetDefaults()

	lvl, err := log15.LvlFromString(c.Level)
	if err != nil {
		return nil, nil, config.NewConfigError("logging.level", fmt.Sprintf("unknown level %q", c.Level))
	}

	var format log15.Format
	switch c.Format {
	case "text":
		format = log15.LogfmtFormat()
	case "terminal":
		format = log15.TerminalFormat()
	case "json":
		format = log15.JsonFormat()
	default:
		return nil, nil, config.NewConfigError("logging.format", fmt.Sprintf("unknown format %q", c.Format))
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch {
	case c.Output == "stdout":
		out = os.Stdout
	case !c.IsFile():
		out = os.Stderr
	default:
		rotate := &lumberjack.Logger{
			Filename:   c.Output,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		}
		out, closer = rotate, rotate
	}

	h := log15.StreamHandler(out, format)
	if c.Caller {
		h = log15.CallerFileHandler(h)
	}
	return log15.LvlFilterHandler(lvl, h), closer, nil
}

// Setup installs the handler for cfg as the log15 root handler.
func Setup(cfg *config.LoggingConfig) (io.Closer, error) {
	h, closer, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	log15.Root().SetHandler(h)
	return closer, nil
}

// New returns a logger tagged with the component name.
func New(module string, ctx ...any) log15.Logger {
	return log15.Root().New(append([]any{"module", module}, ctx...)...)
}

// OrNew returns l, or a new logger for module when l is nil.
func OrNew(l log15.Logger, module string) log15.Logger {
	if l != nil {
		return l
	}
	return New(module)
}

// Discard returns a logger that drops every record.
func Discard() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
