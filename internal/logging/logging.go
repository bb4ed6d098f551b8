// Package logging configures the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log level and encoding.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// New builds a logger writing to stderr. Console output omits timestamps
// and callers so CLI diagnostics stay short.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", opts.Format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// Setup builds a logger and installs it as the zap global. The returned
// function restores the previous global and flushes buffered entries.
func Setup(opts Options) (func(), error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
