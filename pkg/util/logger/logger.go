package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EncodingConsole is a plain-text human-readable output.
	EncodingConsole = "console"
	// EncodingJSON is a JSON-lines output.
	EncodingJSON = "json"
)

// Prm groups logger parameters.
type Prm struct {
	// Level is one of debug, info, warn, error, dpanic, panic, fatal.
	// Info if empty.
	Level string

	// Encoding is EncodingConsole (default) or EncodingJSON.
	Encoding string

	// Output paths, stderr by default. Standard output stays free for
	// tables and reports.
	Output []string
}

// NewLogger constructs zap.Logger from the parameters. Messages are
// written with ISO8601 timestamps, stack traces are attached to fatal
// messages only.
func NewLogger(prm Prm) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)

	if prm.Level != "" {
		err := lvl.UnmarshalText([]byte(strings.ToLower(prm.Level)))
		if err != nil {
			return nil, fmt.Errorf("invalid logger level %q: %w", prm.Level, err)
		}
	}

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Sampling = nil
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.OutputPaths = []string{"stderr"}
	c.ErrorOutputPaths = []string{"stderr"}

	if len(prm.Output) > 0 {
		c.OutputPaths = prm.Output
	}

	switch enc := strings.ToLower(prm.Encoding); enc {
	case "", EncodingConsole:
		c.Encoding = EncodingConsole
	case EncodingJSON:
		c.Encoding = EncodingJSON
	default:
		return nil, fmt.Errorf("unsupported logger encoding %q", prm.Encoding)
	}

	return c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
}
