package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggerConfig configures the process logger.
type LoggerConfig struct {
	// Level is the minimum level to output: debug, info, warn or error.
	Level string
	// Output is stderr, stdout or a file path. Empty means stderr.
	Output string
	// Format is text or json. Empty means text.
	Format string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  "info",
		Output: "stderr",
		Format: LogFormatText,
	}
}

// ParseLogLevel parses a level name. "warning" is accepted for warn.
func ParseLogLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel, nil
	case "", "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger builds the process logger. The returned closer releases the log
// file, if one was opened.
func NewLogger(cfg LoggerConfig) (*logrus.Logger, io.Closer, error) {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", LogFormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", "stderr":
		logger.SetOutput(os.Stderr)
	case "stdout":
		logger.SetOutput(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	}

	return logger, closer, nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
