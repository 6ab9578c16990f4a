package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"DEBUG", logrus.DebugLevel, false},
		{"info", logrus.InfoLevel, false},
		{"", logrus.InfoLevel, false},
		{"warn", logrus.WarnLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"loud", logrus.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexpatch.log")
	logger, closer, err := NewLogger(LoggerConfig{Level: "warn", Output: path, Format: LogFormatJSON})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.WithField("component", "test").Info("hidden")
	logger.WithField("component", "test").Warn("shown")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"component":"test"`) {
		t.Errorf("log output = %s", out)
	}
}

func TestNewLoggerErrors(t *testing.T) {
	tests := []LoggerConfig{
		{Level: "loud"},
		{Format: "xml"},
		{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")},
	}
	for _, cfg := range tests {
		if _, _, err := NewLogger(cfg); err == nil {
			t.Errorf("NewLogger(%+v) expected error", cfg)
		}
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	logger, closer, err := NewLogger(DefaultLoggerConfig())
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer closer.Close()
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}
