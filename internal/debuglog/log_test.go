package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"off", LevelOff},
		{"  info  ", LevelInfo},
		{"garbage", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestSetupAndWrite(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	if err := Setup(LevelInfo, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	t.Cleanup(func() { Close() })

	Debugf("hidden %s", "debug")
	Infof("visible %s", "info")
	Errorf("visible %s", "error")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "hidden debug") {
		t.Error("debug message should be filtered at INFO level")
	}
	if !strings.Contains(content, "[INFO] visible info") {
		t.Error("info message missing from log")
	}
	if !strings.Contains(content, "[ERROR] visible error") {
		t.Error("error message missing from log")
	}
}

func TestSetupOff(t *testing.T) {
	if err := Setup(LevelOff); err != nil {
		t.Fatalf("Setup(off) failed: %v", err)
	}
	if GetLevel() != LevelOff {
		t.Errorf("expected level off, got %v", GetLevel())
	}
	// Writes with logging off must not panic.
	Infof("dropped")
}

func TestWithFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")

	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	WithFields(map[string]interface{}{"source": "kant-weekly"}).Infof("fetched")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "source=kant-weekly") {
		t.Errorf("expected field in output, got %q", string(data))
	}
}
