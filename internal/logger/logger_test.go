package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	SetLogger(nil)
	// Must not panic before Init.
	Info("before init")
	Sugar.Debugf("frame %d", 1)
	Sync()
}

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()
	defer SetLogger(nil)

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(dir, tt.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}

			if err := InitWithFileConfig(tt.level, cfg, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			out := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 {
		t.Errorf("unexpected rotation defaults: %+v", cfg)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONFileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "render.log")
	defer SetLogger(nil)

	err := InitWithOptions(Options{Level: "info", JSON: true, File: FileConfig{Path: logFile, MaxSizeMB: 1}})
	if err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	Info("frame presented", zap.Int("frame", 7))
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, `"msg":"frame presented"`) || !strings.Contains(out, `"frame":7`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	defer SetLogger(nil)
	if err := InitWithOptions(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLimiterSuppressesAndReports(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	l := NewLimiter(time.Hour, 2)
	for i := 0; i < 5; i++ {
		l.Warn("texture missing", zap.Int("i", i))
	}

	if got := logs.Len(); got != 2 {
		t.Fatalf("emitted %d lines, want 2", got)
	}
	if got := l.Suppressed(); got != 3 {
		t.Errorf("Suppressed() = %d, want 3", got)
	}
}

func TestLimiterAttachesSuppressedCount(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	l := NewLimiter(50*time.Millisecond, 1)
	l.Error("first")
	l.Error("dropped")
	time.Sleep(120 * time.Millisecond)
	l.Error("second")

	entries := logs.FilterMessage("second").All()
	if len(entries) != 1 {
		t.Fatalf("expected the second line to be emitted, got %d", len(entries))
	}
	if n, ok := entries[0].ContextMap()["suppressed"]; !ok || n != int64(1) {
		t.Errorf("suppressed field = %v, want 1", n)
	}
	if l.Suppressed() != 0 {
		t.Error("suppressed counter not reset after emit")
	}
}

func TestLimiterIgnoresDisabledLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	l := NewLimiter(time.Hour, 2)
	for i := 0; i < 20; i++ {
		l.Debug("filtered")
	}
	l.Warn("kept")

	if got := logs.FilterMessage("kept").Len(); got != 1 {
		t.Fatalf("warn after filtered debug lines emitted %d times, want 1", got)
	}
	if got := l.Suppressed(); got != 0 {
		t.Errorf("Suppressed() = %d, want 0", got)
	}
}
