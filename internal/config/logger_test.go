package config

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/simp-lee/logger"
)

func boolPtr(b bool) *bool { return &b }

// keepDefaultLogger restores slog.Default after a test that calls SetupLogger.
func keepDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// readJSONLines decodes every line of a JSON log file.
func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("log line %q is not JSON: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan log file: %v", err)
	}
	return lines
}

func TestSetupLogger_NilConfig(t *testing.T) {
	if _, err := SetupLogger(nil); err == nil {
		t.Fatal("expected error for nil log config")
	}
}

func TestSetupLogger_RequestIDReachesFile(t *testing.T) {
	keepDefaultLogger(t)
	path := filepath.Join(t.TempDir(), "genbot.log")

	log, err := SetupLogger(&LogConfig{Level: "info", Format: "json", FilePath: path, Color: boolPtr(false)})
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}

	ctx := logger.WithContextAttrs(context.Background(), slog.String("request_id", "req-42"))
	slog.DebugContext(ctx, "history cache miss")
	slog.InfoContext(ctx, "chat reply generated", slog.String("bot_id", "b1"))
	if err := log.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	lines := readJSONLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines; want only the info line: %v", len(lines), lines)
	}
	got := lines[0]
	if got["msg"] != "chat reply generated" || got["level"] != "INFO" {
		t.Errorf("line = %v", got)
	}
	if got["request_id"] != "req-42" || got["bot_id"] != "b1" {
		t.Errorf("line attrs = %v; want request_id and bot_id", got)
	}
}

func TestSetupLogger_EnvLevelOverride(t *testing.T) {
	keepDefaultLogger(t)
	t.Setenv("APP__LOG__LEVEL", "WARN")

	cfg, err := Load(writeTestConfig(t, validBaseYAML("")))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	log, err := SetupLogger(&cfg.Log)
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}
	defer log.Close()

	if !log.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled")
	}
	if log.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled by the env override")
	}
	if slog.Default().Handler() != log.Handler() {
		t.Error("SetupLogger did not install the slog default")
	}
}

func TestBuildLoggerOpts(t *testing.T) {
	// Console options: level, context middleware, format, color.
	const console = 4
	file := filepath.Join(t.TempDir(), "genbot.log")

	tests := []struct {
		name string
		cfg  *LogConfig
		want int
	}{
		{"nil config", nil, 0},
		{"console only", &LogConfig{Level: "info", Format: "json"}, console},
		{"rotation ignored without file", &LogConfig{Level: "info", Format: "json", MaxSizeMB: 10, MaxBackups: 2}, console},
		{"file adds path and format", &LogConfig{Level: "info", Format: "json", FilePath: file}, console + 2},
		{"zero rotation values skipped", &LogConfig{Format: "text", FilePath: file, CompressRotated: boolPtr(false)}, console + 3},
		{
			"full rotation",
			&LogConfig{
				Format: "json", FilePath: file,
				MaxSizeMB: 50, RetentionDays: 14, MaxBackups: 5, CompressRotated: boolPtr(true),
			},
			console + 6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := BuildLoggerOpts(tt.cfg)
			if tt.cfg == nil {
				if opts != nil {
					t.Fatalf("got %d options; want nil", len(opts))
				}
				return
			}
			if len(opts) != tt.want {
				t.Errorf("option count = %d; want %d", len(opts), tt.want)
			}
			log, err := logger.New(opts...)
			if err != nil {
				t.Fatalf("logger.New: %v", err)
			}
			log.Close()
		})
	}
}

func TestBuildLoggerOpts_FormatFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.log")
	log, err := logger.New(BuildLoggerOpts(&LogConfig{Level: "info", Format: "pretty", FilePath: path})...)
	if err != nil {
		t.Fatalf("logger.New with unknown format: %v", err)
	}
	log.Info("started")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("custom format wrote nothing")
	}
	if json.Valid(data) {
		t.Error("unknown format should fall back to the custom layout, not JSON")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
