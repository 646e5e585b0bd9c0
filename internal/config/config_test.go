package config_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/neomorfeo/orgconsole/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REMOTE_API_URL", "http://remote.test/api")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabasePath != "orgconsole.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "orgconsole.db")
	}
	if cfg.RemoteTimeout != 30*time.Second {
		t.Errorf("RemoteTimeout = %s, want 30s", cfg.RemoteTimeout)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %s, want 12h", cfg.SessionTTL)
	}
	if !cfg.TelemetryEnabled {
		t.Error("TelemetryEnabled should default to true")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REMOTE_API_URL", "http://remote.test/api")
	t.Setenv("PORT", "9090")
	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("TELEMETRY_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.RemoteTimeout != 5*time.Second {
		t.Errorf("RemoteTimeout = %s, want 5s", cfg.RemoteTimeout)
	}
	if cfg.TelemetryEnabled {
		t.Error("TelemetryEnabled should be false")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing remote url", map[string]string{"REMOTE_API_URL": ""}},
		{"malformed timeout", map[string]string{"REMOTE_API_URL": "http://remote.test", "REMOTE_TIMEOUT": "soon"}},
		{"zero timeout", map[string]string{"REMOTE_API_URL": "http://remote.test", "REMOTE_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewLogger_MasksCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := config.NewLogger(&buf, "info", "json")

	logger.Info("login", "access_token", "eyJhbGciOi", "Authorization", "Bearer abc", "tenant_id", "42")

	out := buf.String()
	if strings.Contains(out, "eyJhbGciOi") || strings.Contains(out, "Bearer abc") {
		t.Errorf("credential leaked: %s", out)
	}
	if !strings.Contains(out, `"tenant_id":"42"`) {
		t.Errorf("tenant_id missing: %s", out)
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := config.NewLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := config.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
