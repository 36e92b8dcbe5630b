package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "debug_mode: true\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.DebugMode {
		t.Fatal("debug_mode not applied")
	}
	if cfg.Security.RateLimitPerSecond != 10 {
		t.Fatalf("rate limit default = %v, want 10", cfg.Security.RateLimitPerSecond)
	}
	if cfg.Security.MaxPayloadBytes != 10*1024 {
		t.Fatalf("payload default = %d, want 10240", cfg.Security.MaxPayloadBytes)
	}
	if !cfg.UI.ShowToastNotifications || cfg.UI.ToastDurationMS != 2000 {
		t.Fatalf("ui defaults = %+v", cfg.UI)
	}
	if !cfg.TTS.Enabled {
		t.Fatal("tts should default to enabled")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
security:
  rate_limit_per_second: 3
ui:
  show_toast_notifications: false
tts:
  enabled: false
collection:
  path: /tmp/cards.db
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Security.RateLimitPerSecond != 3 {
		t.Fatalf("rate limit = %v, want 3", cfg.Security.RateLimitPerSecond)
	}
	if cfg.UI.ShowToastNotifications {
		t.Fatal("toast override not applied")
	}
	if cfg.TTS.Enabled {
		t.Fatal("tts override not applied")
	}
	if cfg.Collection.Path != "/tmp/cards.db" {
		t.Fatalf("collection path = %q", cfg.Collection.Path)
	}
	// Untouched sections keep their defaults.
	if cfg.Gateway.Bind != "127.0.0.1:27131" {
		t.Fatalf("gateway bind default = %q", cfg.Gateway.Bind)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("DROIDBRIDGE_DB", "/data/cards.db")

	cfg, err := Load(writeConfig(t, `
collection:
  path: ${DROIDBRIDGE_DB}
gateway:
  bind: "${DROIDBRIDGE_BIND:-127.0.0.1:9999}"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Collection.Path != "/data/cards.db" {
		t.Fatalf("collection path = %q, want env value", cfg.Collection.Path)
	}
	if cfg.Gateway.Bind != "127.0.0.1:9999" {
		t.Fatalf("gateway bind = %q, want default fallback", cfg.Gateway.Bind)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "collection:\n  path: ${DEFINITELY_NOT_SET_ANYWHERE}\n"))
	if err == nil || !strings.Contains(err.Error(), "unresolved variable") {
		t.Fatalf("expected unresolved variable error, got %v", err)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Security.RateLimitPerSecond = 0
	cfg.Gateway.Bind = "not-a-hostport"
	cfg.Collection.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"rate_limit_per_second", "gateway.bind", "collection.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidate_ReadLimitCoversPayload(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Gateway.SocketReadLimitBytes = 512

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "socket_read_limit_bytes") {
		t.Fatalf("expected read limit error, got %v", err)
	}
}
