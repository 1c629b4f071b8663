package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "file" || cfg.Notify.Driver != "local" {
		t.Fatalf("unexpected drivers %q/%q", cfg.Storage.Driver, cfg.Notify.Driver)
	}
	if cfg.Notify.PollInterval != 5*time.Second {
		t.Fatalf("expected 5s poll interval, got %s", cfg.Notify.PollInterval)
	}
	if cfg.Storage.Key != "bansal_canteen_db_v3" {
		t.Fatalf("unexpected storage key %q", cfg.Storage.Key)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	p := writeFile(t, `
app:
  instance: counter-1
  timezone: UTC
storage:
  driver: postgres
database:
  host: db.internal
  port: 6543
notify:
  driver: rabbitmq
  poll_interval: 2s
`)
	t.Setenv("CANTEEN_DB_HOST", "db.override")
	t.Setenv("CANTEEN_NOTIFY_POLL_INTERVAL", "750ms")
	t.Setenv("CANTEEN_HTTP_PORT", "8088")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Instance != "counter-1" {
		t.Fatalf("expected instance from yaml, got %q", cfg.App.Instance)
	}
	if cfg.Database.Host != "db.override" || cfg.Database.Port != 6543 {
		t.Fatalf("expected env host and yaml port, got %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Notify.Driver != "rabbitmq" || cfg.Notify.PollInterval != 750*time.Millisecond {
		t.Fatalf("unexpected notify config %+v", cfg.Notify)
	}
	if cfg.HTTP.Port != 8088 {
		t.Fatalf("expected http port 8088, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.User != "canteen" {
		t.Fatalf("expected default db user to survive, got %q", cfg.Database.User)
	}
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown storage driver to be rejected")
	}
	cfg = Defaults()
	cfg.Notify.Driver = "kafka"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown notify driver to be rejected")
	}
	cfg = Defaults()
	cfg.App.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected bad timezone to be rejected")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	p := writeFile(t, "storage: [unterminated")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}
