package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
limits:
  actions_per_minute: 30
suggestions:
  age_max: 55
notifications:
  read_retention: 168h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.ActionsPerMinute != 30 {
		t.Fatalf("unexpected actions/minute: %d", cfg.Limits.ActionsPerMinute)
	}
	if cfg.Limits.ActionsPer10Sec != 15 {
		t.Fatalf("default actions/10s should survive partial yaml, got %d", cfg.Limits.ActionsPer10Sec)
	}
	if cfg.Suggestions.AgeMax != 55 {
		t.Fatalf("unexpected age max: %d", cfg.Suggestions.AgeMax)
	}
	if cfg.Notifications.ReadRetention != 168*time.Hour {
		t.Fatalf("unexpected read retention: %s", cfg.Notifications.ReadRetention)
	}
	if cfg.Postgres.DSN == "" {
		t.Fatalf("postgres dsn default missing")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	def := Default()
	if cfg.HTTP.Addr != def.HTTP.Addr || cfg.Auth.JWTAccessTTL != def.Auth.JWTAccessTTL {
		t.Fatalf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("LIMIT_ACTIONS_PER_10SEC", "3")
	t.Setenv("REFRESH_TTL", "48h")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env:env@db:5432/env" {
		t.Fatalf("unexpected dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Limits.ActionsPer10Sec != 3 {
		t.Fatalf("unexpected actions/10s: %d", cfg.Limits.ActionsPer10Sec)
	}
	if cfg.Auth.RefreshTTL != 48*time.Hour {
		t.Fatalf("unexpected refresh ttl: %s", cfg.Auth.RefreshTTL)
	}
}

func TestBadEnvValueFailsLoad(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()

	keys := []string{
		"APP_ENV",
		"HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ACCESS_TTL", "REFRESH_TTL",
		"BOT_TOKEN",
		"LIMIT_ACTIONS_PER_MINUTE", "LIMIT_ACTIONS_PER_10SEC",
		"NOTIFICATIONS_CLEANUP_INTERVAL", "NOTIFICATIONS_READ_RETENTION",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
