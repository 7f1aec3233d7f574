package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// isolate points HOME at an empty directory and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"TASKVOICE_ADDR", "TASKVOICE_ALLOWED_ORIGINS", "TASKVOICE_READ_TIMEOUT",
		"TASKVOICE_WRITE_TIMEOUT", "TASKVOICE_REDIS_URL", "REDIS_URL",
		"TASKVOICE_SESSION_TTL", "TASKVOICE_JWT_SECRET", "TASKVOICE_AUTH_ISSUER",
		"TASKVOICE_TOKEN_TTL", "TASKVOICE_SOURCES", "TASKVOICE_TIMEZONE",
		"TASKVOICE_LOG_LEVEL", "TASKVOICE_LOG_FILE", "TASKVOICE_LOG_JSON",
	} {
		t.Setenv(key, "")
	}
	configOnce = sync.Once{}
	globalConfig = nil
	configErr = nil
	return home
}

func TestDefaultConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, DefaultSessionTTL)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != DefaultSource {
		t.Errorf("Sources = %v, want [%s]", cfg.Sources, DefaultSource)
	}
	if cfg.Auth.Issuer != DefaultIssuer {
		t.Errorf("Auth.Issuer = %q, want %q", cfg.Auth.Issuer, DefaultIssuer)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v, want Local", loc, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)

	t.Setenv("TASKVOICE_ADDR", "127.0.0.1:9000")
	t.Setenv("TASKVOICE_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TASKVOICE_SESSION_TTL", "45")
	t.Setenv("REDIS_URL", "redis://fallback:6379")
	t.Setenv("TASKVOICE_REDIS_URL", "redis://custom:6380")
	t.Setenv("TASKVOICE_JWT_SECRET", "s3cret")
	t.Setenv("TASKVOICE_SOURCES", "todolist:path=/tmp/t.md; remote:url=http://x,database=d")
	t.Setenv("TASKVOICE_TIMEZONE", "Europe/Berlin")
	t.Setenv("TASKVOICE_LOG_LEVEL", "debug")
	t.Setenv("TASKVOICE_LOG_JSON", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.SessionTTL != 45*time.Second {
		t.Errorf("SessionTTL = %v, want 45s", cfg.SessionTTL)
	}
	if cfg.RedisURL != "redis://custom:6380" {
		t.Errorf("RedisURL = %q, want %q", cfg.RedisURL, "redis://custom:6380")
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Auth.JWTSecret = %q", cfg.Auth.JWTSecret)
	}
	want := []string{"todolist:path=/tmp/t.md", "remote:url=http://x,database=d"}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != want[0] || cfg.Sources[1] != want[1] {
		t.Errorf("Sources = %q, want %q", cfg.Sources, want)
	}
	if loc, err := cfg.Location(); err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
	lc := cfg.LogConfig()
	if lc.Level != "debug" || !lc.JSON {
		t.Errorf("LogConfig() = %+v", lc)
	}
}

func TestRedisURLFallback(t *testing.T) {
	isolate(t)
	t.Setenv("REDIS_URL", "redis://fallback:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RedisURL != "redis://fallback:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestFileLayering(t *testing.T) {
	home := isolate(t)

	legacy := "redis_url: redis://legacy:6379\nsession_ttl: 5m\n"
	if err := os.WriteFile(filepath.Join(home, ".taskvoice.yaml"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	xdgDir := filepath.Join(home, ".config", "taskvoice")
	if err := os.MkdirAll(xdgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	xdg := "redis_url: redis://xdg:6379\nserver:\n  addr: \":7000\"\nsources:\n  - todolist:path=~/tasks.md\n"
	if err := os.WriteFile(filepath.Join(xdgDir, "config.yaml"), []byte(xdg), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKVOICE_ADDR", ":7100")

	cfg, err := Get()
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if cfg.RedisURL != "redis://xdg:6379" {
		t.Errorf("RedisURL = %q, want xdg value", cfg.RedisURL)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("SessionTTL = %v, want legacy value 5m", cfg.SessionTTL)
	}
	if cfg.Server.Addr != ":7100" {
		t.Errorf("Server.Addr = %q, want env value", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "todolist:path=~/tasks.md" {
		t.Errorf("Sources = %v", cfg.Sources)
	}

	t.Setenv("TASKVOICE_ADDR", ":7200")
	reloaded, err := Reload()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Server.Addr != ":7200" {
		t.Errorf("Reload() Server.Addr = %q, want :7200", reloaded.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "server: [unclosed"},
		{name: "bad timezone", env: map[string]string{"TASKVOICE_TIMEZONE": "Mars/Olympus"}},
		{name: "bad log level", env: map[string]string{"TASKVOICE_LOG_LEVEL": "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			if tt.file != "" {
				if err := os.WriteFile(filepath.Join(home, ".taskvoice.yaml"), []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestConfigPaths(t *testing.T) {
	home := isolate(t)
	paths := ConfigPaths()
	if len(paths) != 3 {
		t.Fatalf("ConfigPaths() = %v", paths)
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, home) {
			t.Errorf("path %q not under HOME", p)
		}
	}
}

func TestWriteExample(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	content := string(data)
	for _, key := range []string{"server:", "redis_url", "session_ttl", "jwt_secret", "sources:", "timezone", "logging:"} {
		if !strings.Contains(content, key) {
			t.Errorf("Config file missing key: %s", key)
		}
	}

	// The example must load cleanly over the defaults.
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		t.Fatalf("example does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example does not validate: %v", err)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("TokenTTL = %v, want 720h", cfg.Auth.TokenTTL)
	}
}
