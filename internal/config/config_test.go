package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/predial/vistoria/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "vistoria.db" {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("expected 24h token duration, got %v", cfg.TokenDuration)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("VISTORIA_ADDR", ":9090")
	t.Setenv("VISTORIA_DATABASE_PATH", "/tmp/test.db")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "/tmp/test.db" {
		t.Fatalf("expected env database path, got %q", cfg.DatabasePath)
	}
}

func TestLoadConfigYAMLOverridesEnv(t *testing.T) {
	t.Setenv("VISTORIA_ADDR", ":9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":7070\"\njwt_secret: \"filesecret\"\ntoken_duration: 1h\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("file should win over env, got %q", cfg.Addr)
	}
	if cfg.JWTSecret != "filesecret" {
		t.Fatalf("expected file secret, got %q", cfg.JWTSecret)
	}
	if cfg.TokenDuration != time.Hour {
		t.Fatalf("expected 1h token duration, got %v", cfg.TokenDuration)
	}
	// values the file does not mention keep their defaults
	if cfg.DatabasePath != "vistoria.db" {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := config.LoadConfig("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
