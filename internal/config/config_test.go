package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadRequiresAuthSecret(t *testing.T) {
	t.Setenv("LODGIA_AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without LODGIA_AUTH_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LODGIA_AUTH_SECRET", "s3cret")
	t.Setenv("LODGIA_ADDR", "")
	t.Setenv("LODGIA_TOKEN_TTL", "")
	t.Setenv("LODGIA_BCRYPT_COST", "")
	t.Setenv("LODGIA_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.TokenTTL != DefaultTokenTTL {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != DefaultBcryptCost {
		t.Fatalf("BcryptCost = %d", cfg.BcryptCost)
	}
	if cfg.Production() {
		t.Fatal("development must not report production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LODGIA_AUTH_SECRET", "s3cret")
	t.Setenv("LODGIA_TOKEN_TTL", "15m")
	t.Setenv("LODGIA_BCRYPT_COST", "12")
	t.Setenv("LODGIA_ENV", "Production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("BcryptCost = %d", cfg.BcryptCost)
	}
	if !cfg.Production() {
		t.Fatal("expected production")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LODGIA_AUTH_SECRET", "s3cret")

	t.Setenv("LODGIA_TOKEN_TTL", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LODGIA_TOKEN_TTL") {
		t.Fatalf("expected TTL parse error, got %v", err)
	}
	t.Setenv("LODGIA_TOKEN_TTL", "-1h")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative TTL")
	}

	t.Setenv("LODGIA_TOKEN_TTL", "")
	t.Setenv("LODGIA_BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range cost")
	}
}
