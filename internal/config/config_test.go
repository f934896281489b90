package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("PORT", "")
		t.Setenv("DB_DRIVER", "")
		t.Setenv("TOKEN_TTL", "")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv failed: %v", err)
		}
		if cfg.Port != "8080" || cfg.DBDriver != DriverSQLite || cfg.TokenTTL != 24*time.Hour {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("PORT", "9090")
		t.Setenv("DB_DRIVER", "Postgres")
		t.Setenv("DATABASE_URL", "postgres://payly@db/payly")
		t.Setenv("TOKEN_TTL", "90m")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := FromEnv()
		if err != nil {
			t.Fatalf("FromEnv failed: %v", err)
		}
		if cfg.Port != "9090" || cfg.DBDriver != DriverPostgres || cfg.DatabaseURL != "postgres://payly@db/payly" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.TokenTTL != 90*time.Minute || cfg.LogLevel != "debug" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		if _, err := FromEnv(); !errors.Is(err, ErrMissingJWTSecret) {
			t.Errorf("expected ErrMissingJWTSecret, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			key, value string
		}{
			{"TOKEN_TTL", "soon"},
			{"TOKEN_TTL", "-1h"},
			{"DB_DRIVER", "mysql"},
		}
		for _, tt := range tests {
			t.Run(tt.key+"="+tt.value, func(t *testing.T) {
				t.Setenv("JWT_SECRET", "secret")
				t.Setenv(tt.key, tt.value)
				if _, err := FromEnv(); err == nil {
					t.Errorf("expected error for %s=%s", tt.key, tt.value)
				}
			})
		}
	})
}
