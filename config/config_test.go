package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("expected default db port 5432, got %d", cfg.DBPort)
	}
	if cfg.Storage != StoragePostgres {
		t.Errorf("expected postgres storage, got %s", cfg.Storage)
	}
	if cfg.BatchWorkers != 4 {
		t.Errorf("expected 4 batch workers, got %d", cfg.BatchWorkers)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("expected no allowed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("expected memory storage, got %s", cfg.Storage)
	}
	if cfg.DBPort != 6543 || cfg.BatchWorkers != 8 || !cfg.SeedData {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing jwt secret", map[string]string{"DB_PASSWORD": "pw"}, "JWT_SECRET"},
		{"missing db password", map[string]string{"JWT_SECRET": "s"}, "DB_PASSWORD"},
		{"bad port", map[string]string{"JWT_SECRET": "s", "DB_PASSWORD": "pw", "DB_PORT": "abc"}, "DB_PORT"},
		{"bad storage", map[string]string{"JWT_SECRET": "s", "STORAGE": "redis"}, "STORAGE"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "SHUTDOWN_TIMEOUT": "soon"}, "SHUTDOWN_TIMEOUT"},
		{"zero workers", map[string]string{"JWT_SECRET": "s", "STORAGE": "memory", "BATCH_WORKERS": "0"}, "BATCH_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"JWT_SECRET", "DB_PASSWORD", "DB_PORT", "STORAGE", "SHUTDOWN_TIMEOUT", "BATCH_WORKERS"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
