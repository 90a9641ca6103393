package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "dormgate-test"
upstream:
  base_url: "https://backend.example.com/api"
journal:
  path: "portal.db"
cache:
  ttl_seconds:
    bookings: 300
    payments: 120
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "dormgate-test" {
		t.Errorf("expected app name dormgate-test, got %s", cfg.App.Name)
	}
	if cfg.Upstream.BaseURL != "https://backend.example.com/api" {
		t.Errorf("unexpected upstream base url %s", cfg.Upstream.BaseURL)
	}
	if got := cfg.Cache.TTLFor("bookings"); got != 5*time.Minute {
		t.Errorf("expected bookings TTL 5m, got %s", got)
	}
	if got := cfg.Cache.TTLFor("documents"); got != 3*time.Minute {
		t.Errorf("expected default TTL 3m, got %s", got)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("UPSTREAM_URL", "https://env.example.com")

	yamlContent := `
upstream:
  base_url: "${UPSTREAM_URL}"
journal:
  path: "portal.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://env.example.com" {
		t.Errorf("env expansion failed, got %s", cfg.Upstream.BaseURL)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "https://backend.example.com"},
				Journal:  JournalConfig{Path: "portal.db"},
			},
			wantErr: false,
		},
		{
			name: "missing upstream url",
			cfg: Config{
				Journal: JournalConfig{Path: "portal.db"},
			},
			wantErr: true,
		},
		{
			name: "non-http upstream url",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "ftp://backend.example.com"},
				Journal:  JournalConfig{Path: "portal.db"},
			},
			wantErr: true,
		},
		{
			name: "missing journal path",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "https://backend.example.com"},
			},
			wantErr: true,
		},
		{
			name: "bad mime type",
			cfg: Config{
				Upstream: UpstreamConfig{BaseURL: "https://backend.example.com"},
				Journal:  JournalConfig{Path: "portal.db"},
				Uploads:  UploadsConfig{AllowedTypes: []string{"jpeg"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.Timeout() != 10*time.Second {
		t.Errorf("expected default upstream timeout 10s, got %s", cfg.Upstream.Timeout())
	}
	if cfg.Upstream.UploadTimeout() != 120*time.Second {
		t.Errorf("expected default upload timeout 120s, got %s", cfg.Upstream.UploadTimeout())
	}
	if cfg.Uploads.MaxFiles != 5 {
		t.Errorf("expected default max files 5, got %d", cfg.Uploads.MaxFiles)
	}
	if len(cfg.Uploads.AllowedTypes) != 3 {
		t.Errorf("expected default allowed types, got %v", cfg.Uploads.AllowedTypes)
	}
	if cfg.Session.TTL() != 24*time.Hour {
		t.Errorf("expected session TTL 24h, got %s", cfg.Session.TTL())
	}
}
