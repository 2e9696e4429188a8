package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigReadsYAMLAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  dsn: "file:cfgtest?mode=memory"
jwt:
  secret: test-secret
  expire_hours: 2
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.JWT.ExpireTime != 2*time.Hour {
		t.Errorf("expire = %v, want 2h", cfg.JWT.ExpireTime)
	}
	if cfg.Redis.ReportTTLSeconds != 60 {
		t.Errorf("report ttl default = %d, want 60", cfg.Redis.ReportTTLSeconds)
	}
	if cfg.Import.MaxUploadMB != 10 {
		t.Errorf("max upload default = %d, want 10", cfg.Import.MaxUploadMB)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "release needs long secret",
			cfg: Config{
				Server:   ServerConfig{Mode: "release"},
				JWT:      JWTConfig{Secret: "short"},
				Database: DatabaseConfig{Driver: "mysql"},
			},
			wantErr: true,
		},
		{
			name: "sqlite needs dsn",
			cfg: Config{
				JWT:      JWTConfig{Secret: "s"},
				Database: DatabaseConfig{Driver: "sqlite"},
			},
			wantErr: true,
		},
		{
			name: "unknown driver",
			cfg: Config{
				JWT:      JWTConfig{Secret: "s"},
				Database: DatabaseConfig{Driver: "oracle"},
			},
			wantErr: true,
		},
		{
			name: "postgres ok",
			cfg: Config{
				JWT:      JWTConfig{Secret: "s"},
				Database: DatabaseConfig{Driver: "postgres"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
