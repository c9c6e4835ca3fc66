package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
  mode: production
database:
  host: db.internal
  dbname: collabhub_test
jwt:
  secret: file-secret
  access_token_expiration: 30m
chat:
  snapshot_size: 75
logging:
  level: debug
  format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "db.internal")
	}
	if cfg.JWT.AccessTokenExpiration != "30m" {
		t.Errorf("JWT.AccessTokenExpiration = %q, want %q", cfg.JWT.AccessTokenExpiration, "30m")
	}
	if cfg.Chat.SnapshotSize != 75 {
		t.Errorf("Chat.SnapshotSize = %d, want 75", cfg.Chat.SnapshotSize)
	}

	// Fields absent from the file keep their defaults
	if cfg.Database.Port != "5432" {
		t.Errorf("Database.Port = %q, want default %q", cfg.Database.Port, "5432")
	}
	if cfg.Chat.MaxMessageSize != 4000 {
		t.Errorf("Chat.MaxMessageSize = %d, want default 4000", cfg.Chat.MaxMessageSize)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
jwt:
  secret: file-secret
database:
  host: from-file
`)

	t.Setenv("DB_HOST", "from-env")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("CHAT_SNAPSHOT_SIZE", "120")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Database.Host != "from-env" {
		t.Errorf("Database.Host = %q, want env override %q", cfg.Database.Host, "from-env")
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, want env override %q", cfg.Server.Port, "7070")
	}
	if cfg.Chat.SnapshotSize != 120 {
		t.Errorf("Chat.SnapshotSize = %d, want env override 120", cfg.Chat.SnapshotSize)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("JWT.Secret = %q, want %q", cfg.JWT.Secret, "env-secret")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing jwt secret",
			content: `
database:
  host: localhost
`,
		},
		{
			name: "bad token expiration",
			content: `
jwt:
  secret: s
  access_token_expiration: not-a-duration
`,
		},
		{
			name: "non-positive snapshot size",
			content: `
jwt:
  secret: s
chat:
  snapshot_size: -1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.DBName = "hub"
	cfg.Database.SSLMode = ""

	want := "postgres://app:pw@db:5433/hub?sslmode=disable"
	if got := cfg.GetPostgresConnectionString(); got != want {
		t.Errorf("connection string = %q, want %q", got, want)
	}
}

func TestBaseURL(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if got := cfg.BaseURL(); got != "http://localhost:8080" {
		t.Errorf("BaseURL() = %q, want default localhost URL", got)
	}

	cfg.Server.PublicURL = "https://collabhub.app"
	if got := cfg.BaseURL(); got != "https://collabhub.app" {
		t.Errorf("BaseURL() = %q, want public URL", got)
	}
}
