package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.TLSEnabled())
}

func TestParse_FullFile(t *testing.T) {
	raw := `
mode: release
server:
  addr: ":9000"
certificate:
  cert: server.crt
  key: server.key
store:
  driver: mysql
database:
  host: 127.0.0.1
  port: 3306
  user: lib
  password: secret
  dbname: library
auth:
  secret: s3cret
  token_ttl: 2h
  users:
    - username: admin
      password_hash: "$2a$10$abc"
      user_id: "1"
      role: Admin
`
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "Admin", cfg.Auth.Users[0].Role)

	cert, key := cfg.CertPaths()
	assert.Equal(t, "config/tls/release/server.crt", cert)
	assert.Equal(t, "config/tls/release/server.key", key)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown mode", raw: "mode: staging\n"},
		{name: "unknown driver", raw: "store:\n  driver: sqlite\n"},
		{name: "mongo without uri", raw: "store:\n  driver: mongo\n"},
		{name: "postgres without dsn", raw: "store:\n  driver: postgres\n"},
		{name: "release without secret", raw: "mode: release\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: postgres\n"), 0o600))

	t.Setenv("LIBRARY_POSTGRES_DSN", "postgres://lib@localhost/library")
	t.Setenv("LIBRARY_JWT_SECRET", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://lib@localhost/library", cfg.Postgres.DSN)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_RepoConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.TLSEnabled())
}
