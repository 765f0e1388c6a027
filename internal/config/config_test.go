package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "start", cfg.Server.Level)
	assert.Equal(t, 600, cfg.Session.MaxEdicts)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.TickRate)
	assert.True(t, cfg.Scripting.Sandbox)
	assert.Empty(t, cfg.Database.DSN)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[session]
max_edicts = 64
max_clients = 4
tick_rate = "50ms"
strict = true

[host]
charset = "utf-8"

[logging]
format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Session.MaxEdicts)
	assert.Equal(t, 4, cfg.Session.MaxClients)
	assert.Equal(t, 50*time.Millisecond, cfg.Session.TickRate)
	assert.True(t, cfg.Session.Strict)
	assert.False(t, cfg.Session.OverrideNative)
	assert.Equal(t, "utf-8", cfg.Host.Charset)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no clients", "[session]\nmax_clients = 0\n", "max_clients"},
		{"pool too small", "[session]\nmax_edicts = 4\nmax_clients = 4\n", "max_edicts"},
		{"rcon without hash", "[console]\nbind_address = \"127.0.0.1:27500\"\n", "rcon_password_hash"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad toml", "[session\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorContains(t, err, "read config")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv(EnvPath, "/etc/edictbridge.toml")
	assert.Equal(t, "/etc/edictbridge.toml", Path())
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "server.toml"))
	require.NoError(t, err)
	assert.Equal(t, "edictbridge", cfg.Server.Name)
	assert.Equal(t, 8, cfg.Session.MaxClients)
}
