package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("HRMS_A", "va")
	in := []byte("a: ${HRMS_A:da}\nb: ${HRMS_B_UNSET:db}")
	out := resolveEnv(in)
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	require.NoError(t, os.Chdir(tmp))

	t.Setenv("HRMS_JWT_SECRET", "s3cret")
	content := `
server:
  port: "8080"
database:
  host: db.local
auth:
  jwt_secret: ${HRMS_JWT_SECRET:}
kafka:
  brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "configs"), 0o755))
	file := filepath.Join(tmp, "configs", "hrms.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, path, err := LoadConfig("hrms.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("configs", "hrms.yaml"), path)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "hr.domain.events.v1", cfg.Kafka.EventsTopic)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3*time.Second, cfg.Outbox.PollInterval)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "hrms.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  host: db\n"), 0o644))

	_, _, err := LoadConfig(file)
	assert.EqualError(t, err, "auth.jwt_secret is required")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
