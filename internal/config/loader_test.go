package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "vitapstudent.ac.in", cfg.AllowedEmailDomain)
	assert.Equal(t, "admin@vitapstudent.ac.in", cfg.AdminEmail)
	assert.Equal(t, 60, cfg.RankingCacheTTLSeconds)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FACULTYHUB_ADDR", ":9999")
	t.Setenv("FACULTYHUB_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir, "untouched fields keep defaults")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\nadmin_email: boss@vitapstudent.ac.in\n"), 0o644))

	t.Setenv("FACULTYHUB_CONFIG", path)
	t.Setenv("FACULTYHUB_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr, "env wins over file")
	assert.Equal(t, "boss@vitapstudent.ac.in", cfg.AdminEmail)
}
