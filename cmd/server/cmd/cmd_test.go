package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Version:    dev")
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	for _, k := range []string{"JWT_SECRET", "DB_HOST", "DB_USER", "DB_PASS", "DATABASE_URL", "STORE_DRIVER"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("LOG_LEVEL", "info")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nDATABASE_URL=mongodb://localhost:27017\n"), 0o600))

	envFile, logLevel = path, "debug"
	t.Cleanup(func() { envFile, logLevel = ".env", "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigMissingFileIsFine(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("STORE_DRIVER", "")

	envFile = filepath.Join(t.TempDir(), "absent.env")
	t.Cleanup(func() { envFile = ".env" })

	_, err := loadConfig()
	assert.NoError(t, err)
}

func TestLoadConfigMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")

	envFile = ""
	t.Cleanup(func() { envFile = ".env" })

	_, err := loadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
