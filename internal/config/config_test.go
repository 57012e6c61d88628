package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/flagx"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	want := &Config{
		DataDir:        "data",
		PassphraseEnv:  "SIGNOUT_VAULT_PASSPHRASE",
		LedgerBackend:  "json",
		LogLevel:       "info",
		LogRetention:   720 * time.Hour,
		MaxPINAttempts: 3,
		BackupTarget:   "local",
		S3Region:       "us-east-1",
	}
	assert.Empty(t, cmp.Diff(want, defaults()))
}

func TestResolvePaths(t *testing.T) {
	c := defaults()
	c.DataDir = "/srv/signout"
	c.ResolvePaths()

	assert.Equal(t, filepath.Join("/srv/signout", "ds_pins.dat"), c.VaultPath)
	assert.Equal(t, filepath.Join("/srv/signout", "current_signouts.json"), c.LedgerPath)
	assert.Equal(t, filepath.Join("/srv/signout", "logs"), c.LogDir)
	assert.Equal(t, "/srv/signout", c.BackupDir)

	s := defaults()
	s.LedgerBackend = BackendSQLite
	s.VaultPath = "/etc/signout/pins.dat"
	s.ResolvePaths()
	assert.Equal(t, filepath.Join("data", "signouts.db"), s.LedgerPath)
	assert.Equal(t, "/etc/signout/pins.dat", s.VaultPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"sqlite", func(c *Config) { c.LedgerBackend = BackendSQLite }, nil},
		{"postgres without dsn", func(c *Config) { c.LedgerBackend = BackendPostgres }, common.ErrorValidation},
		{"postgres with dsn", func(c *Config) {
			c.LedgerBackend = BackendPostgres
			c.LedgerDSN = "postgres://localhost/signout"
		}, nil},
		{"unknown ledger", func(c *Config) { c.LedgerBackend = "csv" }, common.ErrorUnknownBackend},
		{"s3 without bucket", func(c *Config) { c.BackupTarget = BackupS3 }, common.ErrorValidation},
		{"unknown backup", func(c *Config) { c.BackupTarget = "ftp" }, common.ErrorUnknownBackend},
		{"zero attempts", func(c *Config) { c.MaxPINAttempts = 0 }, common.ErrorValidation},
		{"negative retention", func(c *Config) { c.LogRetention = -time.Hour }, common.ErrorValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"data_dir":       "/json/data",
		"ledger_backend": "sqlite",
		"log_retention":  "48h",
		"s3_bucket":      "from-json",
	})
	t.Setenv(flagx.ConfigEnvVar, "")
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvLedgerDSN, "")
	t.Setenv(EnvS3AccessKey, "AKIA")
	t.Setenv(EnvS3SecretKey, "")
	t.Setenv(EnvNoColor, "1")

	os.Args = []string{"signout", "-c", path, "-d", "/flag/data", "-r", "7"}
	cfg := LoadConfig()

	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.LedgerBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, "from-json", cfg.S3Bucket)
	assert.Equal(t, "AKIA", cfg.S3AccessKey)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, filepath.Join("/env/data", "signouts.db"), cfg.LedgerPath)
	assert.Equal(t, filepath.Join("/env/data", "ds_pins.dat"), cfg.VaultPath)
}

func TestLoadConfig_NoSources(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	for _, env := range []string{flagx.ConfigEnvVar, EnvDataDir, EnvLedgerDSN, EnvS3AccessKey, EnvS3SecretKey, EnvNoColor} {
		t.Setenv(env, "")
	}

	os.Args = []string{"signout"}
	cfg := LoadConfig()

	want := defaults()
	want.ResolvePaths()
	assert.Empty(t, cmp.Diff(want, cfg))
	require.NoError(t, cfg.Validate())
}
