package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/signout/internal/common"
)

const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	BackupLocal = "local"
	BackupS3    = "s3"
)

// Config holds runtime settings for the console.
type Config struct {
	DataDir string

	VaultPath string
	// PassphraseEnv names the environment variable holding the vault master
	// passphrase. When it is unset the legacy passphrase is used.
	PassphraseEnv string

	LedgerBackend string
	LedgerPath    string
	LedgerDSN     string

	LogDir       string
	LogLevel     string
	LogRetention time.Duration

	MaxPINAttempts int

	// NoColor disables colored console output.
	NoColor bool

	BackupTarget string
	BackupDir    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.PassphraseEnv = common.PassphraseEnvVar
	c.LedgerBackend = BackendJSON
	c.LogLevel = "info"
	c.LogRetention = 30 * 24 * time.Hour
	c.MaxPINAttempts = 3
	c.BackupTarget = BackupLocal
	c.S3Region = "us-east-1"
}

// ResolvePaths fills empty locations from DataDir.
func (c *Config) ResolvePaths() {
	if c.VaultPath == "" {
		c.VaultPath = filepath.Join(c.DataDir, "ds_pins.dat")
	}
	if c.LedgerPath == "" {
		switch c.LedgerBackend {
		case BackendSQLite:
			c.LedgerPath = filepath.Join(c.DataDir, "signouts.db")
		default:
			c.LedgerPath = filepath.Join(c.DataDir, "current_signouts.json")
		}
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.DataDir, "logs")
	}
	if c.BackupDir == "" {
		c.BackupDir = c.DataDir
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case BackendJSON, BackendSQLite:
	case BackendPostgres:
		if c.LedgerDSN == "" {
			return fmt.Errorf("%w: postgres ledger needs a DSN", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: ledger %q", common.ErrorUnknownBackend, c.LedgerBackend)
	}

	switch c.BackupTarget {
	case BackupLocal:
	case BackupS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: s3 backup needs a bucket", common.ErrorValidation)
		}
	default:
		return fmt.Errorf("%w: backup target %q", common.ErrorUnknownBackend, c.BackupTarget)
	}

	if c.MaxPINAttempts < 1 {
		return fmt.Errorf("%w: max PIN attempts must be at least 1", common.ErrorValidation)
	}
	if c.LogRetention < 0 {
		return fmt.Errorf("%w: log retention must not be negative", common.ErrorValidation)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), command-line flags and the environment. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	cfg.ResolvePaths()
	return cfg
}
